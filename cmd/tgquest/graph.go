package main

import (
	"fmt"

	"github.com/aretw0/tgquest/internal/presentation/graph"
	"github.com/aretw0/tgquest/pkg/document"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the quest graph as a Mermaid diagram",
	Long:  `Parses the quest document and prints a Mermaid flowchart (graph TD) of screens and buttons.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("quests")
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.QuestsFile
		}
		lang, _ := cmd.Flags().GetString("lang")
		current, _ := cmd.Flags().GetString("current")

		doc, err := document.LoadFile(path)
		if err != nil {
			return err
		}

		opts := graph.Options{Language: lang}
		if current != "" {
			opts.Overlay = &graph.Overlay{Current: current}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, opts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("lang", "", "Language of button labels (default ru)")
	graphCmd.Flags().String("current", "", "Highlight this screen")
}
