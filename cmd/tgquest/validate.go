package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/tgquest/internal/validator"
	"github.com/aretw0/tgquest/pkg/document"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a quest document",
	Long:  `Parses the quest document, reports every configuration error and warns about screens no button leads to
and language overrides no text provides.`,
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
		return runValidate(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	doc, err := document.LoadFile(path)
	if err != nil {
		var cfgErrs *domain.ConfigErrors
		if errors.As(err, &cfgErrs) {
			for _, e := range cfgErrs.Errors {
				fmt.Fprintf(out, "  ✗ %v\n", e)
			}
			return fmt.Errorf("%s: %d configuration error(s)", path, len(cfgErrs.Errors))
		}
		return err
	}

	for _, id := range validator.Unreachable(doc) {
		fmt.Fprintf(out, "  ! screen %q is unreachable from %q\n", id, doc.InitialScreen)
	}
	for _, w := range validator.UndeclaredLanguages(doc) {
		fmt.Fprintf(out, "  ! %s\n", w)
	}
	fmt.Fprintf(out, "Quest is valid! ✅ (%d screens)\n", len(doc.Order))
	return nil
}
