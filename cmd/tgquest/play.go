package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/aretw0/tgquest"
	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/internal/presentation/tui"
	"github.com/aretw0/tgquest/pkg/runner"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the quest in the terminal",
	Long:  `Runs the quest locally. Buttons can be pressed by typing their label or their number.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		userID, _ := cmd.Flags().GetString("user")
		if !cmd.Flags().Changed("log-level") {
			// Keep the terminal for the story.
			logger = logging.NewNop()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		st, err := buildEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		var handler runner.IOHandler
		if jsonMode {
			handler = runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout())
		} else {
			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(tgquest.Version))
			handler = runner.NewTextHandler(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		r := runner.NewRunner(
			runner.WithInputHandler(handler),
			runner.WithLogger(logger),
			runner.WithUserID(userID),
		)
		return r.Run(ctx, st.engine)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("json", false, "JSON lines input and output")
	playCmd.Flags().String("user", runner.DefaultUserID, "Session key of the local player")
}
