package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgquest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tgquest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tgquest version %s\n", strings.TrimSpace(tgquest.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
