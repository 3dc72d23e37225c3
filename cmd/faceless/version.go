package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/faceless"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of faceless",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "faceless version %s\n", strings.TrimSpace(faceless.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
