package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/minbar"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of minbar",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("minbar version %s\n", strings.TrimSpace(minbar.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
