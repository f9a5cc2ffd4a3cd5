package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
)

var slugCmd = &cobra.Command{
	Use:   "slug [name]",
	Short: "Print the site slug for a display name",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(minbar.Slugify(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(slugCmd)
}
