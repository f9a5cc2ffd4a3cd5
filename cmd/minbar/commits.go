package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
	"github.com/aretw0/minbar/pkg/core"
)

var commitsLimit int

var commitsCmd = &cobra.Command{
	Use:   "commits [slug]",
	Short: "List recent commits of a site",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := minbar.OpenStore(cmd.Context(), cfg, minbar.WithLogger(slog.Default()))
		if err != nil {
			fatal("Error opening store", err)
		}

		site := core.SiteRef{Owner: cfg.Store.Owner, Name: args[0]}
		commits, err := store.ListCommits(cmd.Context(), site, commitsLimit)
		if err != nil {
			fatal("Error listing commits", err)
		}
		for _, c := range commits {
			fmt.Printf("%.7s %s\n", c.SHA, core.Subject(c.Message))
		}
	},
}

func init() {
	rootCmd.AddCommand(commitsCmd)
	commitsCmd.Flags().IntVarP(&commitsLimit, "limit", "n", 20, "Maximum number of commits")
}
