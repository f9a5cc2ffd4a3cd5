package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the wired components and their state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := minbar.New(cmd.Context(), cfg, minbar.WithLogger(slog.Default()))
		if err != nil {
			fatal("Error initializing minbar", err)
		}

		out := map[string]any{}
		for _, c := range []any{app.Service, app.Registry, app.Store, app.Planner} {
			comp, ok := c.(introspection.Component)
			if !ok {
				continue
			}
			if intro, ok := c.(introspection.Introspectable); ok {
				out[comp.ComponentType()] = intro.State()
			} else {
				out[comp.ComponentType()] = nil
			}
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
