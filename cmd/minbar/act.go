package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/planner"
)

var (
	actRepo    string
	actContext string
	actPlan    string
)

var actCmd = &cobra.Command{
	Use:   "act [instruction]",
	Short: "Run one instruction through the pipeline",
	Long: `Plan, merge and dispatch a single instruction and print the outcome as JSON.
Use --plan to skip the language model and dispatch a fixed plan.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := core.Request{
			Instruction: strings.Join(args, " "),
			RepoSlug:    actRepo,
		}
		if actContext != "" {
			if err := json.Unmarshal([]byte(actContext), &req.Context); err != nil {
				fatal("Error parsing --context", err)
			}
		}

		opts := []minbar.Option{minbar.WithLogger(slog.Default())}
		if actPlan != "" {
			opts = append(opts, minbar.WithPlanner(planner.NewStatic(actPlan)))
		}
		app, err := minbar.New(cmd.Context(), cfg, opts...)
		if err != nil {
			fatal("Error initializing minbar", err)
		}

		out := app.Service.Act(cmd.Context(), req)

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("Error encoding JSON", err)
		}
		if out.Status == core.StatusError {
			fmt.Fprintf(os.Stderr, "%s\n", out.Message)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(actCmd)
	actCmd.Flags().StringVarP(&actRepo, "repo", "r", "", "Target site slug")
	actCmd.Flags().StringVar(&actContext, "context", "", "Caller context as a JSON object")
	actCmd.Flags().StringVar(&actPlan, "plan", "", `Fixed plan JSON, e.g. {"action":"set_eid","args":{...}}`)
}
