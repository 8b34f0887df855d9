package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"speteval/internal/runlog"
)

type runView struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Input        string         `json:"input"`
	Output       string         `json:"output"`
	Validators   []string       `json:"validators"`
	Total        int            `json:"total"`
	Kept         int            `json:"kept"`
	Dropped      int            `json:"dropped"`
	Errored      int            `json:"errored"`
	Rejections   map[string]int `json:"rejections,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

func newRunView(run runlog.Run) runView {
	view := runView{
		ID:           run.ID,
		Status:       string(run.Status),
		Input:        run.InputPath,
		Output:       run.OutputPath,
		Validators:   run.Validators,
		Total:        run.Total,
		Kept:         run.Kept,
		Dropped:      run.Dropped,
		Errored:      run.Errored,
		Rejections:   run.Rejections,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	return view
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the filter run history",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runlog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Status),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(run.Kept),
					strconv.Itoa(run.Total),
					run.InputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Started", "Kept", "Total", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run by id or unique id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runlog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, newRunView(*run))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:        %s\n", run.ID)
			fmt.Fprintf(out, "Status:     %s\n", run.Status)
			fmt.Fprintf(out, "Input:      %s\n", run.InputPath)
			fmt.Fprintf(out, "Output:     %s\n", run.OutputPath)
			fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.RFC3339))
			if d := run.Duration(); d > 0 {
				fmt.Fprintf(out, "Duration:   %s\n", d.Round(time.Millisecond))
			}
			fmt.Fprintf(out, "Rows:       %d kept, %d dropped, %d errored of %d\n", run.Kept, run.Dropped, run.Errored, run.Total)
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
			}
			if len(run.Rejections) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderRejections(run.Rejections))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
