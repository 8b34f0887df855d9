package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"speteval/internal/config"
	"speteval/internal/dataset"
	"speteval/internal/filter"
	"speteval/internal/logging"
	"speteval/internal/runlog"
	"speteval/internal/services"
)

type filterResult struct {
	RunID      string         `json:"run_id"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	Total      int            `json:"total"`
	Kept       int            `json:"kept"`
	Dropped    int            `json:"dropped"`
	Errored    int            `json:"errored"`
	Rejections map[string]int `json:"rejections"`
	Errors     []string       `json:"errors,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var workers int
	var onError string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "filter <input.csv>",
		Short: "Drop dataset rows that fail the enabled validators",
		Long: `Filter reads a CSV dataset, evaluates every row against the enabled
validators and writes the surviving rows, header first, to the output file.
Each invocation is recorded in the run history (see "speteval runs").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := filter.TableOptionsFromConfig(cfg.Dataset)
			if cmd.Flags().Changed("workers") {
				if workers < 0 {
					return fmt.Errorf("--workers must be >= 0")
				}
				opts.Workers = workers
			}
			if cmd.Flags().Changed("on-error") {
				policy := strings.ToLower(strings.TrimSpace(onError))
				if policy != config.OnErrorAbort && policy != config.OnErrorSkip {
					return fmt.Errorf("--on-error must be %q or %q", config.OnErrorAbort, config.OnErrorSkip)
				}
				opts.OnError = policy
			}

			input, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = defaultOutputPath(input)
			}
			if output, err = filepath.Abs(output); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if output == input {
				return fmt.Errorf("output %s would overwrite the input dataset", output)
			}

			pipeline, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			if err := pipeline.Preflight(); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			lock := flock.New(output + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock output: %w", err)
			}
			if !locked {
				return fmt.Errorf("another filter run is writing %s", output)
			}
			defer func() {
				_ = lock.Unlock()
				_ = os.Remove(lock.Path())
			}()

			store, err := runlog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			names := make([]string, 0, pipeline.Registry().Len())
			for _, name := range pipeline.Registry().Names() {
				names = append(names, string(name))
			}
			run, err := store.Begin(cmd.Context(), "", input, output, names)
			if err != nil {
				return err
			}
			runCtx := services.WithRunID(cmd.Context(), run.ID)
			runLogger := logging.WithContext(runCtx, logger)

			report, err := filterDataset(runCtx, pipeline, cfg, opts, input, output)
			if err != nil {
				logging.ErrorWithContext(runLogger, "filter run failed", "run_failed",
					logging.Error(err),
					logging.String("error_kind", string(services.Classify(err))),
					logging.String(logging.FieldErrorHint, errorHint(err)),
				)
				if failErr := store.Fail(context.WithoutCancel(runCtx), run.ID, err); failErr != nil {
					runLogger.Warn("record run failure", logging.Error(failErr))
				}
				return err
			}

			summary := runlog.Summary{
				Total:      report.Total,
				Kept:       report.Kept,
				Dropped:    report.Dropped,
				Errored:    report.Errored,
				Rejections: make(map[string]int, len(report.Rejections)),
			}
			for name, count := range report.Rejections {
				summary.Rejections[string(name)] = count
			}
			if err := store.Complete(runCtx, run.ID, summary); err != nil {
				return err
			}

			result := filterResult{
				RunID:      run.ID,
				Input:      input,
				Output:     output,
				Total:      report.Total,
				Kept:       report.Kept,
				Dropped:    report.Dropped,
				Errored:    report.Errored,
				Rejections: summary.Rejections,
				DurationMS: report.Duration.Milliseconds(),
			}
			for _, rowErr := range report.Errors {
				result.Errors = append(result.Errors, rowErr.Error())
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			renderFilterResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination CSV (default <input>.filtered.csv)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent rows (0 = one per CPU; overrides dataset.workers)")
	cmd.Flags().StringVar(&onError, "on-error", "", "Record error policy: abort or skip (overrides dataset.on_error)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func filterDataset(ctx context.Context, pipeline *filter.Pipeline, cfg *config.Config, opts filter.TableOptions, input, output string) (*filter.Report, error) {
	csvOpts := dataset.Options{Delimiter: cfg.DelimiterRune()}
	table, err := dataset.ReadCSV(input, csvOpts)
	if err != nil {
		return nil, err
	}
	kept, report, err := pipeline.FilterTable(ctx, table, opts)
	if err != nil {
		return nil, err
	}
	if err := dataset.WriteCSV(output, kept, csvOpts); err != nil {
		return nil, err
	}
	return report, nil
}

// defaultOutputPath inserts ".filtered" before the input's extension.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		return input + ".filtered.csv"
	}
	return strings.TrimSuffix(input, ext) + ".filtered" + ext
}

func errorHint(err error) string {
	if errors.Is(err, context.Canceled) {
		return "run was interrupted"
	}
	switch services.Classify(err) {
	case services.KindConfiguration:
		return "fix the configuration or dataset columns and rerun"
	case services.KindNotFound:
		return "check storage.root or rerun with --on-error skip"
	case services.KindTransient, services.KindTimeout:
		return "storage was unavailable; rerun once it recovers"
	default:
		return "check logs for details"
	}
}

func renderFilterResult(w io.Writer, result filterResult) {
	color := shouldColorize(w)
	fmt.Fprintf(w, "Run %s\n", result.RunID)
	fmt.Fprintf(w, "Kept %s of %d rows -> %s\n",
		colorize(strconv.Itoa(result.Kept), ansiGreen, color), result.Total, result.Output)
	if result.Dropped > 0 {
		fmt.Fprintf(w, "Dropped %s rows\n", colorize(strconv.Itoa(result.Dropped), ansiRed, color))
	}
	if result.Errored > 0 {
		fmt.Fprintf(w, "Skipped %s rows with errors\n", colorize(strconv.Itoa(result.Errored), ansiRed, color))
	}
	fmt.Fprintf(w, "Took %s\n", (time.Duration(result.DurationMS) * time.Millisecond).String())

	if len(result.Rejections) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderRejections(result.Rejections))
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, line := range result.Errors {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func renderRejections(rejections map[string]int) string {
	names := make([]string, 0, len(rejections))
	total := 0
	for name, count := range rejections {
		names = append(names, name)
		total += count
	}
	sort.Slice(names, func(i, j int) bool {
		if rejections[names[i]] != rejections[names[j]] {
			return rejections[names[i]] > rejections[names[j]]
		}
		return names[i] < names[j]
	})
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(rejections[name])})
	}
	return renderTable([]string{"Validator", "Rejected"}, rows,
		[]columnAlignment{alignLeft, alignRight}, "Total", strconv.Itoa(total))
}
