package filter

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"speteval/internal/config"
	"speteval/internal/dataset"
	"speteval/internal/logging"
	"speteval/internal/services"
	"speteval/internal/validation"
)

// TableOptions binds the pipeline to a table.
type TableOptions struct {
	PathColumn string
	TextColumn string
	// Workers bounds concurrent rows; zero means one per CPU.
	Workers int
	// OnError is config.OnErrorAbort (default) or config.OnErrorSkip.
	// Configuration errors abort regardless.
	OnError string
}

// TableOptionsFromConfig maps the [dataset] section onto TableOptions.
func TableOptionsFromConfig(cfg config.Dataset) TableOptions {
	return TableOptions{
		PathColumn: cfg.PathColumn,
		TextColumn: cfg.TextColumn,
		Workers:    cfg.Workers,
		OnError:    cfg.OnError,
	}
}

// RowError is a record error tolerated under the skip policy.
type RowError struct {
	Row  int
	Path string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Path, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Report summarizes a table filter run.
type Report struct {
	Total      int
	Kept       int
	Dropped    int
	Errored    int
	Rejections map[validation.Name]int
	Errors     []RowError
	Duration   time.Duration
}

// FilterTable evaluates every row of table and returns the rows that pass.
// Missing columns fail before any row is evaluated.
func (p *Pipeline) FilterTable(ctx context.Context, table *dataset.Table, opts TableOptions) (*dataset.Table, *Report, error) {
	start := time.Now()
	if err := table.RequireColumns(opts.PathColumn, opts.TextColumn); err != nil {
		return nil, nil, err
	}
	if err := p.Preflight(); err != nil {
		return nil, nil, err
	}
	pathIdx := table.ColumnIndex(opts.PathColumn)
	textIdx := table.ColumnIndex(opts.TextColumn)
	skip := opts.OnError == config.OnErrorSkip

	report := &Report{Total: table.Len(), Rejections: make(map[validation.Name]int)}
	var mu sync.Mutex

	kept, err := dataset.ForEachRow(ctx, table, opts.Workers, func(ctx context.Context, i int, row []string) (bool, error) {
		ctx = services.WithRow(ctx, i)
		rec := Record{Path: row[pathIdx], Text: row[textIdx]}
		verdict, err := p.Inspect(ctx, rec)
		if err != nil {
			if !skip || services.Fatal(err) {
				return false, err
			}
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "record skipped", "record_skipped",
				logging.String(logging.FieldPath, rec.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or remove the referenced audio"),
				logging.String(logging.FieldImpact, "row dropped from output"),
			)
			mu.Lock()
			report.Errored++
			report.Errors = append(report.Errors, RowError{Row: i, Path: rec.Path, Err: err})
			mu.Unlock()
			return false, nil
		}
		if !verdict.Keep {
			mu.Lock()
			report.Rejections[verdict.RejectedBy]++
			mu.Unlock()
		}
		return verdict.Keep, nil
	})
	if err != nil {
		return nil, nil, err
	}

	report.Kept = kept.Len()
	report.Dropped = report.Total - report.Kept - report.Errored
	report.Duration = time.Since(start)
	sortRowErrors(report.Errors)

	logging.WithContext(ctx, p.logger).Info("table filtered",
		logging.Int("total", report.Total),
		logging.Int("kept", report.Kept),
		logging.Int("dropped", report.Dropped),
		logging.Int("errored", report.Errored),
		logging.Duration("duration", report.Duration),
		logging.String(logging.FieldEventType, "table_filtered"),
	)
	return kept, report, nil
}

func sortRowErrors(errs []RowError) {
	slices.SortFunc(errs, func(a, b RowError) int { return a.Row - b.Row })
}
