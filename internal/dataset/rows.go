package dataset

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Predicate decides whether row index i is kept. It may be called from
// several goroutines at once.
type Predicate func(ctx context.Context, index int, row []string) (bool, error)

// ForEachRow evaluates keep for every row of t using up to workers
// goroutines (zero means one per CPU) and returns the kept rows in input
// order. The first predicate error cancels the remaining rows and is
// returned.
func ForEachRow(ctx context.Context, t *Table, workers int, keep Predicate) (*Table, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	verdicts := make([]bool, t.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range t.Rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ok, err := keep(gctx, i, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			verdicts[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.Select(verdicts), nil
}
