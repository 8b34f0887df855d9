package dataset

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"speteval/internal/services"
)

// ErrMissingColumn reports a required column absent from the header.
var ErrMissingColumn = errors.New("missing column")

// Table is a header row plus data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	return slices.Index(t.Header, name)
}

// HasColumn reports whether name is in the header.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RequireColumns fails with ErrMissingColumn (a configuration error) naming
// every absent column.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w: %s", services.ErrConfiguration, ErrMissingColumn, strings.Join(missing, ", "))
}

// Select returns a table holding the rows whose keep flag is set. Rows are
// shared, not copied.
func (t *Table) Select(keep []bool) *Table {
	out := &Table{Header: slices.Clone(t.Header)}
	for i, row := range t.Rows {
		if i < len(keep) && keep[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
