package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"speteval/internal/fileutil"
)

// Options controls CSV parsing and formatting.
type Options struct {
	// Delimiter separates fields. Zero means a comma.
	Delimiter rune
}

func (o Options) comma() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// ReadCSV loads path. The first record is the header.
func ReadCSV(path string, opts Options) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()

	table, err := Decode(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

// Decode parses delimited text from r. A UTF-8 or UTF-16 byte-order mark is
// consumed; input without one is read as UTF-8.
func Decode(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.Comma = opts.comma()

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", len(table.Rows), err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// WriteCSV writes t to path atomically.
func WriteCSV(path string, t *Table, opts Options) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, t, opts)
	})
}

// Encode writes the header and rows of t to w.
func Encode(w io.Writer, t *Table, opts Options) error {
	writer := csv.NewWriter(w)
	writer.Comma = opts.comma()
	if len(t.Header) > 0 {
		if err := writer.Write(t.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
