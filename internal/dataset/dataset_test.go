package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"speteval/internal/dataset"
	"speteval/internal/services"
)

func TestDecodeStripsByteOrderMark(t *testing.T) {
	input := "\ufeffpath,text\na.wav,hello\nb.wav,\"with, comma\"\n"
	table, err := dataset.Decode(strings.NewReader(input), dataset.Options{})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.Header[0] != "path" {
		t.Fatalf("expected BOM stripped from header, got %q", table.Header[0])
	}
	if table.Len() != 2 || table.Rows[1][1] != "with, comma" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
}

func TestDecodeDelimiterAndEmptyInput(t *testing.T) {
	table, err := dataset.Decode(strings.NewReader("path|text\na.wav|hi\n"), dataset.Options{Delimiter: '|'})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if table.ColumnIndex("text") != 1 || table.Rows[0][1] != "hi" {
		t.Fatalf("unexpected table: %+v", table)
	}

	empty, err := dataset.Decode(strings.NewReader(""), dataset.Options{})
	if err != nil {
		t.Fatalf("Decode empty returned error: %v", err)
	}
	if empty.Len() != 0 || empty.HasColumn("path") {
		t.Fatalf("unexpected empty table: %+v", empty)
	}

	if _, err := dataset.Decode(strings.NewReader("a,b\n1,2,3\n"), dataset.Options{}); err == nil {
		t.Fatal("expected error for ragged row")
	}
}

func TestRequireColumns(t *testing.T) {
	table := &dataset.Table{Header: []string{"path", "text"}}
	if err := table.RequireColumns("path", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := table.RequireColumns("path", "transcript", "speaker")
	if !errors.Is(err, dataset.ErrMissingColumn) || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected missing column configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "transcript, speaker") {
		t.Fatalf("expected missing names in error, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "kept.csv")
	table := &dataset.Table{
		Header: []string{"path", "text"},
		Rows:   [][]string{{"a.wav", "hello"}, {"b.wav", "quote \" inside"}},
	}
	if err := dataset.WriteCSV(path, table, dataset.Options{Delimiter: ';'}); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	got, err := dataset.ReadCSV(path, dataset.Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[1][1] != "quote \" inside" {
		t.Fatalf("unexpected rows: %v", got.Rows)
	}

	if _, err := dataset.ReadCSV(filepath.Join(t.TempDir(), "missing.csv"), dataset.Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEncodeHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := dataset.Encode(&buf, &dataset.Table{Header: []string{"path", "text"}}, dataset.Options{}); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if buf.String() != "path,text\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func numberedTable(n int) *dataset.Table {
	table := &dataset.Table{Header: []string{"n"}}
	for i := 0; i < n; i++ {
		table.Rows = append(table.Rows, []string{string(rune('a' + i%26))})
	}
	return table
}

func TestForEachRowPreservesOrder(t *testing.T) {
	table := numberedTable(50)
	var calls atomic.Int32

	kept, err := dataset.ForEachRow(context.Background(), table, 8, func(_ context.Context, i int, _ []string) (bool, error) {
		calls.Add(1)
		return i%2 == 0, nil
	})
	if err != nil {
		t.Fatalf("ForEachRow returned error: %v", err)
	}
	if calls.Load() != 50 {
		t.Fatalf("expected 50 calls, got %d", calls.Load())
	}
	if kept.Len() != 25 {
		t.Fatalf("expected 25 rows, got %d", kept.Len())
	}
	for j, row := range kept.Rows {
		if row[0] != table.Rows[j*2][0] {
			t.Fatalf("row %d out of order: %v", j, row)
		}
	}
}

func TestForEachRowStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := dataset.ForEachRow(context.Background(), numberedTable(10), 1, func(_ context.Context, i int, _ []string) (bool, error) {
		if i == 3 {
			return false, boom
		}
		return true, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("expected row index in error, got %v", err)
	}
}

func TestForEachRowHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dataset.ForEachRow(ctx, numberedTable(5), 2, func(context.Context, int, []string) (bool, error) {
		return true, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
