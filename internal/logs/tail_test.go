package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"speteval/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speteval.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Tail(path, 2, nil)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestTailFiltersAndSkipsPartialLine(t *testing.T) {
	path := writeLog(t, "run_id=abc kept\nrun_id=def kept\nrun_id=abc dropped\nrun_id=abc partial")

	lines, offset, err := logs.Tail(path, 0, logs.Containing("run_id=abc", ""))
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 2 || lines[1] != "run_id=abc dropped" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if want := int64(len("run_id=abc kept\nrun_id=def kept\nrun_id=abc dropped\n")); offset != want {
		t.Fatalf("offset = %d, want %d", offset, want)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 10, nil)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Tail(path, 1, nil)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			cancel()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("follow returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not observe appended line")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected follow lines: %#v", got)
	}
}

func TestForRun(t *testing.T) {
	match := logs.ForRun("abc")
	tests := []struct {
		line string
		want bool
	}{
		{"2026-01-02 INFO filter: table filtered run_id=abc123 kept=2", true},
		{`{"ts":"x","msg":"table filtered","run_id":"abc123"}`, true},
		{"2026-01-02 INFO filter: table filtered run_id=def kept=2", false},
	}
	for _, tt := range tests {
		if got := match(tt.line); got != tt.want {
			t.Errorf("ForRun(abc)(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
	if logs.ForRun(" ") != nil {
		t.Fatal("expected nil match for empty prefix")
	}
}
