package runlog_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"speteval/internal/runlog"
	"speteval/internal/services"
	"speteval/internal/testsupport"
)

func TestBeginCompleteGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunStore(t, cfg)
	ctx := context.Background()

	run, err := store.Begin(ctx, "", "in.csv", "out.csv", []string{"loadability", "channels"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if run.ID == "" || run.Status != runlog.StatusRunning {
		t.Fatalf("unexpected run: %#v", run)
	}

	err = store.Complete(ctx, run.ID, runlog.Summary{
		Total: 10, Kept: 6, Dropped: 3, Errored: 1,
		Rejections: map[string]int{"channels": 2, "loadability": 1, "sample_rate": 0},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != runlog.StatusCompleted || got.Total != 10 || got.Kept != 6 || got.Dropped != 3 || got.Errored != 1 {
		t.Fatalf("unexpected run: %#v", got)
	}
	if len(got.Validators) != 2 || got.Validators[1] != "channels" {
		t.Fatalf("unexpected validators: %v", got.Validators)
	}
	if len(got.Rejections) != 2 || got.Rejections["channels"] != 2 {
		t.Fatalf("unexpected rejections: %v", got.Rejections)
	}
	if got.FinishedAt.IsZero() || got.Duration() < 0 {
		t.Fatalf("expected finish time, got %v", got.FinishedAt)
	}

	byPrefix, err := store.Get(ctx, run.ID[:8])
	if err != nil || byPrefix.ID != run.ID {
		t.Fatalf("Get by prefix = %v, %v", byPrefix, err)
	}
}

func TestFailAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunStore(t, cfg)
	ctx := context.Background()

	first := testsupport.BeginRun(t, store, "a.csv")
	second := testsupport.BeginRun(t, store, "b.csv")
	if err := store.Fail(ctx, first.ID, errors.New("missing column")); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v", runs)
	}
	if runs[1].Status != runlog.StatusFailed || runs[1].ErrorMessage != "missing column" {
		t.Fatalf("unexpected failed run: %#v", runs[1])
	}
	if runs[0].Duration() != 0 {
		t.Fatal("expected running run to report zero duration")
	}

	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("List(1) = %v, %v", limited, err)
	}
}

func TestGetErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, runlog.ErrNotFound) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Complete(ctx, "nope", runlog.Summary{}); !errors.Is(err, runlog.ErrNotFound) {
		t.Fatalf("expected not found on complete, got %v", err)
	}

	if _, err := store.Begin(ctx, "abc-1", "a.csv", "", nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := store.Begin(ctx, "abc-2", "b.csv", "", nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, runlog.ErrAmbiguous) {
		t.Fatalf("expected ambiguous prefix, got %v", err)
	}
	if run, err := store.Get(ctx, "abc-2"); err != nil || run.InputPath != "b.csv" {
		t.Fatalf("Get exact = %v, %v", run, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunStore(t, cfg)
	path := store.Path()
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update: %v", err)
	}
	db.Close()

	if _, err := runlog.Open(cfg); !errors.Is(err, runlog.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
