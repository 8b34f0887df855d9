package testsupport

import (
	"context"
	"testing"

	"speteval/internal/config"
	"speteval/internal/runlog"
)

// MustOpenRunStore opens a runlog.Store for tests and registers cleanup.
func MustOpenRunStore(t testing.TB, cfg *config.Config) *runlog.Store {
	t.Helper()

	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("runlog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun records a running run for tests using the provided store.
func BeginRun(t testing.TB, store *runlog.Store, input string) *runlog.Run {
	t.Helper()

	run, err := store.Begin(context.Background(), "", input, input+".kept.csv", []string{"loadability"})
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return run
}
