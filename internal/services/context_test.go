package services_test

import (
	"context"
	"testing"

	"speteval/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithRow(ctx, 0)
	ctx = services.WithValidator(ctx, "channels")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if row, ok := services.RowFromContext(ctx); !ok || row != 0 {
		t.Fatalf("unexpected row: %v %v", row, ok)
	}
	if name, ok := services.ValidatorFromContext(ctx); !ok || name != "channels" {
		t.Fatalf("unexpected validator: %v %v", name, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithValidator(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.ValidatorFromContext(ctx); ok {
		t.Fatal("expected no validator")
	}
	if _, ok := services.RowFromContext(ctx); ok {
		t.Fatal("expected no row")
	}
}
