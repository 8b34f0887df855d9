package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	rowKey       contextKey = "row"
	validatorKey contextKey = "validator"
)

// WithRunID annotates context with the filter run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the filter run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRow annotates context with the zero-based dataset row index.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, rowKey, row)
}

// RowFromContext extracts the dataset row index if present.
func RowFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(rowKey).(int)
	return v, ok
}

// WithValidator annotates context with the validator currently running.
func WithValidator(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, validatorKey, name)
}

// ValidatorFromContext returns the validator name if present.
func ValidatorFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(validatorKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
