package validation

import (
	"errors"
	"fmt"

	"speteval/internal/services"
)

var (
	// ErrRange marks configuration values outside their permitted interval.
	ErrRange = errors.New("value out of range")
	// ErrMissingContent reports a content rule evaluated without decoded audio.
	ErrMissingContent = errors.New("decoded audio content unavailable")
)

// RangeError describes a rejected configuration value.
type RangeError struct {
	Validator Name
	Field     string
	Min       float64
	Max       float64
	Value     float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s = %g outside [%g, %g]", e.Validator, e.Field, e.Value, e.Min, e.Max)
}

// Unwrap exposes both ErrRange and services.ErrConfiguration to errors.Is.
func (e *RangeError) Unwrap() []error {
	return []error{ErrRange, services.ErrConfiguration}
}

func checkRange(name Name, field string, value, lo, hi float64) error {
	if value < lo || value > hi {
		return &RangeError{Validator: name, Field: field, Min: lo, Max: hi, Value: value}
	}
	return nil
}
