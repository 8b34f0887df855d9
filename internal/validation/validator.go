package validation

import (
	"context"

	"speteval/internal/measure"
)

// Input is the evaluation context shared by every validator for one record.
// Content and SampleRate are set once the audio has been decoded.
type Input struct {
	Path       string
	Text       string
	Content    measure.Sequence
	SampleRate int
}

// Provides returns the fields populated on in. Path and text are always
// present (possibly empty).
func (in Input) Provides() Field {
	fields := FieldPath | FieldText
	if in.Content != nil {
		fields |= FieldContent
	}
	if in.SampleRate > 0 {
		fields |= FieldSampleRate
	}
	return fields
}

// Validator is one named quality rule.
type Validator interface {
	Name() Name
	// Requires returns the Input fields Validate reads.
	Requires() Field
	// Validate returns the verdict for in. An error means no verdict could be
	// reached (for example, the referenced file is missing).
	Validate(ctx context.Context, in Input) (bool, error)
}

func requireContent(name Name, in Input, fields Field) error {
	if missing := fields &^ in.Provides(); missing != 0 {
		return &missingError{name: name, fields: missing}
	}
	return nil
}

type missingError struct {
	name   Name
	fields Field
}

func (e *missingError) Error() string {
	return string(e.name) + ": " + ErrMissingContent.Error() + " (" + e.fields.String() + ")"
}

func (e *missingError) Unwrap() error { return ErrMissingContent }
