package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"speteval/internal/logging"
	"speteval/internal/measure"
	"speteval/internal/media/audio"
	"speteval/internal/services"
	"speteval/internal/validation"
)

// ErrMissingContent reports a content rule that cannot be fed decoded audio.
var ErrMissingContent = validation.ErrMissingContent

// Record is one audio reference paired with its transcript. When Content is
// set the audio is already in memory: loadability and decoding are skipped
// and SampleRate must accompany it for sample rate checks.
type Record struct {
	Path       string
	Text       string
	Content    measure.Sequence
	SampleRate int
}

// Verdict is the outcome for one record.
type Verdict struct {
	Keep bool
	// RejectedBy names the first validator that failed the record.
	RejectedBy validation.Name
	// Reason is set when the rejection carries more detail than the
	// validator name, such as why audio failed to decode.
	Reason string
	// Clip is the decoded audio whenever decoding succeeded, including
	// records rejected by a later validator. Nil for in-memory records.
	Clip *audio.Clip
}

// clipLoader is implemented by the loadability validator.
type clipLoader interface {
	Decode(ctx context.Context, path string) (*audio.Clip, error)
}

// Pipeline evaluates records against a registry.
type Pipeline struct {
	registry *Registry
	logger   *slog.Logger
}

// New returns a pipeline over registry.
func New(registry *Registry, logger *slog.Logger) *Pipeline {
	if registry == nil {
		registry = NewRegistry(logger)
	}
	return &Pipeline{
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "filter"),
	}
}

// Registry returns the pipeline's registry.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Preflight fails when a registered validator needs decoded audio but no
// loadability validator is registered to decode path-based records.
func (p *Pipeline) Preflight() error {
	if _, ok := p.registry.Get(validation.NameLoadability); ok {
		return nil
	}
	for _, v := range p.registry.Validators() {
		if v.Requires().NeedsAudio() {
			return missingContent(v, v.Requires())
		}
	}
	return nil
}

// Evaluate reports whether the record at path with text passes every
// validator.
func (p *Pipeline) Evaluate(ctx context.Context, path, text string) (bool, error) {
	verdict, err := p.Inspect(ctx, Record{Path: path, Text: text})
	return verdict.Keep, err
}

// Inspect evaluates rec and reports which validator, if any, rejected it.
// Errors are returned for missing references, storage failures and
// configuration problems; corrupt audio is a rejection, not an error.
func (p *Pipeline) Inspect(ctx context.Context, rec Record) (Verdict, error) {
	in := validation.Input{
		Path:       rec.Path,
		Text:       rec.Text,
		Content:    rec.Content,
		SampleRate: rec.SampleRate,
	}
	inMemory := rec.Content != nil
	var clip *audio.Clip

	for _, v := range p.registry.Validators() {
		name := v.Name()
		if name == validation.NameLoadability {
			if inMemory {
				continue
			}
			decoded, reason, err := p.load(ctx, v, &in)
			if err != nil {
				return Verdict{}, fmt.Errorf("%s: %w", name, err)
			}
			if reason != "" {
				return p.reject(ctx, rec, Verdict{RejectedBy: name, Reason: reason}), nil
			}
			clip = decoded
			continue
		}

		if missing := v.Requires() &^ in.Provides(); missing != 0 {
			return Verdict{}, missingContent(v, missing)
		}
		ok, err := v.Validate(ctx, in)
		if err != nil {
			return Verdict{}, fmt.Errorf("%s: %w", name, err)
		}
		if !ok {
			return p.reject(ctx, rec, Verdict{RejectedBy: name, Clip: clip}), nil
		}
	}
	return Verdict{Keep: true, Clip: clip}, nil
}

// load decodes the record once and threads the content into in. A non-empty
// reason means the record is rejected.
func (p *Pipeline) load(ctx context.Context, v validation.Validator, in *validation.Input) (*audio.Clip, string, error) {
	loader, ok := v.(clipLoader)
	if !ok {
		passed, err := v.Validate(ctx, *in)
		if err != nil || passed {
			return nil, "", err
		}
		return nil, "audio could not be decoded", nil
	}
	clip, err := loader.Decode(ctx, in.Path)
	if err != nil {
		if errors.Is(err, audio.ErrCorrupt) {
			return nil, err.Error(), nil
		}
		return nil, "", err
	}
	if clip == nil {
		return nil, "audio could not be decoded", nil
	}
	in.Content = clip.Content()
	in.SampleRate = clip.SampleRate
	return clip, "", nil
}

func (p *Pipeline) reject(ctx context.Context, rec Record, verdict Verdict) Verdict {
	ctx = services.WithValidator(ctx, string(verdict.RejectedBy))
	attrs := []logging.Attr{
		logging.String(logging.FieldPath, rec.Path),
		logging.String(logging.FieldEventType, "record_rejected"),
	}
	if verdict.Reason != "" {
		attrs = append(attrs, logging.String(logging.FieldReason, verdict.Reason))
	}
	logging.WithContext(ctx, p.logger).Debug("record rejected", logging.Args(attrs...)...)
	return verdict
}

// Apply returns the records that pass, in their original order. The first
// record error stops evaluation and is returned.
func (p *Pipeline) Apply(ctx context.Context, records []Record) ([]Record, error) {
	if err := p.preflightFor(records); err != nil {
		return nil, err
	}
	kept := make([]Record, 0, len(records))
	for i, rec := range records {
		verdict, err := p.Inspect(services.WithRow(ctx, i), rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if verdict.Keep {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

func (p *Pipeline) preflightFor(records []Record) error {
	for _, rec := range records {
		if rec.Content == nil {
			return p.Preflight()
		}
	}
	return nil
}

func missingContent(v validation.Validator, missing validation.Field) error {
	return services.Wrap(
		services.ErrConfiguration,
		"filter",
		"evaluate",
		fmt.Sprintf("%s requires %s; register %s or supply decoded content", v.Name(), missing, validation.NameLoadability),
		ErrMissingContent,
	)
}
