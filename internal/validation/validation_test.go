package validation_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"speteval/internal/config"
	"speteval/internal/measure"
	"speteval/internal/media/audio"
	"speteval/internal/services"
	"speteval/internal/storage"
	"speteval/internal/testsupport"
	"speteval/internal/validation"
)

func samples(n int) measure.Sequence {
	return measure.Flat(make([]float64, n))
}

type stubLoader struct {
	clip *audio.Clip
	err  error
}

func (s stubLoader) Load(context.Context, string) (*audio.Clip, error) {
	return s.clip, s.err
}

type stubStore map[string]bool

func (s stubStore) Exists(_ context.Context, ref string) (bool, error) {
	return s[ref], nil
}

func TestFileExistence(t *testing.T) {
	v := validation.NewFileExistence(stubStore{"a.wav": true})
	for ref, want := range map[string]bool{"a.wav": true, "b.wav": false} {
		got, err := v.Validate(context.Background(), validation.Input{Path: ref})
		if err != nil || got != want {
			t.Fatalf("Validate(%q) = %v, %v; want %v", ref, got, err, want)
		}
	}
}

func TestLoadability(t *testing.T) {
	clip := &audio.Clip{Samples: [][]float64{{0}}, SampleRate: 16000}
	tests := []struct {
		name    string
		loader  stubLoader
		want    bool
		wantErr error
	}{
		{"decodes", stubLoader{clip: clip}, true, nil},
		{"corrupt", stubLoader{err: fmt.Errorf("decode x: %w", audio.ErrCorrupt)}, false, nil},
		{"missing", stubLoader{err: fmt.Errorf("%w: x", audio.ErrNotFound)}, false, services.ErrNotFound},
		{"other", stubLoader{err: context.DeadlineExceeded}, false, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validation.NewLoadability(tt.loader)
			got, err := v.Validate(context.Background(), validation.Input{Path: "x.wav"})
			if got != tt.want {
				t.Fatalf("verdict = %v, want %v", got, tt.want)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadabilityLoadReturnsClip(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteWAV(t, filepath.Join(root, "a.wav"), 1, 16000, 200)
	v := validation.NewLoadability(audio.NewLoader(storage.NewLocal(root)))

	clip, err := v.Load(context.Background(), "a.wav")
	if err != nil || clip == nil {
		t.Fatalf("Load = %v, %v", clip, err)
	}
	if clip.SampleRate != 16000 {
		t.Fatalf("sample rate = %d", clip.SampleRate)
	}
}

func TestExtension(t *testing.T) {
	v := validation.NewExtension(".wav", "flac", "wav", " ")
	if got := v.Allowed(); len(got) != 2 {
		t.Fatalf("Allowed = %v", got)
	}
	tests := map[string]bool{
		"a/b/file.wav":   true,
		"clip.flac":      true,
		"clip.WAV":       false,
		"noext":          false,
		"/invalid/path":  false,
		"archive.wav.gz": false,
	}
	for path, want := range tests {
		got, _ := v.Validate(context.Background(), validation.Input{Path: path})
		if got != want {
			t.Errorf("Validate(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestChannels(t *testing.T) {
	mono, err := validation.NewChannels(1, validation.DefaultMinLength)
	if err != nil {
		t.Fatalf("NewChannels: %v", err)
	}
	stereo, _ := validation.NewChannels(2, validation.DefaultMinLength)

	tests := []struct {
		name    string
		v       validation.Validator
		content measure.Sequence
		want    bool
	}{
		{"flat long array is mono", mono, samples(1000), true},
		{"flat long array is not stereo", stereo, samples(1000), false},
		{"channel-first mono", mono, measure.Matrix([][]float64{make([]float64, 500)}), true},
		{"channel-first stereo", stereo, measure.Matrix([][]float64{make([]float64, 500), make([]float64, 500)}), true},
		{"stereo is not mono", mono, measure.Matrix([][]float64{make([]float64, 500), make([]float64, 500)}), false},
		{"short flat array uses top level", stereo, samples(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Validate(context.Background(), validation.Input{Content: tt.content})
			if err != nil || got != tt.want {
				t.Fatalf("Validate = %v, %v; want %v", got, err, tt.want)
			}
		})
	}

	if _, err := mono.Validate(context.Background(), validation.Input{Path: "a.wav"}); !errors.Is(err, validation.ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent, got %v", err)
	}
	if _, err := validation.NewChannels(0, 100); !errors.Is(err, validation.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestSampleRate(t *testing.T) {
	v, err := validation.NewSampleRate(16000)
	if err != nil {
		t.Fatalf("NewSampleRate: %v", err)
	}
	if got, _ := v.Validate(context.Background(), validation.Input{SampleRate: 16000}); !got {
		t.Fatal("expected 16 kHz to pass")
	}
	if got, _ := v.Validate(context.Background(), validation.Input{SampleRate: 8000}); got {
		t.Fatal("expected 8 kHz to fail")
	}
	if _, err := v.Validate(context.Background(), validation.Input{}); !errors.Is(err, validation.ErrMissingContent) {
		t.Fatalf("expected ErrMissingContent, got %v", err)
	}
}

func TestLength(t *testing.T) {
	audioLen, err := validation.NewLength(validation.LengthOfAudio, 10, 20)
	if err != nil {
		t.Fatalf("NewLength: %v", err)
	}
	textLen, _ := validation.NewLength(validation.LengthOfText, 2, 3)

	if audioLen.Requires() != validation.FieldContent || textLen.Requires() != validation.FieldText {
		t.Fatal("unexpected requirements")
	}
	for n, want := range map[int]bool{9: false, 10: true, 20: true, 21: false} {
		got, _ := audioLen.Validate(context.Background(), validation.Input{Content: samples(n)})
		if got != want {
			t.Errorf("audio length %d = %v, want %v", n, got, want)
		}
	}
	for text, want := range map[string]bool{"a": false, "ab": true, "日本語": true, "abcd": false} {
		got, _ := textLen.Validate(context.Background(), validation.Input{Text: text})
		if got != want {
			t.Errorf("text length %q = %v, want %v", text, got, want)
		}
	}

	if _, err := validation.NewLength(validation.LengthOfAudio, 5, 1); !errors.Is(err, validation.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
	if _, err := validation.NewLength("bytes", 0, 1); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTextToSpeech(t *testing.T) {
	v, err := validation.NewTextToSpeech(0.5, 1)
	if err != nil {
		t.Fatalf("NewTextToSpeech: %v", err)
	}
	tests := []struct {
		text string
		n    int
		want bool
	}{
		{strings.Repeat("a", 10), 10, true},
		{strings.Repeat("a", 5), 10, true},
		{strings.Repeat("a", 4), 10, false},
		{"", 10, false},
		{strings.Repeat("a", 5), 0, false},
	}
	for _, tt := range tests {
		got, err := v.Validate(context.Background(), validation.Input{Text: tt.text, Content: samples(tt.n)})
		if err != nil || got != tt.want {
			t.Errorf("text=%d samples=%d: got %v, %v; want %v", len(tt.text), tt.n, got, err, tt.want)
		}
	}
}

func TestTextToSpeechRejectsBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		field    string
	}{
		{"min above one", 1.5, 0.5, "min_ratio"},
		{"negative min", -0.1, 0.5, "min_ratio"},
		{"max above one", 0.1, 1.5, "max_ratio"},
		{"min above max", 0.6, 0.5, "max_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validation.NewTextToSpeech(tt.min, tt.max)
			var rangeErr *validation.RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected *RangeError, got %v", err)
			}
			if rangeErr.Field != tt.field {
				t.Fatalf("field = %q, want %q", rangeErr.Field, tt.field)
			}
			if !errors.Is(err, validation.ErrRange) || !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected range and configuration markers, got %v", err)
			}
		})
	}
}

func TestTextToFrame(t *testing.T) {
	v := validation.NewTextToFrame(1, validation.DefaultThreshold)
	tests := []struct {
		text string
		n    int
		want bool
	}{
		{strings.Repeat("a", 100), 100, true},
		{strings.Repeat("a", 101), 100, false},
		{"", 100, false},
	}
	for _, tt := range tests {
		got, _ := v.Validate(context.Background(), validation.Input{Text: tt.text, Content: samples(tt.n)})
		if got != tt.want {
			t.Errorf("text=%d samples=%d: got %v, want %v", len(tt.text), tt.n, got, tt.want)
		}
	}

	// Hop length is honoured: 400 samples at hop 200 is two frames.
	hop := validation.NewTextToFrame(200, 1)
	if got, _ := hop.Validate(context.Background(), validation.Input{Text: "ab", Content: samples(400)}); !got {
		t.Fatal("expected two characters over two frames to pass")
	}
	if got, _ := hop.Validate(context.Background(), validation.Input{Text: "abc", Content: samples(400)}); got {
		t.Fatal("expected three characters over two frames to fail")
	}
}

func TestNamesAndFields(t *testing.T) {
	if got := validation.NameTextToSpeech.Label(); got != "Text To Speech" {
		t.Fatalf("Label = %q", got)
	}
	if !validation.NameChannels.Known() || validation.Name("bogus").Known() {
		t.Fatal("Known mismatch")
	}
	f := validation.FieldText | validation.FieldContent
	if f.String() != "text|content" || !f.Has(validation.FieldContent) || f.Has(validation.FieldPath) || !f.NeedsAudio() {
		t.Fatalf("unexpected field behaviour for %s", f)
	}
	in := validation.Input{Path: "a", Content: samples(1), SampleRate: 8000}
	if !in.Provides().Has(validation.FieldContent | validation.FieldSampleRate) {
		t.Fatal("expected decoded input to provide content and sample rate")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Validators.Length.Enabled = true
	cfg.Validators.Length.Max = 1_000_000
	cfg.Validators.TextToSpeech.Enabled = true
	cfg.Validators.TextToFrame.Enabled = true

	vals, err := validation.FromConfig(cfg.Validators, storage.NewLocal(t.TempDir()))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	var names []validation.Name
	for _, v := range vals {
		names = append(names, v.Name())
	}
	want := validation.Names()
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if got := validation.Describe(vals[3]); got != "channels(expected=1, min_length=100)" {
		t.Fatalf("Describe = %q", got)
	}

	cfg.Validators.TextToSpeech.MinRatio = 2
	if _, err := validation.FromConfig(cfg.Validators, storage.NewLocal(t.TempDir())); !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, validation.ErrRange) {
		t.Fatalf("expected configuration range error, got %v", err)
	}
}
