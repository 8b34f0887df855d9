package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"speteval/internal/measure"
	"speteval/internal/media/audio"
	"speteval/internal/services"
)

// Exister answers whether a reference exists on the backing store.
type Exister interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// ClipLoader decodes a reference into audio.
type ClipLoader interface {
	Load(ctx context.Context, ref string) (*audio.Clip, error)
}

// FileExistence passes records whose path exists.
type FileExistence struct {
	store Exister
}

// NewFileExistence checks references against store.
func NewFileExistence(store Exister) *FileExistence {
	return &FileExistence{store: store}
}

func (*FileExistence) Name() Name      { return NameFileExistence }
func (*FileExistence) Requires() Field { return FieldPath }
func (*FileExistence) String() string  { return string(NameFileExistence) }

func (v *FileExistence) Validate(ctx context.Context, in Input) (bool, error) {
	return v.store.Exists(ctx, in.Path)
}

// Loadability passes records whose path decodes as audio. Corrupt content is
// a failed verdict; a missing file or any other failure is returned as an
// error so the caller can tell a broken reference from a bad recording.
type Loadability struct {
	loader ClipLoader
}

// NewLoadability decodes through loader.
func NewLoadability(loader ClipLoader) *Loadability {
	return &Loadability{loader: loader}
}

func (*Loadability) Name() Name      { return NameLoadability }
func (*Loadability) Requires() Field { return FieldPath }
func (*Loadability) String() string  { return string(NameLoadability) }

func (v *Loadability) Validate(ctx context.Context, in Input) (bool, error) {
	clip, err := v.Load(ctx, in.Path)
	return clip != nil, err
}

// Load decodes path and returns the clip. A nil clip with a nil error means
// the content is corrupt.
func (v *Loadability) Load(ctx context.Context, path string) (*audio.Clip, error) {
	clip, err := v.Decode(ctx, path)
	if err != nil {
		if errors.Is(err, audio.ErrCorrupt) {
			return nil, nil
		}
		return nil, err
	}
	return clip, nil
}

// Decode is Load without folding corrupt content into a nil clip, so callers
// can report why decoding failed. Corrupt content matches audio.ErrCorrupt.
func (v *Loadability) Decode(ctx context.Context, path string) (*audio.Clip, error) {
	return v.loader.Load(ctx, path)
}

// Extension passes records whose path ends in an allowed extension. The
// comparison is case-sensitive.
type Extension struct {
	allowed []string
}

// NewExtension accepts the given extensions, with or without a leading dot.
func NewExtension(allowed ...string) *Extension {
	set := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		ext = strings.TrimLeft(strings.TrimSpace(ext), ".")
		if ext != "" && !slices.Contains(set, ext) {
			set = append(set, ext)
		}
	}
	return &Extension{allowed: set}
}

func (*Extension) Name() Name      { return NameExtension }
func (*Extension) Requires() Field { return FieldPath }

func (v *Extension) String() string {
	return fmt.Sprintf("%s(allowed=%s)", NameExtension, strings.Join(v.allowed, ","))
}

// Allowed returns a copy of the accepted extensions.
func (v *Extension) Allowed() []string {
	return slices.Clone(v.allowed)
}

func (v *Extension) Validate(_ context.Context, in Input) (bool, error) {
	return slices.Contains(v.allowed, measure.FileExtension(in.Path)), nil
}

// DefaultMinLength is the extent at which content counts as a single deep
// channel rather than a list of channels.
const DefaultMinLength = 100

// Channels checks the channel count. Content whose smallest nesting extent
// reaches MinLength is treated as mono; otherwise its top-level length is the
// channel count.
type Channels struct {
	expected  int
	minLength int
}

// NewChannels requires expected channels. minLength below zero is rejected.
func NewChannels(expected, minLength int) (*Channels, error) {
	if expected < 1 {
		return nil, &RangeError{Validator: NameChannels, Field: "expected", Min: 1, Max: maxInt, Value: float64(expected)}
	}
	if minLength < 0 {
		return nil, &RangeError{Validator: NameChannels, Field: "min_length", Min: 0, Max: maxInt, Value: float64(minLength)}
	}
	return &Channels{expected: expected, minLength: minLength}, nil
}

func (*Channels) Name() Name      { return NameChannels }
func (*Channels) Requires() Field { return FieldContent }

func (v *Channels) String() string {
	return fmt.Sprintf("%s(expected=%d, min_length=%d)", NameChannels, v.expected, v.minLength)
}

func (v *Channels) Validate(_ context.Context, in Input) (bool, error) {
	if err := requireContent(NameChannels, in, FieldContent); err != nil {
		return false, err
	}
	if measure.MinDim(in.Content) >= v.minLength {
		return v.expected == 1, nil
	}
	return in.Content.Len() == v.expected, nil
}

// SampleRate passes audio decoded at exactly the target rate.
type SampleRate struct {
	target int
}

// NewSampleRate requires a positive target in Hz.
func NewSampleRate(target int) (*SampleRate, error) {
	if target < 1 {
		return nil, &RangeError{Validator: NameSampleRate, Field: "target", Min: 1, Max: maxInt, Value: float64(target)}
	}
	return &SampleRate{target: target}, nil
}

func (*SampleRate) Name() Name      { return NameSampleRate }
func (*SampleRate) Requires() Field { return FieldSampleRate }

func (v *SampleRate) String() string {
	return fmt.Sprintf("%s(target=%d)", NameSampleRate, v.target)
}

func (v *SampleRate) Validate(_ context.Context, in Input) (bool, error) {
	if err := requireContent(NameSampleRate, in, FieldSampleRate); err != nil {
		return false, err
	}
	return in.SampleRate == v.target, nil
}

// LengthSource selects what Length measures.
type LengthSource string

const (
	LengthOfAudio LengthSource = "audio"
	LengthOfText  LengthSource = "text"
)

// Length bounds the transcript character count or the audio's maximum
// nesting extent, inclusive on both ends.
type Length struct {
	source LengthSource
	min    int
	max    int
}

// NewLength measures source within [lo, hi].
func NewLength(source LengthSource, lo, hi int) (*Length, error) {
	switch source {
	case LengthOfAudio, LengthOfText:
	default:
		return nil, fmt.Errorf("%w: %s: unknown source %q", services.ErrConfiguration, NameLength, source)
	}
	if lo < 0 {
		return nil, &RangeError{Validator: NameLength, Field: "min", Min: 0, Max: float64(hi), Value: float64(lo)}
	}
	if hi < lo {
		return nil, &RangeError{Validator: NameLength, Field: "max", Min: float64(lo), Max: maxInt, Value: float64(hi)}
	}
	return &Length{source: source, min: lo, max: hi}, nil
}

func (*Length) Name() Name { return NameLength }

func (v *Length) Requires() Field {
	if v.source == LengthOfText {
		return FieldText
	}
	return FieldContent
}

func (v *Length) String() string {
	return fmt.Sprintf("%s(source=%s, min=%d, max=%d)", NameLength, v.source, v.min, v.max)
}

func (v *Length) Validate(_ context.Context, in Input) (bool, error) {
	var n int
	if v.source == LengthOfText {
		n = utf8.RuneCountInString(in.Text)
	} else {
		if err := requireContent(NameLength, in, FieldContent); err != nil {
			return false, err
		}
		n = measure.MaxDim(in.Content)
	}
	return n >= v.min && n <= v.max, nil
}

// TextToSpeech bounds characters per audio sample.
type TextToSpeech struct {
	minRatio float64
	maxRatio float64
}

// NewTextToSpeech accepts ratios within [0, 1] with minRatio <= maxRatio.
func NewTextToSpeech(minRatio, maxRatio float64) (*TextToSpeech, error) {
	if err := checkRange(NameTextToSpeech, "min_ratio", minRatio, 0, 1); err != nil {
		return nil, err
	}
	if err := checkRange(NameTextToSpeech, "max_ratio", maxRatio, minRatio, 1); err != nil {
		return nil, err
	}
	return &TextToSpeech{minRatio: minRatio, maxRatio: maxRatio}, nil
}

func (*TextToSpeech) Name() Name      { return NameTextToSpeech }
func (*TextToSpeech) Requires() Field { return FieldText | FieldContent }

func (v *TextToSpeech) String() string {
	return fmt.Sprintf("%s(min_ratio=%g, max_ratio=%g)", NameTextToSpeech, v.minRatio, v.maxRatio)
}

func (v *TextToSpeech) Validate(_ context.Context, in Input) (bool, error) {
	if err := requireContent(NameTextToSpeech, in, FieldContent); err != nil {
		return false, err
	}
	ratio := measure.TextToSpeechRatio(in.Text, in.Content, measure.DefaultEpsilon)
	return v.minRatio <= ratio && ratio <= v.maxRatio, nil
}

// DefaultThreshold is the largest characters-per-frame ratio a CTC target
// can have.
const DefaultThreshold = 1.0

// TextToFrame bounds characters per analysis frame. Records with no text or
// no frames fail.
type TextToFrame struct {
	hopLength int
	threshold float64
}

// NewTextToFrame frames audio every hopLength samples. A hop below one is
// treated as one.
func NewTextToFrame(hopLength int, threshold float64) *TextToFrame {
	return &TextToFrame{hopLength: hopLength, threshold: threshold}
}

func (*TextToFrame) Name() Name      { return NameTextToFrame }
func (*TextToFrame) Requires() Field { return FieldText | FieldContent }

func (v *TextToFrame) String() string {
	return fmt.Sprintf("%s(hop_length=%d, threshold=%g)", NameTextToFrame, v.hopLength, v.threshold)
}

func (v *TextToFrame) Validate(_ context.Context, in Input) (bool, error) {
	if err := requireContent(NameTextToFrame, in, FieldContent); err != nil {
		return false, err
	}
	ratio := measure.TextToFrameRatio(in.Text, in.Content, v.hopLength, measure.DefaultEpsilon)
	return ratio > 0 && ratio <= v.threshold, nil
}

const maxInt = float64(math.MaxInt)
