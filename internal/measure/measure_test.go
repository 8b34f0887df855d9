package measure_test

import (
	"errors"
	"strings"
	"testing"

	"speteval/internal/measure"
)

func samples(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i%7) / 7
	}
	return out
}

func text(n int) string {
	return strings.Repeat("a", n)
}

func TestNestingExtent(t *testing.T) {
	tests := []struct {
		name    string
		content measure.Sequence
		wantMin int
		wantMax int
	}{
		{"empty", measure.Nested([]any{}), 0, 0},
		{"single channel", measure.Nested([][]int{{1, 2, 3}}), 1, 3},
		{"deep", measure.Nested([][][][]int{{{{1}, {2}, {3}}}}), 1, 3},
		{"column", measure.Nested([][]int{{1}, {2}, {3}}), 1, 3},
		{"flat", measure.Flat([]float32{1, 2, 3, 4}), 4, 4},
		{"matrix", measure.Matrix([][]int16{{1, 2}, {3, 4}}), 2, 2},
		{"ragged follows first", measure.Nested([]any{[]int{1}, []int{1, 2, 3, 4, 5}}), 1, 2},
		{"nil", nil, 0, 0},
		{"scalar", measure.Nested(3.5), 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := measure.MinDim(tc.content); got != tc.wantMin {
				t.Fatalf("MinDim = %d, want %d", got, tc.wantMin)
			}
			if got := measure.MaxDim(tc.content); got != tc.wantMax {
				t.Fatalf("MaxDim = %d, want %d", got, tc.wantMax)
			}
		})
	}
}

func TestMinDimNeverExceedsMaxDim(t *testing.T) {
	shapes := []any{
		[]any{},
		samples(9),
		[][]float64{samples(4), samples(2)},
		[][][]float64{{samples(3)}, {samples(5), samples(1)}},
		[]any{[]any{[]float64{}}},
	}
	for i, shape := range shapes {
		seq := measure.Nested(shape)
		if measure.MinDim(seq) > measure.MaxDim(seq) {
			t.Fatalf("shape %d: min %d > max %d", i, measure.MinDim(seq), measure.MaxDim(seq))
		}
	}
}

func TestNestedMixesSequences(t *testing.T) {
	inner := measure.Flat(samples(12))
	seq := measure.Nested([]any{inner, inner})
	if got := measure.MaxDim(seq); got != 12 {
		t.Fatalf("MaxDim = %d, want 12", got)
	}
	if got := measure.MinDim(seq); got != 2 {
		t.Fatalf("MinDim = %d, want 2", got)
	}
}

func TestTensor(t *testing.T) {
	tensor, err := measure.NewTensor(samples(24), 1, 2, 12)
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	if got := measure.MinDim(tensor); got != 1 {
		t.Fatalf("MinDim = %d, want 1", got)
	}
	if got := measure.MaxDim(tensor); got != 12 {
		t.Fatalf("MaxDim = %d, want 12", got)
	}
	if _, err := measure.NewTensor(samples(5), 2, 3); !errors.Is(err, measure.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"path_to/file.wav":         "wav",
		"/path_to/file.mp3":        "mp3",
		"custome/path_to/file.wav": "wav",
		"a/b/file.wav":             "wav",
		"file.ext":                 "ext",
		"clip.WAV":                 "WAV",
		"archive.tar.gz":           "gz",
		"noext":                    "",
		"invalid path":             "",
		"/invalidpath":             "",
		"/invalid/path":            "",
		"dir.d/file":               "",
		"/home/.profile":           "",
	}
	for input, want := range tests {
		if got := measure.FileExtension(input); got != want {
			t.Errorf("FileExtension(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTextToSpeechRatio(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		content measure.Sequence
		want    float64
	}{
		{"equal", text(10), measure.Flat(samples(10)), 1.0},
		{"nested", text(10), measure.Nested([][][]float64{{samples(5)}}), 2.0},
		{"half", text(5), measure.Matrix([][]float64{samples(10)}), 0.5},
		{"no text", "", measure.Flat(samples(10)), 0.0},
		{"nothing", "", measure.Flat(samples(0)), 0.0},
		{"runes", "ééééé", measure.Flat(samples(10)), 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := measure.TextToSpeechRatio(tc.text, tc.content, measure.DefaultEpsilon)
			if got != tc.want {
				t.Fatalf("ratio = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTextToSpeechRatioEmptyContent(t *testing.T) {
	got := measure.TextToSpeechRatio(text(5), measure.Nested([]any{}), 1e-9)
	if got <= 1e3 {
		t.Fatalf("expected eps-dominated ratio, got %v", got)
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		name    string
		content measure.Sequence
		hop     int
		want    int
	}{
		{"short", measure.Flat(samples(10)), 200, 0},
		{"deep", measure.Nested([][][]float64{{samples(400)}}), 200, 2},
		{"channel", measure.Matrix([][]float64{samples(400)}), 200, 2},
		{"flat", measure.Flat(samples(400)), 200, 2},
		{"empty", measure.Flat(samples(0)), 350, 0},
		{"zero hop", measure.Flat(samples(7)), 0, 7},
		{"negative hop", measure.Flat(samples(7)), -3, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := measure.FrameCount(tc.content, tc.hop); got != tc.want {
				t.Fatalf("FrameCount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTextToFrameRatio(t *testing.T) {
	tests := []struct {
		text    string
		content measure.Sequence
		hop     int
		want    float64
	}{
		{text(100), measure.Flat(samples(100)), 1, 1.0},
		{text(5), measure.Flat(samples(100)), 2, 0.1},
		{text(20), measure.Matrix([][]float64{samples(10)}), 5, 10.0},
		{text(10), measure.Flat(samples(10)), 5, 5.0},
		{"", measure.Flat(samples(10)), 20, 0.0},
		{"", measure.Flat(samples(0)), 20, 0.0},
	}
	for i, tc := range tests {
		got := measure.TextToFrameRatio(tc.text, tc.content, tc.hop, measure.DefaultEpsilon)
		if got != tc.want {
			t.Fatalf("case %d: ratio = %v, want %v", i, got, tc.want)
		}
	}
}
