package measure

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultEpsilon guards the ratio denominators.
const DefaultEpsilon = 1e-9

// MinDim returns the smallest extent met while descending through first
// elements. An empty sequence yields 0.
func MinDim(content Sequence) int {
	return nestingExtent(content, func(a, b int) int { return min(a, b) })
}

// MaxDim returns the largest extent met while descending through first
// elements. An empty sequence yields 0.
func MaxDim(content Sequence) int {
	return nestingExtent(content, func(a, b int) int { return max(a, b) })
}

func nestingExtent(content Sequence, combine func(a, b int) int) int {
	if content == nil {
		return 0
	}
	extent := content.Len()
	for {
		next, ok := content.First()
		if !ok || next == nil {
			return extent
		}
		extent = combine(extent, next.Len())
		content = next
	}
}

// FileExtension returns the text after the final dot of the last path
// segment without the dot, preserving case. Leading dots of the segment do
// not start an extension, so ".env" has none.
func FileExtension(path string) string {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	base = strings.TrimLeft(base, ".")
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// TextToSpeechRatio divides the character count of text by the maximum
// nesting extent of content, clamping the denominator to eps.
func TextToSpeechRatio(text string, content Sequence, eps float64) float64 {
	denom := math.Max(float64(MaxDim(content)), eps)
	return float64(utf8.RuneCountInString(text)) / denom
}

// FrameCount returns floor(MaxDim(content) / hopLength) with hopLength
// clamped to at least 1.
func FrameCount(content Sequence, hopLength int) int {
	return MaxDim(content) / max(1, hopLength)
}

// TextToFrameRatio divides the character count of text by the frame count,
// clamping the denominator to eps.
func TextToFrameRatio(text string, content Sequence, hopLength int, eps float64) float64 {
	frames := float64(FrameCount(content, hopLength))
	return float64(utf8.RuneCountInString(text)) / math.Max(eps, frames)
}
