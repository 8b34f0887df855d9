package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/cryptix/wav"

	"speteval/internal/services"
)

var (
	// ErrNotFound reports a reference with nothing behind it.
	ErrNotFound = fmt.Errorf("audio %w", services.ErrNotFound)
	// ErrCorrupt reports bytes that could not be decoded as audio.
	ErrCorrupt = errors.New("audio corrupt or unsupported")
	// ErrUnsupportedFormat reports a WAV whose fmt chunk is not plain PCM,
	// including WAVE_FORMAT_EXTENSIBLE. It matches ErrCorrupt.
	ErrUnsupportedFormat = fmt.Errorf("%w: wav format tag is not plain PCM (compressed or WAVE_FORMAT_EXTENSIBLE)", ErrCorrupt)
)

// Decode reads a PCM WAV stream of the given size.
func Decode(r io.ReadSeeker, size int64) (*Clip, error) {
	reader, err := wav.NewReader(r, size)
	if err != nil {
		if errors.Is(err, wav.ErrFormatNotSupported) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	file := reader.GetFile()
	channels := int(file.Channels)
	bits := int(file.SignificantBits)
	if channels <= 0 {
		return nil, fmt.Errorf("%w: header declares %d channels", ErrCorrupt, channels)
	}
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrCorrupt, bits)
	}
	if file.SampleRate == 0 {
		return nil, fmt.Errorf("%w: header declares zero sample rate", ErrCorrupt)
	}

	// The reader does not stop at the end of the data chunk on its own, so
	// bytes of a trailing chunk must never be read as samples.
	count := int(reader.GetSampleCount())
	scale := float64(int64(1) << (bits - 1))
	samples := make([][]float64, channels)
	for c := range samples {
		samples[c] = make([]float64, 0, count/channels)
	}

	for i := 0; i < count; i++ {
		sample, err := reader.ReadSample()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("%w: read sample %d: %w", ErrCorrupt, i, err)
		}
		c := i % channels
		samples[c] = append(samples[c], pcmValue(sample, bits)/scale)
	}

	// A truncated final frame leaves channels uneven; drop the partial frame.
	frames := len(samples[channels-1])
	for c := range samples {
		samples[c] = samples[c][:frames]
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(file.SampleRate),
		BitDepth:   bits,
	}, nil
}

// pcmValue converts a raw little-endian sample into a signed integer value.
// 8-bit PCM is unsigned; 16 and 24-bit samples arrive without sign extension.
func pcmValue(sample int32, bits int) float64 {
	v := int64(sample)
	switch bits {
	case 8:
		v -= 1 << 7
	case 16, 24:
		if v >= 1<<(bits-1) {
			v -= 1 << bits
		}
	}
	return float64(v)
}
