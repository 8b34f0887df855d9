package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cryptix/wav"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SawtoothSample is the value WriteWAV stores for frame i of channel c.
func SawtoothSample(i, c int) int16 {
	return int16((i*37+c*11)%2000 - 1000)
}

// WriteWAV writes a 16-bit PCM WAV with the given layout. Sample values
// follow SawtoothSample so decoded content is non-trivial.
func WriteWAV(t testing.TB, path string, channels, sampleRate, frames int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if channels != 1 {
		// The cryptix writer only produces mono files.
		samples := make([]int32, 0, channels*frames)
		for i := 0; i < frames; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, int32(SawtoothSample(i, c)))
			}
		}
		data := EncodeWAV(t, WAVSpec{Channels: channels, SampleRate: sampleRate, BitDepth: 16, Samples: samples})
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		return
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	meta := wav.File{
		Channels:        1,
		SampleRate:      uint32(sampleRate),
		SignificantBits: 16,
	}
	w, err := meta.NewWriter(f)
	if err != nil {
		t.Fatalf("wav writer for %s: %v", path, err)
	}
	for i := 0; i < frames; i++ {
		v := SawtoothSample(i, 0)
		if err := w.WriteSample([]byte{byte(v), byte(v >> 8)}); err != nil {
			t.Fatalf("write sample to %s: %v", path, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close wav %s: %v", path, err)
	}
}

// WAVSpec describes a PCM WAV fixture built in memory.
type WAVSpec struct {
	Channels   int
	SampleRate int
	// BitDepth is 8, 16, 24 or 32. 8-bit samples are given signed and
	// stored offset by 128.
	BitDepth int
	// Samples are interleaved signed values.
	Samples []int32
	// Trailer is appended after the data chunk, e.g. a LIST chunk.
	Trailer []byte
}

// EncodeWAV renders spec as a canonical RIFF/WAVE file.
func EncodeWAV(t testing.TB, spec WAVSpec) []byte {
	t.Helper()

	width := spec.BitDepth / 8
	var data bytes.Buffer
	for _, v := range spec.Samples {
		switch spec.BitDepth {
		case 8:
			data.WriteByte(byte(v + 128))
		case 16, 24, 32:
			for b := 0; b < width; b++ {
				data.WriteByte(byte(v >> (8 * b)))
			}
		default:
			t.Fatalf("unsupported fixture bit depth %d", spec.BitDepth)
		}
	}

	var out bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&out, binary.LittleEndian, v); err != nil {
			t.Fatalf("encode wav: %v", err)
		}
	}
	out.WriteString("RIFF")
	write(uint32(36 + data.Len() + len(spec.Trailer)))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1))
	write(uint16(spec.Channels))
	write(uint32(spec.SampleRate))
	write(uint32(spec.SampleRate * spec.Channels * width))
	write(uint16(spec.Channels * width))
	write(uint16(spec.BitDepth))
	out.WriteString("data")
	write(uint32(data.Len()))
	out.Write(data.Bytes())
	out.Write(spec.Trailer)
	return out.Bytes()
}

// ListChunk returns a small LIST/INFO chunk of the kind editors append after
// the audio data.
func ListChunk() []byte {
	var buf bytes.Buffer
	buf.WriteString("LIST")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(12))
	buf.WriteString("INFOISFT")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	return buf.Bytes()
}
