// Package audio decodes dataset clips into channel-first sample matrices.
//
// Decoding is limited to PCM WAV (format tag 1) at 8, 16, 24 or 32 bits,
// which is what speech corpora ship. WAVE_FORMAT_EXTENSIBLE files are valid
// WAV but the decoder does not read them; they fail with ErrUnsupportedFormat,
// which the loadability check reports as a rejection with that reason.
// Samples are normalized to [-1, 1) so every bit depth yields comparable
// content.
//
// Key types:
//   - Clip: decoded samples plus sample rate
//   - Loader: resolves a reference through a storage.Source and decodes it
//
// Errors:
//   - ErrNotFound: the reference does not exist (also matches services.ErrNotFound)
//   - ErrCorrupt: the bytes exist but are not decodable audio
//   - ErrUnsupportedFormat: non-PCM or extensible WAV (matches ErrCorrupt)
package audio
