// Package services defines shared utilities consumed by the filter pipeline,
// the storage backends, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, dataset rows, and validator names
//     for logging.
//   - Structured error markers plus the Wrap helper, and Classify, which lets
//     batch callers decide whether a failure stops the run or only the record.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform.
package services
