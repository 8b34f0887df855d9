// Package storage resolves the audio references found in dataset rows.
//
// A Source answers two questions about a reference: does it exist, and what
// are its bytes. The local backend maps references onto the filesystem
// (relative references are joined to an optional root). The S3 backend maps
// them onto object keys under a bucket prefix and retries transient failures
// with Fibonacci backoff. Both report a missing reference as fs.ErrNotExist
// so callers can treat the backends interchangeably.
package storage
