// Package main hosts the speteval CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the validator
// registry it describes, and drives the filter pipeline over CSV datasets
// (filter), single clips (check), and the run history (runs). Logs go to
// stderr and the configured log file; stdout carries only command output so
// results can be piped or parsed with --json.
package main
