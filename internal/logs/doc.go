// Package logs reads the speteval log file for the CLI.
//
// Tail returns the last lines matching an optional filter and the offset
// reached; Follow streams lines appended after that offset until the context
// ends. Filters let "speteval logs --run" narrow output to one filter run.
package logs
