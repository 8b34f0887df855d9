// Package filter applies a registry of validators to records.
//
// Registry holds at most one validator per name. Replacing a name logs a
// warning and keeps the original position; removing an absent name is an
// error. A loadability validator, when registered, always runs first.
//
// Pipeline evaluates one record at a time: it decodes the audio once through
// the loadability validator, threads the content to the remaining rules, and
// stops at the first rule that rejects. Evaluation holds no mutable state, so
// a Pipeline may be shared by concurrent workers as long as its registry is
// not modified meanwhile.
//
// FilterTable binds the pipeline to a dataset.Table, checks the configured
// columns up front, and applies the abort or skip policy to record errors.
package filter
