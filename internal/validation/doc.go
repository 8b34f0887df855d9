// Package validation implements the closed set of record quality rules.
//
// Every rule satisfies Validator: a fixed Name, the Input fields it
// Requires, and a Validate predicate. Rules hold only construction-time
// configuration, so a single instance is safe to share between goroutines.
//
// Loadability is special: besides answering yes/no it can hand back the
// decoded clip (see Load), which lets the filter pipeline decode each record
// once and feed the content to every other rule.
//
// Out-of-range configuration is rejected at construction with a *RangeError
// that matches both ErrRange and services.ErrConfiguration.
package validation
