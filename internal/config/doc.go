// Package config loads, normalizes, and validates speteval configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AWS_ACCESS_KEY_ID for the S3 backend. The Config type centralizes every
// knob the CLI needs: dataset columns, worker counts, the audio storage
// backend, and the parameters of each quality validator.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors before any record is touched.
package config
