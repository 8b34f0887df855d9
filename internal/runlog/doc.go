// Package runlog persists the history of table filter runs in SQLite.
//
// Each run is recorded when it starts and updated when it completes or
// fails, together with a per-validator tally of rejected rows. The database
// lives at paths.state_dir/runs.db and carries a schema version; a mismatch
// is reported as ErrSchemaMismatch rather than migrated.
package runlog
