// Package history records processed runs and their published outputs in a
// SQLite database under the log directory.
//
// The schema is versioned: a database written by a different build is
// rejected with ErrSchemaMismatch rather than migrated. Delete history.db to
// start over.
package history
