// Package runstore persists evaluation runs in SQLite so results from
// different filter settings and datasets can be listed and compared later.
//
// Writers hold an advisory file lock next to the database for the duration of
// a save; readers rely on SQLite's WAL mode and busy timeout.
package runstore
