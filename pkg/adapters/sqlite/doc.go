// Package sqlite persists annotated documents in a SQLite database using the
// pure-Go modernc.org/sqlite driver.
package sqlite
