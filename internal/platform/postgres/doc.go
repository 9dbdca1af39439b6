// Package postgres provides the PostgreSQL-backed implementations of the
// store interfaces. Status transitions and curation mutations are expressed
// as conditional single-statement updates so that terminal tasks stay
// terminal and per-item history mutations are atomic without explicit
// locking.
package postgres
