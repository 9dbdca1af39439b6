// Package store defines the persistence interfaces for tasks and history
// items, the sentinel errors store implementations return, and the opaque
// pagination cursor codec shared with the Postgres-backed implementations
// in internal/platform/postgres.
package store
