// Package domain defines the core business entities of the JobForge API:
// generation tasks, history items, and the errors shared across the
// application layers. Entities are plain structs with constructor functions
// that validate invariants; state transitions go through methods so that
// terminal states stay terminal.
package domain
