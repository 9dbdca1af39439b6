// Package task contains the asynchronous generation backend: a persistent
// queue-backed runner that executes generation tasks, a bounded-retry poller
// that observes task state until it turns terminal, and a canceller that
// terminates tasks without racing a finishing worker. Task rows in the store
// are the single source of truth; the queue and pollers only carry or read
// task IDs.
package task
