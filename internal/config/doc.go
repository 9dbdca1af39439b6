// Package config loads and validates application configuration from
// environment variables (JOBFORGE_ prefix) and an optional config.yaml file.
// Environment variables take precedence over file values. Defaults for the
// submission gateway and the poller live here so the core never relies on
// ambient, implicit settings.
package config
