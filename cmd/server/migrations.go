package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"

	"github.com/jobforge/jobforge-api/internal/config"
)

// migrationTableName is the table goose uses to track applied migrations.
const migrationTableName = "schema_migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level without exiting; the error propagates back to
// main which owns process exit.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes a goose migration command against the configured
// database.
func runMigrations(cfg *config.Config, command, migrationName string) error {
	migrationsDir, err := findMigrationsDir()
	if err != nil {
		return err
	}

	slog.Info("running migrations",
		slog.String("command", command),
		slog.String("dir", migrationsDir),
		slog.String("database", maskDatabaseURL(cfg.Database.URL)))

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			slog.Error("failed to close migration database connection", "error", cerr)
		}
	}()

	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName(migrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	case "version":
		err = goose.Version(db, migrationsDir)
	case "create":
		if migrationName == "" {
			return fmt.Errorf("migration name is required for the create command")
		}
		err = goose.Create(db, migrationsDir, migrationName, "sql")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}

// findMigrationsDir locates the SQL migrations directory relative to the
// working directory.
func findMigrationsDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	path := filepath.Join(wd, "internal", "platform", "postgres", "migrations")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("migrations directory not found at %s", path)
	}
	return path, nil
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "****")
		return parsed.String()
	}
	return dbURL
}
