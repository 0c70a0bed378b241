// Package migrate applies the embedded SQL migrations in filename order,
// recording each one in schema_migrations so reruns are no-ops.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Arbitrary but fixed: serializes concurrent migrators (several API
// instances starting against the same database).
const migrationLockID = 8572301

// Run applies every migration that has not been recorded yet. Safe to call
// on every startup and from multiple instances at once.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, version := range sortedVersions() {
		if err := applyOnce(ctx, db, version); err != nil {
			return err
		}
	}
	return nil
}

// sortedVersions lists the embedded migration versions (filenames without
// the .sql suffix) in lexical order.
func sortedVersions() []string {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		// The FS is embedded at build time; a read failure here is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("migrate: read embedded migrations: %v", err))
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(e.Name(), ".sql"))
	}
	sort.Strings(versions)
	return versions
}

func applyOnce(ctx context.Context, db *sql.DB, version string) error {
	logger := slog.Default().With("component", "migrations")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", version, err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "migration rollback failed",
				"version", version, "error", rbErr)
		}
	}()

	// Held for the transaction; a second instance blocks here until the
	// first one commits, then sees the version recorded and skips.
	if _, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}

	var applied bool
	if err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
		version).Scan(&applied); err != nil {
		return fmt.Errorf("check migration %s: %w", version, err)
	}
	if applied {
		return nil
	}

	stmts, err := migrationsFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	logger.InfoContext(ctx, "applying migration", "version", version)

	if _, err = tx.ExecContext(ctx, string(stmts)); err != nil {
		return fmt.Errorf("exec migration %s: %w", version, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}
