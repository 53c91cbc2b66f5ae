package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(tx *sql.Tx, d Driver) error
}

// migrations is the ordered list of schema changes after the base schema.
// Version 1 is the base reviewer schema and has no Up step.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "base_reviewer_schema",
	},
	{
		Version: 2,
		Name:    "add_invitation_tracking",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_audit_logs",
		Up:      migrationV3,
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(database *sql.DB, d Driver) error {
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if migration.Up != nil {
			if err := migration.Up(tx, d); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
			}
		}

		if _, err := tx.Exec(Rebind(d, "INSERT INTO schema_version (version) VALUES (?)"), migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV2 adds the invitation token and lifecycle timestamps to reviewers.
func migrationV2(tx *sql.Tx, d Driver) error {
	for _, column := range []string{"invitation_token", "invited_at", "accepted_at"} {
		stmt := fmt.Sprintf("ALTER TABLE reviewers ADD COLUMN %s TEXT", column)
		if d == DriverPostgres {
			stmt = fmt.Sprintf("ALTER TABLE reviewers ADD COLUMN IF NOT EXISTS %s TEXT", column)
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add reviewers.%s: %w", column, err)
		}
	}
	return nil
}

// migrationV3 creates the audit trail table.
func migrationV3(tx *sql.Tx, d Driver) error {
	createdAt := "created_at DATETIME DEFAULT CURRENT_TIMESTAMP"
	if d == DriverPostgres {
		createdAt = "created_at TIMESTAMPTZ NOT NULL DEFAULT now()"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			actor_id TEXT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT,
			` + createdAt + `
		)`,
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at)",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create audit_logs: %w", err)
		}
	}
	return nil
}
