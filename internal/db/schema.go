package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete sqlite schema for fresh installs.
// It reflects the state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the sqlite schema. Repository tests load
// it through GetSchemaSQL() so a column referenced by a repository but missing
// here fails with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL and PostgresSchemaSQL here
//  3. Bump the version recorded for fresh installs (latestVersion)
const SchemaSQL = `
-- Users (owned by the conference application, read through the directory)
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	name TEXT,
	email TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id INTEGER NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('author', 'reviewer', 'organizer', 'admin')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, role),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_user_roles_role ON user_roles(role);

-- Catalogue
CREATE TABLE IF NOT EXISTS tracks (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS audience_levels (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS organizers (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	UNIQUE (user_id, track_id),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (track_id) REFERENCES tracks(id) ON DELETE CASCADE
);

-- Reviewers
CREATE TABLE IF NOT EXISTS reviewers (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE,
	reviewer_agreement INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL CHECK(state IN ('created', 'invited', 'accepted', 'rejected')) DEFAULT 'created',
	invitation_token TEXT,
	invited_at TEXT,
	accepted_at TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_reviewers_state ON reviewers(state);

CREATE TABLE IF NOT EXISTS preferences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reviewer_id TEXT NOT NULL,
	track_id INTEGER,
	audience_level_id INTEGER,
	accepted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (reviewer_id) REFERENCES reviewers(id) ON DELETE CASCADE,
	FOREIGN KEY (track_id) REFERENCES tracks(id),
	FOREIGN KEY (audience_level_id) REFERENCES audience_levels(id)
);

CREATE INDEX IF NOT EXISTS idx_preferences_reviewer ON preferences(reviewer_id);

-- Audit trail
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at);
`

// PostgresSchemaSQL is the postgres rendition of SchemaSQL.
const PostgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	name TEXT,
	email TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role TEXT NOT NULL CHECK(role IN ('author', 'reviewer', 'organizer', 'admin')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, role)
);

CREATE INDEX IF NOT EXISTS idx_user_roles_role ON user_roles(role);

CREATE TABLE IF NOT EXISTS tracks (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS audience_levels (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS organizers (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	track_id BIGINT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	UNIQUE (user_id, track_id)
);

CREATE TABLE IF NOT EXISTS reviewers (
	id TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
	reviewer_agreement BOOLEAN NOT NULL DEFAULT false,
	state TEXT NOT NULL CHECK(state IN ('created', 'invited', 'accepted', 'rejected')) DEFAULT 'created',
	invitation_token TEXT,
	invited_at TEXT,
	accepted_at TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reviewers_state ON reviewers(state);

CREATE TABLE IF NOT EXISTS preferences (
	id BIGSERIAL PRIMARY KEY,
	reviewer_id TEXT NOT NULL REFERENCES reviewers(id) ON DELETE CASCADE,
	track_id BIGINT REFERENCES tracks(id),
	audience_level_id BIGINT REFERENCES audience_levels(id),
	accepted BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_preferences_reviewer ON preferences(reviewer_id);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at);
`

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema brings the database up to the current schema.
// Fresh databases get the full schema directly and every migration marked applied;
// databases created before schema versioning run the pending migrations.
func InitSchema(database *sql.DB, d Driver) error {
	hasVersion, err := tableExists(database, d, "schema_version")
	if err != nil {
		return err
	}

	if !hasVersion {
		hasReviewers, err := tableExists(database, d, "reviewers")
		if err != nil {
			return err
		}
		if hasReviewers {
			// Pre-versioning install: the base tables match migration 1
			if _, err := database.Exec(schemaVersionSQL); err != nil {
				return fmt.Errorf("failed to create schema_version table: %w", err)
			}
			if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
				return fmt.Errorf("failed to record base schema: %w", err)
			}
			return RunMigrations(database, d)
		}

		if _, err := database.Exec(GetSchemaSQLFor(d)); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if _, err := database.Exec(schemaVersionSQL); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}
		for v := 1; v <= latestVersion(); v++ {
			if _, err := database.Exec(Rebind(d, "INSERT INTO schema_version (version) VALUES (?)"), v); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", v, err)
			}
		}
		return nil
	}

	return RunMigrations(database, d)
}

func tableExists(database *sql.DB, d Driver, name string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?"
	if d == DriverPostgres {
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
	}
	var count int
	if err := database.QueryRow(query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check for table %s: %w", name, err)
	}
	return count > 0, nil
}

// GetSchemaSQL returns the authoritative sqlite schema for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

// GetSchemaSQLFor returns the schema for a driver.
func GetSchemaSQLFor(d Driver) string {
	if d == DriverPostgres {
		return PostgresSchemaSQL
	}
	return SchemaSQL
}
