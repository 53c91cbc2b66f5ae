// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files;
// use setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/confer/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, db *sql.DB, id int64, username, email string) int64 {
	t.Helper()
	var emailArg any
	if email != "" {
		emailArg = email
	}
	_, err := db.Exec("INSERT INTO users (id, username, name, email) VALUES (?, ?, ?, ?)", id, username, username, emailArg)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// seedRole grants a role to a test user.
func seedRole(t *testing.T, db *sql.DB, userID int64, role string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO user_roles (user_id, role) VALUES (?, ?)", userID, role); err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
}

// seedTrack inserts a test track and returns its ID.
func seedTrack(t *testing.T, db *sql.DB, id int64, title string) int64 {
	t.Helper()
	if _, err := db.Exec("INSERT INTO tracks (id, title) VALUES (?, ?)", id, title); err != nil {
		t.Fatalf("failed to seed track: %v", err)
	}
	return id
}

// seedAudienceLevel inserts a test audience level and returns its ID.
func seedAudienceLevel(t *testing.T, db *sql.DB, id int64, title string) int64 {
	t.Helper()
	if _, err := db.Exec("INSERT INTO audience_levels (id, title) VALUES (?, ?)", id, title); err != nil {
		t.Fatalf("failed to seed audience level: %v", err)
	}
	return id
}

// seedOrganizer makes a user organizer of a track.
func seedOrganizer(t *testing.T, db *sql.DB, userID, trackID int64) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO organizers (user_id, track_id) VALUES (?, ?)", userID, trackID); err != nil {
		t.Fatalf("failed to seed organizer: %v", err)
	}
}

// seedReviewer inserts a reviewer row directly and returns its ID.
func seedReviewer(t *testing.T, db *sql.DB, id string, userID int64, state string) string {
	t.Helper()
	if state == "" {
		state = "created"
	}
	_, err := db.Exec("INSERT INTO reviewers (id, user_id, state) VALUES (?, ?, ?)", id, userID, state)
	if err != nil {
		t.Fatalf("failed to seed reviewer: %v", err)
	}
	return id
}

// seedCatalog inserts two users, two tracks and two audience levels.
func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	seedUser(t, db, 1, "alice", "alice@example.com")
	seedUser(t, db, 2, "bob", "")
	seedTrack(t, db, 1, "Backend")
	seedTrack(t, db, 2, "Frontend")
	seedAudienceLevel(t, db, 1, "Beginner")
	seedAudienceLevel(t, db, 2, "Advanced")
}
