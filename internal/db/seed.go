package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/dev.yaml
var devFixtures []byte

// Fixtures is the YAML layout accepted by SeedFromYAML.
type Fixtures struct {
	Users          []UserFixture      `yaml:"users"`
	Tracks         []CatalogFixture   `yaml:"tracks"`
	AudienceLevels []CatalogFixture   `yaml:"audience_levels"`
	Organizers     []OrganizerFixture `yaml:"organizers"`
}

// UserFixture describes a user and the roles it holds.
type UserFixture struct {
	ID       int64    `yaml:"id"`
	Username string   `yaml:"username"`
	Name     string   `yaml:"name"`
	Email    string   `yaml:"email"`
	Roles    []string `yaml:"roles"`
}

// CatalogFixture describes a track or an audience level.
type CatalogFixture struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title"`
}

// OrganizerFixture links a user to a track by name.
type OrganizerFixture struct {
	Username string `yaml:"username"`
	Track    string `yaml:"track"`
}

// SeedStats counts the rows a seed run touched.
type SeedStats struct {
	Users          int
	Roles          int
	Tracks         int
	AudienceLevels int
	Organizers     int
}

// SeedFixtures populates the database with the bundled development fixtures.
func SeedFixtures(database *sql.DB, d Driver) (*SeedStats, error) {
	return SeedFromYAML(database, d, devFixtures)
}

// SeedFromYAML parses fixture YAML and inserts it in one transaction.
// Rows that already exist are left untouched, so seeding is repeatable.
func SeedFromYAML(database *sql.DB, d Driver, data []byte) (*SeedStats, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return Seed(database, d, &fixtures)
}

// Seed inserts fixtures in one transaction.
func Seed(database *sql.DB, d Driver, fixtures *Fixtures) (*SeedStats, error) {
	tx, err := database.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &SeedStats{}
	exec := func(query string, args ...any) (int, error) {
		result, err := tx.Exec(Rebind(d, query), args...)
		if err != nil {
			return 0, err
		}
		n, _ := result.RowsAffected()
		return int(n), nil
	}

	for _, u := range fixtures.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("seed users: user %d has no username", u.ID)
		}
		n, err := exec(
			"INSERT INTO users (id, username, name, email) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING",
			u.ID, u.Username, nullString(u.Name), nullString(u.Email),
		)
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		stats.Users += n

		for _, role := range u.Roles {
			n, err := exec("INSERT INTO user_roles (user_id, role) VALUES (?, ?) ON CONFLICT DO NOTHING", u.ID, role)
			if err != nil {
				return nil, fmt.Errorf("seed roles for %s: %w", u.Username, err)
			}
			stats.Roles += n
		}
	}

	for _, t := range fixtures.Tracks {
		n, err := exec("INSERT INTO tracks (id, title) VALUES (?, ?) ON CONFLICT DO NOTHING", t.ID, t.Title)
		if err != nil {
			return nil, fmt.Errorf("seed tracks: %w", err)
		}
		stats.Tracks += n
	}

	for _, l := range fixtures.AudienceLevels {
		n, err := exec("INSERT INTO audience_levels (id, title) VALUES (?, ?) ON CONFLICT DO NOTHING", l.ID, l.Title)
		if err != nil {
			return nil, fmt.Errorf("seed audience levels: %w", err)
		}
		stats.AudienceLevels += n
	}

	for _, o := range fixtures.Organizers {
		n, err := exec(
			`INSERT INTO organizers (user_id, track_id)
			SELECT u.id, t.id FROM users u, tracks t WHERE u.username = ? AND t.title = ?
			ON CONFLICT DO NOTHING`,
			o.Username, o.Track,
		)
		if err != nil {
			return nil, fmt.Errorf("seed organizers: %w", err)
		}
		if n == 0 {
			var exists int
			err := tx.QueryRow(Rebind(d,
				`SELECT COUNT(*) FROM organizers o JOIN users u ON u.id = o.user_id JOIN tracks t ON t.id = o.track_id
				WHERE u.username = ? AND t.title = ?`), o.Username, o.Track).Scan(&exists)
			if err != nil {
				return nil, fmt.Errorf("seed organizers: %w", err)
			}
			if exists == 0 {
				return nil, fmt.Errorf("seed organizers: unknown user %q or track %q", o.Username, o.Track)
			}
		}
		stats.Organizers += n
	}

	// Explicit IDs bypass postgres sequences; move them past the seeded rows.
	if d == DriverPostgres {
		for _, table := range []string{"users", "tracks", "audience_levels"} {
			stmt := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
			if _, err := tx.Exec(stmt); err != nil {
				return nil, fmt.Errorf("failed to reset %s sequence: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}
	return stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
