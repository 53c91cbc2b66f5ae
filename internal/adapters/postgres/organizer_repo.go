package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/confer/internal/ports/secondary"
)

// OrganizerRepository implements secondary.OrganizerChecker with PostgreSQL.
type OrganizerRepository struct {
	db *sql.DB
}

// NewOrganizerRepository creates a new PostgreSQL organizer repository.
func NewOrganizerRepository(db *sql.DB) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

// IsOrganizer reports whether the user organizes the track.
func (r *OrganizerRepository) IsOrganizer(ctx context.Context, userID, trackID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM organizers WHERE user_id = $1 AND track_id = $2)",
		userID, trackID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check organizer: %w", err)
	}
	return exists, nil
}

// Ensure OrganizerRepository implements the interface
var _ secondary.OrganizerChecker = (*OrganizerRepository)(nil)
