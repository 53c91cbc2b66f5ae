// Package postgres contains PostgreSQL implementations of repository interfaces.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/confer/internal/ports/secondary"
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")

	// Default names postgres gives the constraints created by the schema.
	reviewerUserConstraint    = "reviewers_user_id_key"
	preferenceTrackConstraint = "preferences_track_id_fkey"
	preferenceLevelConstraint = "preferences_audience_level_id_fkey"
)

// mapReviewerWriteError turns a unique violation on reviewers.user_id into ErrDuplicateUser.
func mapReviewerWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == reviewerUserConstraint {
		return fmt.Errorf("failed to %s reviewer: %w", op, secondary.ErrDuplicateUser)
	}
	return fmt.Errorf("failed to %s reviewer: %w", op, err)
}

// mapPreferenceWriteError turns a missing track or audience level into ErrUnknownPreferenceTarget.
func mapPreferenceWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation &&
		(pqErr.Constraint == preferenceTrackConstraint || pqErr.Constraint == preferenceLevelConstraint) {
		return fmt.Errorf("failed to add preference: %w", secondary.ErrUnknownPreferenceTarget)
	}
	return fmt.Errorf("failed to add preference: %w", err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
