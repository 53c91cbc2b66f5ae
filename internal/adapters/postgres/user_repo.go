package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/confer/internal/ports/secondary"
)

// UserDirectory implements secondary.UserDirectory over the users and user_roles tables.
type UserDirectory struct {
	db *sql.DB
}

// NewUserDirectory creates a new PostgreSQL user directory.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

const userQuery = `SELECT u.id, u.username, u.name, u.email FROM users u WHERE %s`

// FindByID retrieves a user by numeric ID.
func (d *UserDirectory) FindByID(ctx context.Context, id int64) (*secondary.UserIdentity, error) {
	return d.findOne(ctx, "u.id = $1", id, fmt.Sprintf("user %d", id))
}

// FindByUsername retrieves a user by username.
func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*secondary.UserIdentity, error) {
	return d.findOne(ctx, "u.username = $1", username, fmt.Sprintf("user %s", username))
}

func (d *UserDirectory) findOne(ctx context.Context, where string, arg any, label string) (*secondary.UserIdentity, error) {
	var name, email sql.NullString

	user := &secondary.UserIdentity{}
	err := d.db.QueryRowContext(ctx, fmt.Sprintf(userQuery, where), arg).
		Scan(&user.ID, &user.Username, &name, &email)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", label, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Name = name.String
	user.Email = email.String
	return user, nil
}

// GrantRole adds a role to a user. Granting a held role is a no-op.
func (d *UserDirectory) GrantRole(ctx context.Context, userID int64, role string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to grant %s role to user %d: %w", role, userID, err)
	}
	return nil
}

// RevokeRole removes a role from a user. Revoking an absent role is a no-op.
func (d *UserDirectory) RevokeRole(ctx context.Context, userID int64, role string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = $1 AND role = $2", userID, role)
	if err != nil {
		return fmt.Errorf("failed to revoke %s role from user %d: %w", role, userID, err)
	}
	return nil
}

// HasRole reports whether a user holds a role.
func (d *UserDirectory) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)",
		userID, role,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// ListUsersWithRole returns the IDs of users holding a role.
func (d *UserDirectory) ListUsersWithRole(ctx context.Context, role string) ([]int64, error) {
	var ids []int64
	err := d.db.QueryRowContext(ctx,
		"SELECT COALESCE(array_agg(user_id ORDER BY user_id), '{}') FROM user_roles WHERE role = $1",
		role,
	).Scan(pq.Array(&ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list users with role: %w", err)
	}
	return ids, nil
}

// Ensure UserDirectory implements the interface
var _ secondary.UserDirectory = (*UserDirectory)(nil)
