package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/confer/internal/ports/secondary"
)

// UserDirectory implements secondary.UserDirectory over the users and user_roles tables.
type UserDirectory struct {
	db *sql.DB
}

// NewUserDirectory creates a new SQLite user directory.
func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// FindByID retrieves a user by numeric ID.
func (d *UserDirectory) FindByID(ctx context.Context, id int64) (*secondary.UserIdentity, error) {
	return d.findOne(ctx, "id = ?", id, fmt.Sprintf("user %d", id))
}

// FindByUsername retrieves a user by username.
func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*secondary.UserIdentity, error) {
	return d.findOne(ctx, "username = ?", username, fmt.Sprintf("user %s", username))
}

func (d *UserDirectory) findOne(ctx context.Context, where string, arg any, label string) (*secondary.UserIdentity, error) {
	var name, email sql.NullString

	user := &secondary.UserIdentity{}
	err := d.db.QueryRowContext(ctx,
		"SELECT id, username, name, email FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Username, &name, &email)

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
		"INSERT INTO user_roles (user_id, role) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to grant %s role to user %d: %w", role, userID, err)
	}
	return nil
}

// RevokeRole removes a role from a user. Revoking an absent role is a no-op.
func (d *UserDirectory) RevokeRole(ctx context.Context, userID int64, role string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ? AND role = ?", userID, role)
	if err != nil {
		return fmt.Errorf("failed to revoke %s role from user %d: %w", role, userID, err)
	}
	return nil
}

// HasRole reports whether a user holds a role.
func (d *UserDirectory) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?",
		userID, role,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return count > 0, nil
}

// ListUsersWithRole returns the IDs of users holding a role.
func (d *UserDirectory) ListUsersWithRole(ctx context.Context, role string) ([]int64, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT user_id FROM user_roles WHERE role = ? ORDER BY user_id", role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with role: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ensure UserDirectory implements the interface
var _ secondary.UserDirectory = (*UserDirectory)(nil)
