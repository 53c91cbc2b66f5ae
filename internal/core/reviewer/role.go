package reviewer

import "github.com/example/confer/internal/core/effects"

// RoleSyncContext provides what the role recomputation needs.
// AcceptedCount must already reflect the mutation being made (e.g. exclude a
// record that is about to be destroyed).
type RoleSyncContext struct {
	UserID        int64
	AcceptedCount int
	HasRole       bool
}

// PlanRoleSync decides how the reviewer role of a user must change so that it
// holds exactly when the user has at least one accepted reviewer record.
// Returns NoEffect when the directory is already consistent.
func PlanRoleSync(ctx RoleSyncContext) effects.Effect {
	want := ctx.AcceptedCount > 0
	switch {
	case want && !ctx.HasRole:
		return effects.RoleEffect{Operation: effects.RoleGrant, UserID: ctx.UserID, Role: ReviewerRole}
	case !want && ctx.HasRole:
		return effects.RoleEffect{Operation: effects.RoleRevoke, UserID: ctx.UserID, Role: ReviewerRole}
	default:
		return effects.NoEffect{}
	}
}
