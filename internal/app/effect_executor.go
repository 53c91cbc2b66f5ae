// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/confer/internal/core/effects"
	"github.com/example/confer/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the directory and notifier.
type DefaultEffectExecutor struct {
	directory secondary.UserDirectory
	notifier  secondary.NotificationPort
	logger    *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(directory secondary.UserDirectory, notifier secondary.NotificationPort, logger *slog.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEffectExecutor{
		directory: directory,
		notifier:  notifier,
		logger:    logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
// Role changes are fatal; notifications never fail from the caller's view.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.RoleEffect:
		return e.executeRole(ctx, typed)
	case effects.NotifyEffect:
		e.executeNotify(ctx, typed)
		return nil
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeRole(ctx context.Context, eff effects.RoleEffect) error {
	switch eff.Operation {
	case effects.RoleGrant:
		return e.directory.GrantRole(ctx, eff.UserID, eff.Role)
	case effects.RoleRevoke:
		return e.directory.RevokeRole(ctx, eff.UserID, eff.Role)
	default:
		return fmt.Errorf("unknown role operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) executeNotify(ctx context.Context, eff effects.NotifyEffect) {
	switch eff.Kind {
	case effects.NotifyReviewerInvitation:
		invitation := secondary.ReviewerInvitation{
			ReviewerID:      eff.ReviewerID,
			UserID:          eff.UserID,
			InvitationToken: eff.InvitationToken,
		}
		// Recipient details are optional.
		if user, err := e.directory.FindByID(ctx, eff.UserID); err == nil {
			invitation.Username = user.Username
			invitation.Name = user.Name
			invitation.Email = user.Email
		}
		e.notifier.SendReviewerInvitation(ctx, invitation)
	default:
		e.logger.WarnContext(ctx, "unknown notification kind", "kind", eff.Kind)
	}
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(eff.Level))

	args := make([]any, 0, len(eff.Fields)*2)
	for k, v := range eff.Fields {
		args = append(args, k, v)
	}
	e.logger.Log(ctx, level, eff.Message, args...)
}
