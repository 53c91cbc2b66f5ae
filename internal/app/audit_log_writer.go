package app

import (
	"context"

	"github.com/example/confer/internal/ctxutil"
	"github.com/example/confer/internal/ports/secondary"
)

// AuditLogWriter implements secondary.LogWriter on top of any AuditLogRepository.
// The actor comes from the context.
type AuditLogWriter struct {
	logRepo secondary.AuditLogRepository
}

// NewAuditLogWriter creates a new AuditLogWriter.
func NewAuditLogWriter(logRepo secondary.AuditLogRepository) *AuditLogWriter {
	return &AuditLogWriter{logRepo: logRepo}
}

// LogCreate logs a create operation for an entity.
func (w *AuditLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *AuditLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs a delete operation for an entity.
func (w *AuditLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "delete", "", "", "")
}

func (w *AuditLogWriter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	id, err := w.logRepo.GetNextID(ctx)
	if err != nil {
		return err
	}

	return w.logRepo.Create(ctx, &secondary.AuditLogRecord{
		ID:         id,
		ActorID:    ctxutil.ActorFromContext(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

var _ secondary.LogWriter = (*AuditLogWriter)(nil)
