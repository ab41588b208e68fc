package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

// Notifier is the fan-out used by services that report events to users.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, in models.NotificationInput) (models.PopulatedNotification, error)
	NotifyAdmins(ctx context.Context, in models.NotificationInput) (int, error)
}

// Submitter runs work off the request goroutine. *worker.Pool implements it.
type Submitter interface {
	Submit(f func()) bool
}

// repoErr classifies a repository error for the API.
func repoErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repo.ErrDuplicate):
		return apperr.Conflict("already exists")
	default:
		return apperr.Internal("storage error", err)
	}
}

type auditor struct {
	logs repo.AuditLogs
	log  *slog.Logger
}

// record writes an audit row. Failures are logged only.
func (a auditor) record(ctx context.Context, entityType, entityID, actorID, action string, details map[string]any) {
	if a.logs == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if err := a.logs.Create(ctx, entry); err != nil {
		a.log.Warn("audit log write failed", "entity_type", entityType, "entity_id", entityID, "action", action, "err", err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func offset(page, limit int) int { return (page - 1) * limit }
