package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/metrics"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/realtime"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

// ErrNotStored marks a Notify failure that left no row behind.
var ErrNotStored = errors.New("notification not stored")

// NotificationService stores per-recipient notifications and pushes them live.
// Callers enumerate recipients; each Notify call writes exactly one row.
type NotificationService struct {
	notes repo.Notifications
	users repo.Users
	pub   realtime.Publisher
	log   *slog.Logger
}

func NewNotificationService(n repo.Notifications, u repo.Users, pub realtime.Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{notes: n, users: u, pub: pub, log: log}
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    models.Pagination     `json:"pagination"`
	UnreadCount   int64                 `json:"unreadCount"`
}

func (s *NotificationService) Notify(ctx context.Context, recipientID string, in models.NotificationInput) (models.PopulatedNotification, error) {
	n := models.Notification{
		RecipientID:  recipientID,
		Title:        in.Title,
		Message:      in.Message,
		Type:         in.Type,
		Category:     in.Category,
		Priority:     in.Priority,
		RelatedID:    strPtr(in.RelatedID),
		RelatedModel: strPtr(in.RelatedModel),
	}
	if n.Type == "" {
		n.Type = models.NotifySystem
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}

	created, err := s.notes.Create(ctx, n)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues("persist").Inc()
		s.log.Warn("notification not stored", "recipient_id", recipientID, "title", in.Title, "err", err)
		return models.PopulatedNotification{}, errors.Join(ErrNotStored, err)
	}

	populated, err := s.populate(ctx, created)
	if err != nil {
		s.log.Warn("notification populate failed", "notification_id", created.ID, "err", err)
		populated = models.PopulatedNotification{Notification: created}
	}

	if err := s.pub.Emit(ctx, recipientID, realtime.EventNotification, populated); err != nil {
		metrics.NotificationFailures.WithLabelValues("push").Inc()
		s.log.Warn("notification push failed", "notification_id", created.ID, "recipient_id", recipientID, "err", err)
		return populated, fmt.Errorf("push notification: %w", err)
	}
	return populated, nil
}

// populate re-reads the row and attaches the recipient and related-entity summaries.
func (s *NotificationService) populate(ctx context.Context, n models.Notification) (models.PopulatedNotification, error) {
	fresh, err := s.notes.GetByID(ctx, n.ID)
	if err != nil {
		return models.PopulatedNotification{}, err
	}
	out := models.PopulatedNotification{Notification: fresh}
	if fresh.RelatedID != nil && fresh.RelatedModel != nil {
		out.Related = &models.RelatedEntity{ID: *fresh.RelatedID, Model: *fresh.RelatedModel}
	}
	u, err := s.users.GetByID(ctx, fresh.RecipientID)
	if err != nil {
		return out, err
	}
	sum := u.Summary()
	out.Recipient = &sum
	return out, nil
}

// NotifyAdmins calls Notify once per active admin and returns how many were stored.
func (s *NotificationService) NotifyAdmins(ctx context.Context, in models.NotificationInput) (int, error) {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}
	var (
		sent int
		errs []error
	)
	for _, a := range admins {
		_, err := s.Notify(ctx, a.ID, in)
		if err != nil {
			errs = append(errs, err)
		}
		// A failed push still leaves a stored row.
		if !errors.Is(err, ErrNotStored) {
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (NotificationPage, error) {
	page, limit = models.Normalize(page, limit)
	items, total, err := s.notes.ListByRecipient(ctx, userID, unreadOnly, limit, offset(page, limit))
	if err != nil {
		return NotificationPage{}, repoErr(err, "")
	}
	unread, err := s.notes.CountUnread(ctx, userID)
	if err != nil {
		return NotificationPage{}, repoErr(err, "")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return NotificationPage{
		Notifications: items,
		Pagination:    models.NewPagination(total, page, limit),
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.notes.MarkRead(ctx, id, userID)
	if err != nil {
		return repoErr(err, "Notification not found")
	}
	if !ok {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notes.MarkAllRead(ctx, userID)
	return n, repoErr(err, "")
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.notes.Delete(ctx, id, userID)
	if err != nil {
		return repoErr(err, "Notification not found")
	}
	if !ok {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.notes.DeleteAll(ctx, userID)
	return n, repoErr(err, "")
}
