package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baharkarakas/servicehub-backend/internal/api/validate"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/auth"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

type UserService struct {
	r      repo.Users
	tm     *auth.TokenManager
	notify Notifier
	log    *slog.Logger
}

func NewUserService(r repo.Users, tm *auth.TokenManager, n Notifier, log *slog.Logger) *UserService {
	return &UserService{r: r, tm: tm, notify: n, log: log}
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type Session struct {
	User   models.User `json:"user"`
	Tokens auth.Pair   `json:"tokens"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	u := models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
		Role:  in.Role,
	}
	if err := u.Validate(); err != nil {
		return Session{}, apperr.Validation(err.Error(), nil)
	}
	if len(in.Password) < auth.MinPasswordLen {
		return Session{}, apperr.Validation("invalid registration", validate.Errs{{
			Field: "password",
			Msg:   fmt.Sprintf("must be at least %d characters", auth.MinPasswordLen),
		}})
	}

	if _, err := s.r.GetByEmail(ctx, u.Email); err == nil {
		return Session{}, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return Session{}, apperr.Internal("email lookup failed", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, apperr.Internal("hash password", err)
	}
	u.PasswordHash = hash

	u, err = s.r.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicate) {
		return Session{}, apperr.Conflict("Email already registered")
	}
	if err != nil {
		return Session{}, apperr.Internal("create user", err)
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role)

	if _, err := s.notify.NotifyAdmins(context.WithoutCancel(ctx), models.NotificationInput{
		Title:        "New User Registered",
		Message:      fmt.Sprintf("%s registered as %s.", u.Name, u.Role),
		Type:         models.NotifyUser,
		Category:     "user",
		Priority:     models.PriorityLow,
		RelatedID:    u.ID,
		RelatedModel: "User",
	}); err != nil {
		s.log.Warn("admin notification failed", "user_id", u.ID, "err", err)
	}

	return s.session(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.r.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return Session{}, apperr.Internal("user lookup failed", err)
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return Session{}, apperr.Unauthorized("invalid credentials")
	}
	if u.Status != "active" {
		return Session{}, apperr.Forbidden("account is " + u.Status)
	}
	return s.session(u)
}

// Refresh re-reads the user so role and status changes take effect on the next pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.r.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return Session{}, apperr.Internal("user lookup failed", err)
	}
	if u.Status != "active" {
		return Session{}, apperr.Forbidden("account is " + u.Status)
	}
	return s.session(u)
}

// SubmitVerification stores a provider's documents and queues them for admin
// review. A verified provider cannot resubmit.
func (s *UserService) SubmitVerification(ctx context.Context, providerID string, documentURLs []string) (models.User, error) {
	docs := make([]string, 0, len(documentURLs))
	for _, d := range documentURLs {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}
	if len(docs) == 0 {
		return models.User{}, apperr.Validation("at least one document is required", validate.Errs{{
			Field: "documents",
			Msg:   "must not be empty",
		}})
	}

	u, err := s.r.GetByID(ctx, providerID)
	if err != nil {
		return models.User{}, repoErr(err, "Service provider not found")
	}
	if u.Role != models.RoleProvider {
		return models.User{}, apperr.Forbidden("only service providers can submit verification")
	}
	if u.Verification != nil && u.Verification.Status == models.VerificationVerified {
		return models.User{}, apperr.Conflict("provider is already verified")
	}

	u, err = s.r.UpdateVerification(ctx, providerID, models.Verification{
		Status:    models.VerificationPending,
		Documents: docs,
	})
	if err != nil {
		return models.User{}, repoErr(err, "Service provider not found")
	}
	s.log.Info("verification submitted", "user_id", u.ID, "documents", len(docs))

	if _, err := s.notify.NotifyAdmins(context.WithoutCancel(ctx), models.NotificationInput{
		Title:        "Verification Submitted",
		Message:      fmt.Sprintf("%s submitted %d document(s) for verification.", u.Name, len(docs)),
		Type:         models.NotifyVerification,
		Category:     "verification",
		Priority:     models.PriorityMedium,
		RelatedID:    u.ID,
		RelatedModel: "User",
	}); err != nil {
		s.log.Warn("admin notification failed", "user_id", u.ID, "err", err)
	}
	return u, nil
}

func (s *UserService) session(u models.User) (Session, error) {
	pair, err := s.tm.GeneratePair(u.ID, string(u.Role), u.Name)
	if err != nil {
		return Session{}, apperr.Internal("token generation failed", err)
	}
	return Session{User: u, Tokens: pair}, nil
}
