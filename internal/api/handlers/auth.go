package handlers

import (
	"net/http"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/api/validate"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/services"
)

type AuthHandler struct {
	Accounts Accounts
}

func NewAuthHandler(a Accounts) *AuthHandler {
	return &AuthHandler{Accounts: a}
}

func writeSession(w http.ResponseWriter, status int, s services.Session) {
	httpx.WriteOK(w, status, map[string]any{
		"user":         s.User,
		"accessToken":  s.Tokens.AccessToken,
		"refreshToken": s.Tokens.RefreshToken,
		"expiresAt":    s.Tokens.ExpiresAt,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	s, err := h.Accounts.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	writeSession(w, http.StatusCreated, s)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if errs := validate.Collect(
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		httpx.WriteError(w, apperr.Validation("email and password are required", errs))
		return
	}
	s, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	writeSession(w, http.StatusOK, s)
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, apperr.Validation("refreshToken is required", nil))
		return
	}
	s, err := h.Accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	writeSession(w, http.StatusOK, s)
}

type submitVerificationReq struct {
	Documents []string `json:"documents"`
}

// SubmitVerification lets the signed-in provider send documents for review.
func (h *AuthHandler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req submitVerificationReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	provider, err := h.Accounts.SubmitVerification(r.Context(), u.UserID, req.Documents)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message": "Verification submitted",
		"user":    provider,
	})
}
