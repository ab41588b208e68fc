package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
)

// NotificationHandler serves the caller's own inbox. Every operation is scoped to the
// authenticated user.
type NotificationHandler struct {
	Inbox Inbox
}

func NewNotificationHandler(i Inbox) *NotificationHandler {
	return &NotificationHandler{Inbox: i}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
	page, err := h.Inbox.List(r.Context(), u.UserID, unreadOnly, httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 20))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"notifications": page.Notifications,
		"pagination":    page.Pagination,
		"unreadCount":   page.UnreadCount,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.Inbox.MarkRead(r.Context(), u.UserID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	n, err := h.Inbox.MarkAllRead(r.Context(), u.UserID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.Inbox.Delete(r.Context(), u.UserID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"message": "Notification deleted"})
}

func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	n, err := h.Inbox.DeleteAll(r.Context(), u.UserID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"message": "All notifications deleted", "deleted": n})
}
