package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
)

const defaultKeepAlive = 25 * time.Second

// EventsHandler streams the caller's real-time channel as server-sent events.
type EventsHandler struct {
	Hub       Subscriber
	Log       *slog.Logger
	KeepAlive time.Duration
}

func NewEventsHandler(hub Subscriber, log *slog.Logger) *EventsHandler {
	return &EventsHandler{Hub: hub, Log: log, KeepAlive: defaultKeepAlive}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if h.Hub == nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, httpx.APIError{
			Message: "real-time stream is disabled",
			Code:    "unavailable",
		})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(w, apperr.Internal("streaming unsupported", nil))
		return
	}

	sub, err := h.Hub.Subscribe(r.Context(), u.UserID)
	if err != nil {
		h.Log.Error("realtime subscribe failed", "user_id", u.UserID, "err", err)
		httpx.WriteError(w, apperr.Internal("could not open event stream", err))
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
