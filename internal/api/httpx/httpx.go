package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
)

const maxBody = 1 << 20

type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes body with success:true added.
func WriteOK(w http.ResponseWriter, status int, body map[string]any) {
	if body == nil {
		body = map[string]any{}
	}
	body["success"] = true
	WriteJSON(w, status, body)
}

// WriteError renders any error through its apperr kind. Internal causes are logged, never sent.
func WriteError(w http.ResponseWriter, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		slog.Error("internal error", "err", err)
	}
	WriteJSON(w, ae.Kind.HTTPStatus(), APIError{
		Message: ae.Message,
		Code:    string(ae.Kind),
		Details: ae.Details,
	})
}

// DecodeJSON reads a single JSON object from the request body.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty", nil)
		}
		return apperr.Validation("invalid JSON body", err.Error())
	}
	return nil
}

// QueryInt returns the named query parameter, or def when absent or not a number.
func QueryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
