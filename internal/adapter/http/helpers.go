package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buildcost/buildcost/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// parsePage reads pageNum, pageSize and keyword query parameters.
func parsePage(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page := domain.PageRequest{Keyword: strings.TrimSpace(q.Get("keyword"))}
	if n, err := strconv.Atoi(q.Get("pageNum")); err == nil {
		page.PageNum = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		page.PageSize = n
	}
	page.Normalize()
	return page
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

// envelope is the uniform response shape of every endpoint. Code mirrors the
// HTTP status so clients can branch without reading headers.
type envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeRaw(w, r, status, "success", data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeRaw(w, r, status, message, nil)
}

func writeRaw(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := envelope{
		Code:      status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, fallbackMsg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, r, http.StatusConflict, trimSentinel(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusBadRequest, trimSentinel(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrIntegrity):
		writeError(w, r, http.StatusConflict, trimSentinel(err, domain.ErrIntegrity))
	case strings.Contains(err.Error(), "invalid input syntax"):
		writeError(w, r, http.StatusBadRequest, "invalid identifier format")
	default:
		slog.Error("unhandled domain error", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// trimSentinel strips the wrapped sentinel suffix, keeping the useful part
// of messages like "name is required: validation failed".
func trimSentinel(err error, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

// writeInternalError logs the actual error server-side and returns a generic
// message to the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
