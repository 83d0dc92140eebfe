// ABOUTME: Request log endpoints for the panel API.
// ABOUTME: Lists logged requests and aggregates them per model and endpoint.

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/2389/panel/internal/errors"
	"github.com/2389/panel/internal/store"
)

const defaultStatsWindow = 24 * time.Hour

// listLogs supports ?model=&method=&path=&status=&limit=&offset=
func (h *Handlers) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &store.RequestLogQuery{
		ModelName:  q.Get("model"),
		Method:     strings.ToUpper(q.Get("method")),
		PathPrefix: q.Get("path"),
		Limit:      atoiOr(q.Get("limit"), 100),
		Offset:     atoiOr(q.Get("offset"), 0),
		StatusCode: atoiOr(q.Get("status"), 0),
	}

	logs, err := h.store.GetRequestLogs(r.Context(), query)
	respond(w, logs, err)
}

// logStats supports ?model=&since=<duration>, defaulting to the last 24 hours
func (h *Handlers) logStats(w http.ResponseWriter, r *http.Request) {
	window := defaultStatsWindow
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, "since must be a positive duration such as 1h", "since")
			return
		}
		window = d
	}

	stats, err := h.store.GetRequestLogStats(r.Context(), r.URL.Query().Get("model"), time.Now().Add(-window))
	respond(w, stats, err)
}

func (h *Handlers) topEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.store.GetTopEndpoints(r.Context(), atoiOr(r.URL.Query().Get("limit"), 10))
	respond(w, endpoints, err)
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
