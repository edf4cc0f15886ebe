package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mempool_watcher/internal/domain"
	"mempool_watcher/internal/repository"
)

// Handler exposes read-only ops endpoints: liveness, the loaded rule set and
// the recent alert history. Alert output itself stays on stdout.
type Handler struct {
	rules   *domain.RuleSet
	alerts  repository.AlertRepository
	logger  *slog.Logger
	started time.Time
}

func NewHandler(rules *domain.RuleSet, alerts repository.AlertRepository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		rules:   rules,
		alerts:  alerts,
		logger:  logger,
		started: time.Now(),
	}
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type AlertsResponse struct {
	Count  int            `json:"count"`
	Alerts []domain.Alert `json:"alerts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.HealthHandler)
	mux.HandleFunc("GET /rules", h.RulesHandler)
	mux.HandleFunc("GET /alerts", h.AlertsHandler)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

func (h *Handler) RulesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.rules.View())
}

func (h *Handler) AlertsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.sendError(w, "Invalid limit parameter", http.StatusBadRequest, "INVALID_LIMIT")
			return
		}
		limit = n
	}

	alerts, err := h.alerts.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read alert history",
			slog.String("error", err.Error()))
		h.sendError(w, "Failed to read alert history", http.StatusInternalServerError, "HISTORY_ERROR")
		return
	}

	h.sendJSON(w, http.StatusOK, AlertsResponse{Count: len(alerts), Alerts: alerts})
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
	}
}

func (h *Handler) sendError(w http.ResponseWriter, message string, status int, code string) {
	h.sendJSON(w, status, ErrorResponse{Error: message, Code: code})
}
