package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/hospital-e/supply-node/internal/core/service"
	"github.com/hospital-e/supply-node/internal/port"
)

const defaultLogLimit = 50

// HTTPHandler is the thin operator surface: status, manual triggers, and
// read access to alerts and the event log. All side effects go through the
// monitor; this layer never touches channels directly.
type HTTPHandler struct {
	monitor *service.Monitor
	store   port.Store
	log     *logrus.Logger
}

func NewHTTPHandler(monitor *service.Monitor, store port.Store, log *logrus.Logger) *HTTPHandler {
	return &HTTPHandler{monitor: monitor, store: store, log: log}
}

// Register wires all operator routes onto mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /status", h.Status)
	mux.HandleFunc("POST /trigger", h.Trigger)
	mux.HandleFunc("POST /simulate-consumption", h.SimulateConsumption)
	mux.HandleFunc("GET /logs", h.Logs)
	mux.HandleFunc("GET /alerts", h.Alerts)
	mux.HandleFunc("POST /alerts/{id}/acknowledge", h.AcknowledgeAlert)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.monitor.Status(r.Context())
	if err != nil {
		h.writeError(w, "failed to read status", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.monitor.TriggerCheckNow(r.Context())
	if err != nil {
		h.writeError(w, "manual check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) SimulateConsumption(w http.ResponseWriter, r *http.Request) {
	result, err := h.monitor.RunCycle(r.Context())
	if err != nil {
		h.writeError(w, "simulation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.store.RecentAudit(r.Context(), limit)
	if err != nil {
		h.writeError(w, "failed to read event log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(records),
		"logs":  records,
	})
}

func (h *HTTPHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.store.UnacknowledgedAlerts(r.Context())
	if err != nil {
		h.writeError(w, "failed to read alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

func (h *HTTPHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alert id"})
		return
	}

	if err := h.store.AcknowledgeAlert(r.Context(), id); err != nil {
		h.writeError(w, "failed to acknowledge alert", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"alert_id": id,
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, msg string, err error) {
	h.log.WithError(err).Error(msg)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
