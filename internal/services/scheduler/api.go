package scheduler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/allocation"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/model/messages"
)

// RequestIDHeader carries the caller's request id, echoed on the response.
const RequestIDHeader = "X-Request-Id"

// NewRouter wires the HTTP surface:
//
//	POST /api/schedule
//	GET  /health, /healthz, /readyz, /metrics
//
// Any other /api/* path gets a JSON 404.
func NewRouter(svc *Service, health, ready http.Handler, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/schedule", NewScheduleHandler(svc))
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messages.ErrorResult{
			Error: fmt.Sprintf("API endpoint %s not found", r.URL.Path),
		})
	})
	if health != nil {
		mux.Handle("/health", health)
		mux.Handle("/healthz", health)
	}
	if ready != nil {
		mux.Handle("/readyz", ready)
	}
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// NewScheduleHandler serves POST /api/schedule.
func NewScheduleHandler(svc *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, messages.ErrorResult{Error: "method not allowed"})
			return
		}
		reqID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		res, err := svc.ScheduleFrom(r.Context(), Origin{Source: SourceHTTP, RequestID: reqID}, r.Body)
		if err == nil {
			writeJSON(w, http.StatusOK, res)
			return
		}
		status := http.StatusInternalServerError
		if allocation.IsValidation(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, Failure(err))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("write response")
	}
}
