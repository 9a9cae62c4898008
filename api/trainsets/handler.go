// Package trainsets exposes the fleet, its recommendations and scheduling
// runs over HTTP.
package trainsets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/railfleet/core/fleetstatus"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule/logging"
)

// DateLayout is the layout of the date query parameter.
const DateLayout = "2006-01-02"

// Service is the fleet service the handlers delegate to.
type Service interface {
	Trainsets(ctx context.Context) ([]model.Trainset, error)
	Recommend(ctx context.Context, id string, at time.Time) (model.Recommendation, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (model.Trainset, model.FleetMetrics, error)
	GenerateSchedule(ctx context.Context, at time.Time) (logging.LogRecord, error)
	Metrics(ctx context.Context) (model.FleetMetrics, error)
}

type handler struct {
	svc Service
	now func() time.Time
}

// Register mounts the fleet routes on r.
func Register(r *mux.Router, svc Service) {
	h := &handler{svc: svc, now: time.Now}
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/trainsets", h.list).Methods(http.MethodGet)
	api.HandleFunc("/trainsets/{id}/recommendation", h.recommend).Methods(http.MethodGet)
	api.HandleFunc("/trainsets/{id}/status", h.updateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/schedule", h.schedule).Methods(http.MethodPost)
	api.HandleFunc("/fleet/metrics", h.metrics).Methods(http.MethodGet)
}

type errorBody struct {
	Error string `json:"error"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Trainset model.Trainset     `json:"trainset"`
	Metrics  model.FleetMetrics `json:"metrics"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, fleetstatus.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidStatus):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidTrainset):
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

// evaluationTime returns the start of the requested service day in UTC, or
// the current time when no date is given.
func (h *handler) evaluationTime(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return h.now(), nil
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.Trainsets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *handler) recommend(w http.ResponseWriter, r *http.Request) {
	at, err := h.evaluationTime(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid date: " + err.Error()})
		return
	}
	rec, err := h.svc.Recommend(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body: " + err.Error()})
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	t, m, err := h.svc.UpdateStatus(r.Context(), mux.Vars(r)["id"], status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Trainset: t, Metrics: m})
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request) {
	at, err := h.evaluationTime(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid date: " + err.Error()})
		return
	}
	rec, err := h.svc.GenerateSchedule(r.Context(), at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
