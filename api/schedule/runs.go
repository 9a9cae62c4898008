package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule/logging"
)

// NewRunsHandler returns an HTTP handler exposing scheduling runs via
// GET /api/schedule/runs. Supported filters are start and end (RFC3339),
// trainset_id and status. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewRunsHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := logging.LogQuery{TrainsetID: r.URL.Query().Get("trainset_id")}
		for key, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := r.URL.Query().Get(key)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid "+key+": "+err.Error(), http.StatusBadRequest)
				return
			}
			*dst = t
		}
		if st := r.URL.Query().Get("status"); st != "" {
			status, err := model.ParseStatus(st)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			q.Status = status
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
