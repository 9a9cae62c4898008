package trainsets

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apischedule "github.com/kilianp07/railfleet/api/schedule"
	"github.com/kilianp07/railfleet/core/schedule/logging"
	"github.com/kilianp07/railfleet/infra/logger"
)

// NewRouter builds the API router: fleet routes, the scheduling run log when
// runs is non-nil, and a health probe.
func NewRouter(svc Service, runs logging.LogStore, token string, log logger.Logger) *mux.Router {
	if log == nil {
		log = logger.NopLogger{}
	}
	r := mux.NewRouter()
	r.Use(accessLog(log))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if runs != nil {
		r.Handle("/api/schedule/runs", apischedule.NewRunsHandler(runs, token)).Methods(http.MethodGet)
	}
	Register(r, svc)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debugw("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.code,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
