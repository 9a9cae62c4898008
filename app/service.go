package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apitrainsets "github.com/kilianp07/railfleet/api/trainsets"
	"github.com/kilianp07/railfleet/app/plugins"
	"github.com/kilianp07/railfleet/config"
	"github.com/kilianp07/railfleet/core/events"
	"github.com/kilianp07/railfleet/core/fleetstatus"
	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/core/model"
	coremon "github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/recommend"
	"github.com/kilianp07/railfleet/core/schedule"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
	"github.com/kilianp07/railfleet/infra/fleetdb"
	"github.com/kilianp07/railfleet/infra/logger"
	"github.com/kilianp07/railfleet/infra/metrics"
	infmon "github.com/kilianp07/railfleet/infra/monitoring"
	"github.com/kilianp07/railfleet/infra/mqtt"
	"github.com/kilianp07/railfleet/infra/snapshot"
	"github.com/kilianp07/railfleet/internal/eventbus"
)

// Options holds the collaborators of a Service. Store, Engine and Runs are
// required; the rest fall back to no-op implementations.
type Options struct {
	Store     fleetstatus.Store
	Engine    recommend.Recommender
	Runs      schedlog.LogStore
	Sink      coremetrics.MetricsSink
	Publisher mqtt.EventPublisher
	Monitor   coremon.Monitor
	Logger    logger.Logger

	HTTPAddress    string
	HTTPToken      string
	PrometheusAddr string

	Clock    func() time.Time
	NewRunID func() string
}

// Service wires the fleet store, the recommendation engine and the
// scheduling run log, and fans fleet events out to metrics and MQTT.
type Service struct {
	store     fleetstatus.Store
	engine    recommend.Recommender
	scheduler *schedule.Scheduler
	runs      schedlog.LogStore
	sink      coremetrics.MetricsSink
	publisher mqtt.EventPublisher
	bus       *eventbus.Bus[events.Event]
	mon       coremon.Monitor
	log       logger.Logger

	httpAddr  string
	httpToken string
	promAddr  string

	now      func() time.Time
	newRunID func() string
}

// NewService assembles a Service from explicit collaborators.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil || opts.Engine == nil || opts.Runs == nil {
		return nil, errors.New("service: store, engine and run log are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Monitor == nil {
		opts.Monitor = coremon.NopMonitor{}
	}
	if opts.Sink == nil {
		opts.Sink = coremetrics.NopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = func() string { return uuid.NewString() }
	}
	sched, err := schedule.NewScheduler(opts.Engine, opts.Logger, opts.Monitor)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:     opts.Store,
		engine:    opts.Engine,
		scheduler: sched,
		runs:      opts.Runs,
		sink:      opts.Sink,
		publisher: opts.Publisher,
		bus:       eventbus.NewBuffered[events.Event](64),
		mon:       opts.Monitor,
		log:       opts.Logger,
		httpAddr:  opts.HTTPAddress,
		httpToken: opts.HTTPToken,
		promAddr:  opts.PrometheusAddr,
		now:       opts.Clock,
		newRunID:  opts.NewRunID,
	}, nil
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := infmon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Fleet)
	if err != nil {
		return nil, fmt.Errorf("fleet store: %w", err)
	}
	if cfg.Fleet.SnapshotPath != "" {
		ts, err := snapshot.Load(cfg.Fleet.SnapshotPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("fleet snapshot: %w", err)
		}
		n, err := snapshot.Seed(context.Background(), store, ts)
		if err != nil {
			logg.Warnf("fleet snapshot: %v", err)
		}
		logg.Infof("seeded %d of %d trainsets from %s", n, len(ts), cfg.Fleet.SnapshotPath)
	}

	runs, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		_ = runs.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	opts := Options{
		Store:          store,
		Engine:         recommend.NewEngine(cfg.Engine),
		Runs:           runs,
		Sink:           sink,
		Monitor:        mon,
		Logger:         logg,
		HTTPAddress:    cfg.HTTP.Address,
		HTTPToken:      cfg.HTTP.Token,
		PrometheusAddr: cfg.Metrics.PrometheusPort,
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT, mon)
		if err != nil {
			_ = store.Close()
			_ = runs.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		opts.Publisher = pub
	}
	return NewService(opts)
}

func openStore(cfg config.FleetConfig) (fleetstatus.Store, error) {
	if cfg.Store == "sqlite" {
		return fleetdb.NewSQLiteStore(cfg.DatabasePath)
	}
	return fleetstatus.NewMemoryStore(), nil
}

// Trainsets returns the fleet ordered by trainset number.
func (s *Service) Trainsets(ctx context.Context) ([]model.Trainset, error) {
	return s.store.Snapshot(ctx)
}

// Recommend scores a single trainset at the given time.
func (s *Service) Recommend(ctx context.Context, id string, at time.Time) (model.Recommendation, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Recommendation{}, err
	}
	return s.engine.Recommend(t, at)
}

// UpdateStatus applies a new status and publishes the recomputed metrics.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Trainset, model.FleetMetrics, error) {
	if !status.Valid() {
		return model.Trainset{}, model.FleetMetrics{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	u, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		s.log.Errorf("update status %s: %v", id, err)
		s.mon.CaptureException(err, map[string]string{"trainset_id": id, "operation": "update_status"})
		return model.Trainset{}, model.FleetMetrics{}, err
	}
	s.log.Infow("trainset status changed", map[string]any{
		"trainset_id":    id,
		"from":           u.Previous.String(),
		"to":             status.String(),
		"serviceability": u.Metrics.Serviceability,
	})
	if u.Changed() {
		s.bus.Publish(events.StatusChangedEvent{TrainsetID: id, From: u.Previous, To: status, Metrics: u.Metrics, Time: s.now()})
	}
	return u.Trainset, u.Metrics, nil
}

// GenerateSchedule recommends a status for every trainset at the given
// time, rolls the result into the fleet KPIs and appends it to the run log.
func (s *Service) GenerateSchedule(ctx context.Context, at time.Time) (schedlog.LogRecord, error) {
	start := s.now()
	ts, err := s.store.Snapshot(ctx)
	if err != nil {
		return schedlog.LogRecord{}, fmt.Errorf("snapshot: %w", err)
	}
	res := s.scheduler.ScheduleAll(ts, at)
	runID := s.newRunID()
	finished := s.now()
	rec := schedlog.NewLogRecord(runID, finished, at, res)
	// KPIs move only once the run is in the log.
	if err := s.runs.Append(ctx, rec); err != nil {
		s.log.Errorf("append run %s: %v", runID, err)
		s.mon.CaptureException(err, map[string]string{"run_id": runID, "operation": "append_run"})
		return rec, fmt.Errorf("append run: %w", err)
	}
	m, err := s.store.RecordSchedule(ctx, res.Summary.AverageConfidence)
	if err != nil {
		s.log.Errorf("record schedule %s: %v", runID, err)
		s.mon.CaptureException(err, map[string]string{"run_id": runID, "operation": "record_schedule"})
		return rec, fmt.Errorf("record schedule: %w", err)
	}
	s.log.Infow("schedule generated", map[string]any{
		"run_id":             runID,
		"trainsets":          res.Summary.TotalTrainsets,
		"skipped":            len(res.Errors),
		"average_confidence": res.Summary.AverageConfidence,
	})
	s.bus.Publish(events.ScheduleEvent{RunID: runID, Result: res, Metrics: m, Duration: finished.Sub(start), Time: finished})
	return rec, nil
}

// ApplyRecommendations moves every trainset of a run to its recommended
// status. Trainsets already in that status are left alone. It returns the
// number of trainsets changed.
func (s *Service) ApplyRecommendations(ctx context.Context, run schedlog.LogRecord) (int, error) {
	var (
		errs    []error
		applied int
	)
	for _, rec := range run.Recommendations {
		cur, err := s.store.Get(ctx, rec.TrainsetID)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", rec.TrainsetID, err))
			continue
		}
		if cur.Status == rec.RecommendedStatus {
			continue
		}
		if _, _, err := s.UpdateStatus(ctx, rec.TrainsetID, rec.RecommendedStatus); err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", rec.TrainsetID, err))
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}

// Runs exposes the scheduling run log.
func (s *Service) Runs() schedlog.LogStore { return s.runs }

// Metrics returns the latest fleet metrics.
func (s *Service) Metrics(ctx context.Context) (model.FleetMetrics, error) {
	return s.store.LatestMetrics(ctx)
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	return apitrainsets.NewRouter(s, s.runs, s.httpToken, logger.New("http"))
}

// StartConsumers attaches the metrics collector and the MQTT forwarder to
// the bus. The returned function blocks until both have exited.
func (s *Service) StartConsumers(ctx context.Context) func() {
	collector := metrics.StartEventCollector(ctx, s.bus, s.sink, s.log)
	forwarder := mqtt.StartEventForwarder(ctx, s.bus, s.publisher, s.log)
	return func() {
		<-collector
		<-forwarder
	}
}

// Run serves the API, and the Prometheus endpoint when configured, until ctx
// is canceled or a server fails. The event consumers share the servers'
// context so a failed listener also stops them.
func (s *Service) Run(ctx context.Context) error {
	defer s.mon.Recover()
	g, gctx := errgroup.WithContext(ctx)
	wait := s.StartConsumers(gctx)
	defer wait()

	srv := &http.Server{Addr: s.httpAddr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		defer s.mon.Recover()
		s.log.Infof("api listening on %s", s.httpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("api server: %v", err)
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if s.promAddr != "" {
		g.Go(func() error {
			defer s.mon.Recover()
			if err := metrics.StartPromServer(gctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				return fmt.Errorf("prom server: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if d, ok := s.publisher.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.mon.Flush(2 * time.Second)
	return errors.Join(s.runs.Close(), s.store.Close())
}
