package dev

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/gaugekit/internal/config"
	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/fixture"
	"github.com/vango-dev/gaugekit/internal/snapshot"
	"github.com/vango-dev/gaugekit/pkg/harness"
	"github.com/vango-dev/gaugekit/pkg/telemetry"
)

// maxRuns is how many runs the server remembers.
const maxRuns = 50

// ServerOptions configures the inspector server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server and pipeline logs. Default: slog.Default().
	Logger *slog.Logger

	// Registry collects metrics served on /metrics. A new registry with
	// Go and process collectors is created when nil.
	Registry *prometheus.Registry

	// Snapshots is passed to the fixture runner. Nil disables snapshot
	// comparison.
	Snapshots snapshot.Store

	// Watch re-runs fixtures when their files change.
	Watch bool

	// PollInterval is the watcher's scan interval. Default: 250ms.
	PollInterval time.Duration

	// OnRun is called after every run.
	OnRun func(run *Run)
}

// Run is one execution of one or more fixtures.
type Run struct {
	ID       string            `json:"id"`
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Results  []*fixture.Result `json:"results,omitempty"`
}

// FixtureInfo describes a loaded fixture.
type FixtureInfo struct {
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	Description string          `json:"description,omitempty"`
	Refs        []string        `json:"refs"`
	Tags        []string        `json:"tags,omitempty"`
	Last        *fixture.Result `json:"last,omitempty"`
}

// Server is the fixture inspector.
type Server struct {
	config    *config.Config
	options   ServerOptions
	logger    *slog.Logger
	registry  *prometheus.Registry
	telemetry *telemetry.Telemetry
	runner    *fixture.Runner
	hub       *Hub
	watcher   *Watcher
	router    chi.Router

	mu       sync.RWMutex
	fixtures map[string]*fixture.Fixture
	last     map[string]*fixture.Result
	runs     []*Run
	running  bool
	http     *http.Server
}

// NewServer creates the server. Fixtures are not loaded until Reload or
// Start is called.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	tel := telemetry.New(
		telemetry.WithRegistry(registry),
		telemetry.WithNamespace(cfg.Metrics.Namespace),
	)

	s := &Server{
		config:    cfg,
		options:   options,
		logger:    logger,
		registry:  registry,
		telemetry: tel,
		hub:       NewHub(logger),
		fixtures:  make(map[string]*fixture.Fixture),
		last:      make(map[string]*fixture.Result),
	}
	s.runner = &fixture.Runner{
		Options: []harness.Option{
			harness.FromConfig(cfg),
			harness.WithLogger(logger),
			harness.WithTelemetry(tel),
		},
		Snapshots: options.Snapshots,
	}

	interval := options.PollInterval
	if interval == 0 {
		interval = 250 * time.Millisecond
	}
	s.watcher = NewWatcher(WatcherConfig{
		Paths:    []string{cfg.FixturesPath()},
		Pattern:  cfg.Fixtures.Pattern,
		Debounce: interval,
	})
	s.watcher.OnChange(s.handleChanges)
	s.router = s.routes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	r.Handle("/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fixtures", s.handleListFixtures)
		r.Get("/fixtures/{name}", s.handleGetFixture)
		r.Post("/fixtures/{name}/run", s.handleRunFixture)
		r.Post("/reload", s.handleReload)
		r.Get("/runs", s.handleListRuns)
		r.Post("/runs", s.handleRunAll)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Reload loads every fixture from disk, replacing the loaded set.
func (s *Server) Reload() error {
	fixtures, err := fixture.LoadDir(s.config.FixturesPath(), s.config.Fixtures.Pattern)
	if err != nil {
		s.hub.Broadcast(Event{Type: EventError, Error: gkerrors.Summary(err)})
		return err
	}
	byName := make(map[string]*fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		byName[f.Name] = f
	}
	s.mu.Lock()
	s.fixtures = byName
	for name := range s.last {
		if _, ok := byName[name]; !ok {
			delete(s.last, name)
		}
	}
	s.mu.Unlock()

	s.logger.Info("fixtures loaded", "count", len(fixtures), "dir", s.config.FixturesPath())
	s.hub.Broadcast(Event{Type: EventFixtures, Count: len(fixtures)})
	return nil
}

// Names returns the loaded fixture names, sorted.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.fixtures))
	for name := range s.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunFixtures runs the named fixtures, or all of them when names is empty.
func (s *Server) RunFixtures(ctx context.Context, names ...string) (*Run, error) {
	if len(names) == 0 {
		names = s.Names()
	}
	s.mu.RLock()
	selected := make([]*fixture.Fixture, 0, len(names))
	for _, name := range names {
		f, ok := s.fixtures[name]
		if !ok {
			s.mu.RUnlock()
			return nil, gkerrors.New("E162").WithDetail("no fixture named " + name)
		}
		selected = append(selected, f)
	}
	s.mu.RUnlock()

	run := &Run{ID: ulid.Make().String(), Started: time.Now()}
	for _, f := range selected {
		res := s.runner.Run(ctx, f)
		if res.Passed() {
			run.Passed++
		} else {
			run.Failed++
			s.logger.Warn("fixture failed", "fixture", f.Name, "error", gkerrors.Summary(res.Err()))
		}
		run.Results = append(run.Results, res)
	}
	run.Duration = time.Since(run.Started)

	s.mu.Lock()
	for _, res := range run.Results {
		s.last[res.Name] = res
	}
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRuns {
		s.runs = s.runs[len(s.runs)-maxRuns:]
	}
	s.mu.Unlock()

	s.logger.Info("run finished", "run", run.ID, "passed", run.Passed, "failed", run.Failed, "duration", run.Duration)
	s.hub.Broadcast(Event{Type: EventRun, Run: run.ID, Passed: run.Passed, Failed: run.Failed})
	if s.options.OnRun != nil {
		s.options.OnRun(run)
	}
	return run, nil
}

// Lookup returns a remembered run.
func (s *Server) Lookup(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// handleChanges reloads the fixture set and re-runs the fixtures whose
// files changed.
func (s *Server) handleChanges(changes []Change) {
	if err := s.Reload(); err != nil {
		s.logger.Error("reload failed", "error", gkerrors.Summary(err))
		return
	}
	changed := make(map[string]bool)
	for _, c := range changes {
		if c.Kind != ChangeRemoved {
			changed[filepath.Clean(c.Path)] = true
		}
	}
	var names []string
	s.mu.RLock()
	for name, f := range s.fixtures {
		if changed[filepath.Clean(f.Path)] {
			names = append(names, name)
		}
	}
	s.mu.RUnlock()
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	if _, err := s.RunFixtures(context.Background(), names...); err != nil {
		s.logger.Error("re-run failed", "error", err)
	}
}

// Start loads fixtures and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Reload(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.ServeAddress())
	if err != nil {
		return gkerrors.FromError(err, "E122").WithDetail("cannot listen on " + s.config.ServeAddress())
	}
	s.mu.Lock()
	s.http = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	srv := s.http
	s.mu.Unlock()

	if s.options.Watch {
		go s.watcher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("inspector listening", "url", "http://"+ln.Addr().String(), "watch", s.options.Watch)

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Stop shuts the server down.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.http
	s.running = false
	s.mu.Unlock()

	s.watcher.Stop()
	s.hub.Close()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case gkerrors.HasCode(err, "E162"):
		status = http.StatusNotFound
	case gkerrors.HasCode(err, "E160"):
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(gkerrors.FromError(err, "E180").FormatJSON()))
}

func (s *Server) info(f *fixture.Fixture) FixtureInfo {
	return FixtureInfo{
		Name:        f.Name,
		Path:        f.Path,
		Description: f.Description,
		Refs:        f.RefNames(),
		Tags:        f.Tags,
		Last:        s.last[f.Name],
	}
}

func (s *Server) handleListFixtures(w http.ResponseWriter, r *http.Request) {
	names := s.Names()
	s.mu.RLock()
	out := make([]FixtureInfo, 0, len(names))
	for _, name := range names {
		out = append(out, s.info(s.fixtures[name]))
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFixture(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.RLock()
	f, ok := s.fixtures[name]
	var info FixtureInfo
	if ok {
		info = s.info(f)
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, gkerrors.New("E162").WithDetail("no fixture named "+name))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRunFixture(w http.ResponseWriter, r *http.Request) {
	run, err := s.RunFixtures(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunAll(w http.ResponseWriter, r *http.Request) {
	run, err := s.RunFixtures(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(s.Names())})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		summary := *s.runs[i]
		summary.Results = nil
		out = append(out, summary)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.Lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
