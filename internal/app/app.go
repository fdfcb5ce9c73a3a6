package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"burrowwatch/internal/config"
	"burrowwatch/internal/handler"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/metrics"
	"burrowwatch/internal/repository/sqlite"
	"burrowwatch/internal/route"
	"burrowwatch/internal/service/ai"
	"burrowwatch/internal/service/relay"
	"burrowwatch/internal/service/storage"
	"burrowwatch/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config    *config.Config
	logger    *logger.Logger
	metrics   *metrics.Metrics
	adapter   *ai.Adapter
	hub       *websocket.HubService
	relay     *relay.Relay
	db        *sqlite.DB
	sightings *storage.SightingBuffer
	router    http.Handler
}

// NewApp loads configuration from the environment and builds the application.
func NewApp() (*App, error) {
	cfg := config.Load()
	return New(cfg, logger.NewLogger(cfg))
}

// New wires every service for cfg.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	m := metrics.New()
	hub := websocket.NewHubService(cfg, log)
	m.TrackClients(hub.GetClientCount)

	adapter := ai.NewAdapter(ai.NewBackend(cfg, log), cfg.DetectTimeout, log)
	r := relay.New(relay.NewSession(), adapter, hub, cfg.DispatchMode, m, log)

	a := &App{
		config:  cfg,
		logger:  log,
		metrics: m,
		adapter: adapter,
		hub:     hub,
		relay:   r,
	}

	var sightings handler.SightingSource
	if cfg.SightingsDatabase != "" {
		db, err := sqlite.New(cfg.SightingsDatabase)
		if err != nil {
			adapter.Close()
			return nil, fmt.Errorf("failed to open sightings database: %w", err)
		}
		a.db = db
		a.sightings = storage.NewSightingBuffer(cfg, log, sqlite.NewSightingRepository(db))
		r.SetSightings(a.sightings)
		sightings = a.sightings
	}

	a.router = route.SetupRoutes(route.Deps{
		Relay:     r,
		Hub:       hub,
		Metrics:   m,
		Logger:    log,
		Detector:  adapter.Kind(),
		Sightings: sightings,
		StaticDir: cfg.StaticDirectory,
	})

	return a, nil
}

// Handler returns the HTTP routes.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start launches the background services. Run calls it.
func (a *App) Start(ctx context.Context) {
	go a.hub.Run()
	if a.sightings != nil {
		go a.sightings.Run(ctx)
	}
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Start(bgCtx)

	server := &http.Server{
		Addr:              a.config.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("🚀 Animal spotting relay")
	a.logger.Info("📍 URL: http://localhost%s", a.config.Addr())
	a.logger.Info("🤖 Detector: %s (%s)", a.adapter.Kind(), a.config.ModelPath)
	a.logger.Info("🔀 Dispatch mode: %s", a.config.DispatchMode)
	if a.sightings != nil {
		a.logger.Info("🗄️ Sightings archive: %s", a.config.SightingsDatabase)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		a.Close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	err := server.Shutdown(shutdownCtx)
	cancel()
	a.Close()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the relay and hub, flushes pending sightings and releases
// the detector and database.
func (a *App) Close() {
	a.relay.Stop()
	a.relay.Close()
	a.hub.Stop()
	if a.sightings != nil {
		a.sightings.FlushSightings()
	}
	if err := a.adapter.Close(); err != nil {
		a.logger.Warning("Error closing detector: %v", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warning("Error closing database: %v", err)
		}
	}
}
