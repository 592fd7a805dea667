package wire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/polybus/internal/adapter/memory"
	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/adapter/metrics"
	pgdb "github.com/alanyang/polybus/internal/adapter/postgres"
	pgidempotency "github.com/alanyang/polybus/internal/adapter/postgres/idempotency"
	pgjournal "github.com/alanyang/polybus/internal/adapter/postgres/journal"
	"github.com/alanyang/polybus/internal/config"
	portidempotency "github.com/alanyang/polybus/internal/port/idempotency"
	portjournal "github.com/alanyang/polybus/internal/port/journal"

	consolesvc "github.com/alanyang/polybus/internal/service/console"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
	framesvc "github.com/alanyang/polybus/internal/service/frame"
	journalsvc "github.com/alanyang/polybus/internal/service/journal"
	overlaysvc "github.com/alanyang/polybus/internal/service/overlay"

	"github.com/alanyang/polybus/internal/transport"
	mcptransport "github.com/alanyang/polybus/internal/transport/mcp"
	wshandler "github.com/alanyang/polybus/internal/transport/ws"
)

const shutdownTimeout = 10 * time.Second

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Server    *http.Server
	Bus       *metrics.EventBus
	Metrics   *prometheus.Registry
	Frames    *framesvc.Service
	Overlay   *overlaysvc.Service
	Hub       *wshandler.Hub
	MCPServer *mcptransport.Server

	sweep    sweepFunc
	quit     chan struct{}
	quitOnce sync.Once
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies. Without DATABASE_URL the journal and idempotency store
// live in memory.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{quit: make(chan struct{})}

	// ── Bus ──────────────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bus := metrics.NewEventBus(memeventbus.New(), registry)

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		journalRepo portjournal.Repository
		idemStore   portidempotency.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		app.Pool = pool
		if err := pgdb.Migrate(ctx, pool); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		journalRepo = pgjournal.New(pool)
		idem := pgidempotency.New(pool)
		idemStore = idem
		app.sweep = idem.Sweep
	} else {
		journalRepo = memory.NewJournal(cfg.JournalCapacity)
		idem := memory.NewIdempotencyStore()
		idemStore = idem
		app.sweep = func(ctx context.Context) (int64, error) {
			return int64(idem.Sweep(ctx)), nil
		}
	}

	// ── Services ─────────────────────────────────────────────────────────────
	eventsSvc := eventssvc.NewService(bus, bus, cfg.IsolateHandlerFailures)
	hub := wshandler.NewHub(bus, eventsSvc)
	overlaySvc := overlaysvc.NewService(hub) // hub implements port/notifier.Broadcaster
	journalSvc := journalsvc.NewService(journalRepo, cfg.JournalFrames)
	console := consolesvc.NewListener(slog.Default(), app.requestQuit)
	frameSvc := framesvc.NewService(bus, framesvc.Config{
		FrameRate: cfg.FrameRate,
		Width:     cfg.WindowWidth,
		Height:    cfg.WindowHeight,
	})

	for _, l := range []any{overlaySvc, console, journalSvc} {
		if err := bus.Subscribe(l); err != nil {
			app.Close()
			return nil, fmt.Errorf("subscribing %T: %w", l, err)
		}
	}

	mcpServer := mcptransport.New(bus, mcptransport.Services{
		Events:  eventsSvc,
		Journal: journalSvc,
		Overlay: overlaySvc,
	})

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(transport.Deps{
		Events:         eventsSvc,
		Journal:        journalSvc,
		Overlay:        overlaySvc,
		Frames:         frameSvc,
		Hub:            hub,
		MCP:            mcpServer,
		Metrics:        registry,
		Idempotency:    idemStore,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	app.Server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.Bus = bus
	app.Metrics = registry
	app.Frames = frameSvc
	app.Overlay = overlaySvc
	app.Hub = hub
	app.MCPServer = mcpServer

	slog.Info("application wired", "port", cfg.Port, "postgres", app.Pool != nil, "frame_rate", cfg.FrameRate)
	return app, nil
}

// Run serves HTTP, drives the frame loop and sweeps expired idempotency keys
// until ctx is done, Escape is pressed, or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP + MCP server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		return a.Frames.Run(runCtx)
	})
	g.Go(func() error {
		runSweeper(runCtx, sweepInterval, a.sweep)
		return nil
	})
	g.Go(func() error {
		select {
		case <-runCtx.Done():
		case <-a.quit:
			slog.Info("quit requested")
		}
		stop()
		return a.shutdown()
	})

	return g.Wait()
}

// Close releases resources Build acquired. Safe to call more than once.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func (a *App) requestQuit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.MCPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("mcp shutdown: %w", err))
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	a.Hub.Close()
	return errors.Join(errs...)
}
