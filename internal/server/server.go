package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/ISimplifyComplexity/lazyunit/internal/api/http"
	"github.com/ISimplifyComplexity/lazyunit/internal/api/middleware"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/loader"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/nav"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/preload"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/registry"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/session"
	"github.com/ISimplifyComplexity/lazyunit/internal/events"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/config"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/fetch"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/monitoring"
	"github.com/ISimplifyComplexity/lazyunit/internal/runtime"
	"github.com/ISimplifyComplexity/lazyunit/internal/ws"
)

// Server wires the loading core behind an HTTP surface.
type Server struct {
	cfg       *config.Config
	log       *logging.Logger
	router    *gin.Engine
	http      *http.Server
	registry  *registry.Registry
	loader    *loader.Loader
	scheduler *preload.Scheduler
	sessions  *session.Manager
	bus       *events.Bus
}

// New builds a fully wired server: seeds the registry from the manifest,
// loads eager units, and dispatches the preload pass.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()
	bus := events.NewBus()

	fetcher := fetch.New(fetch.Config{
		Timeout:    time.Duration(cfg.Units.FetchTimeout) * time.Second,
		MaxRetries: 3,
		UserAgent:  "lazyunit/1.0",
	}, log.Named("fetch"))
	rt := runtime.New(runtime.DefaultConfig(), log.Named("runtime"))

	reg := registry.New()
	seeder := registry.NewSeeder(reg, fetcher, rt, log.Named("seeder"))
	if err := seeder.SeedFile(cfg.Units.ManifestPath); err != nil {
		return nil, fmt.Errorf("seed registry: %w", err)
	}

	l := loader.New(log.Named("loader")).WithMetrics(metrics).WithBus(bus)

	// Eager units initialize before anything is served; a broken eager
	// unit is a startup failure, not a runtime surprise.
	for _, u := range reg.All() {
		if !u.MetadataBool("eager") {
			continue
		}
		if _, err := l.Load(context.Background(), u); err != nil {
			return nil, fmt.Errorf("eager load: %w", err)
		}
	}

	scheduler := preload.NewScheduler(reg, l, log.Named("preload")).
		WithMetrics(metrics).
		WithBus(bus)
	if cfg.Preload.Enabled {
		scheduler.Run(context.Background(), preload.StrategyByName(cfg.Preload.Strategy))
	}

	sessions := session.NewManager()
	dispatcher := nav.NewDispatcher(reg, l, session.ContextProvider{}, log.Named("nav")).
		WithMetrics(metrics).
		WithBus(bus)

	router := buildRouter(cfg, log, metrics, reg, l, dispatcher, scheduler, sessions, fetcher, bus)

	return &Server{
		cfg:       cfg,
		log:       log,
		router:    router,
		registry:  reg,
		loader:    l,
		scheduler: scheduler,
		sessions:  sessions,
		bus:       bus,
	}, nil
}

func buildRouter(
	cfg *config.Config,
	log *logging.Logger,
	metrics *monitoring.Metrics,
	reg *registry.Registry,
	l *loader.Loader,
	dispatcher *nav.Dispatcher,
	scheduler *preload.Scheduler,
	sessions *session.Manager,
	fetcher *fetch.Fetcher,
	bus *events.Bus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Principal(sessions))

	handlers := apihttp.NewHandlers(reg, l, dispatcher, scheduler, sessions, fetcher)
	wsHandler := ws.NewHandler(bus, log.Named("ws"))

	router.GET("/health", handlers.Health)
	router.GET("/units", handlers.ListUnits)
	router.GET("/state/*key", handlers.UnitState)
	router.GET("/stats", handlers.Stats)
	router.POST("/navigate/*key", handlers.Navigate)
	router.POST("/auth/login", handlers.Login)
	router.POST("/auth/logout", handlers.Logout)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return router
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks until the listener stops.
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.log.Info("server starting", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close drains in-flight requests and waits for background preloads.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.scheduler.Wait()
	s.log.Info("server stopped")
	return nil
}
