package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anish3d/folio/internal/config"
	"github.com/anish3d/folio/internal/middleware"
	pkgcron "github.com/anish3d/folio/internal/pkg/cron"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	*Services
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	cancel  context.CancelFunc
	sched   *pkgcron.Scheduler
	started time.Time
}

// New wires the application: config → stores → Notion services → routes.
// configPath locates files referenced relative to the config, such as the
// assistant profile.
func New(logger *zap.Logger, cfg *config.AppConfig, configPath string) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := NewServices(logger, cfg, configPath)
	if err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Services: svc,
		cfg:      cfg,
		router:   router,
		logger:   logger,
		cancel:   cancel,
		sched:    pkgcron.New(logger),
		started:  time.Now(),
	}
	a.registerCronJobs()
	go a.sched.Start(ctx)

	a.registerRoutes()
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and releases the Redis pool.
func (a *App) Shutdown() {
	a.cancel()
	a.Close()
}
