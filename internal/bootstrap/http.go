package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/meridianhq/meridian/config"
	"github.com/meridianhq/meridian/internal/adapters/economy"
	redisadapter "github.com/meridianhq/meridian/internal/adapters/redis"
	"github.com/meridianhq/meridian/internal/data"
	httpx "github.com/meridianhq/meridian/internal/http"
	"github.com/meridianhq/meridian/internal/service"
)

const shutdownTimeout = 10 * time.Second

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the per-request pipeline's collaborators.
type ServiceContainer struct {
	Auth       *service.AuthService
	Users      *data.UserRepo
	Stipend    *service.StipendService
	Themes     *httpx.ThemeLibrary
	RequestLog *httpx.RequestLogger
}

// NewServices wires repositories, adapters, and services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	themes, err := httpx.LoadThemes(deps.Config.Themes)
	if err != nil {
		return ServiceContainer{}, err
	}

	users := data.NewUserRepo(deps.DB)
	sessions := redisadapter.NewSessionStore(deps.RedisClient)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Sessions: sessions,
		Users:    users,
		Config:   deps.Config.Session,
	})

	stipend := service.NewStipendService(service.StipendServiceOptions{
		Crediter: economy.NewClient(deps.Config.Stipend.BaseURL, deps.Config.Stipend.Timeout),
		Marker:   redisadapter.NewStipendMarker(deps.RedisClient),
		Interval: deps.Config.Stipend.Interval,
	})

	return ServiceContainer{
		Auth:       auth,
		Users:      users,
		Stipend:    stipend,
		Themes:     themes,
		RequestLog: httpx.NewRequestLogger(deps.Config.Logging, deps.Logger),
	}, nil
}

// BuildHandler assembles the middleware pipeline around the application
// router. Outermost first: Recover -> RequestID -> RequestLog ->
// SessionPipeline -> Decorate -> routes, so the request log reflects the
// response actually returned (redirects included) and decoration sees the
// identity the session pipeline resolved.
func BuildHandler(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) http.Handler {
	h := httpx.NewRouter(httpx.RouterServices{Logger: logger})

	h = httpx.Decorate(services.Themes)(h)
	h = httpx.SessionPipeline(httpx.PipelineDeps{
		Auth:       services.Auth,
		Moderation: services.Users,
		Stipend:    services.Stipend,
		CookieName: cfg.Session.CookieName,
		Logger:     logger,
		ReqLog:     services.RequestLog,
	})(h)
	h = services.RequestLog.Middleware()(h)
	h = httpx.RequestID()(h)
	h = httpx.Recover(services.RequestLog, logger)(h)

	return h
}

// RunServer starts the HTTP server and blocks until the context is
// canceled (SIGINT/SIGTERM) or the server fails, then shuts down
// gracefully.
func RunServer(ctx context.Context, cfg *config.AppConfig, handler http.Handler, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
