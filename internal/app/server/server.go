package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/blt/config"
	"github.com/sifan077/blt/internal/http/handler"
	"github.com/sifan077/blt/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles what the HTTP server needs. Postgres, Redis and NATS
// are only checked by the health endpoint and may be nil.
type Dependencies struct {
	Logger   *zap.Logger
	Server   config.ServerConfig
	Beacon   config.BeaconConfig
	Ingestor handler.Stasher
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	NATS     *nats.Conn
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates the HTTP server with middleware and beacon routes registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "blt",
		DisableStartupMessage: true,
		ProxyHeader:           deps.Server.ProxyHeader,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	beacons := handler.NewBeaconHandler(handler.BeaconDeps{
		Logger:   s.deps.Logger.Named("beacon"),
		Ingestor: s.deps.Ingestor,
		Beacon:   s.deps.Beacon,
	})

	s.app.Use(
		middleware.RequestID(),
		middleware.Logger(s.deps.Logger.Named("http"), handler.PixelPath, "/health"),
		middleware.Recovery(s.deps.Logger.Named("http"), beacons.Fallback),
		middleware.CORS(s.deps.Server.AllowedOrigins),
	)

	handler.NewHealthHandler(s.healthChecks()).Register(s.app)
	beacons.Register(s.app)
}

func (s *Server) healthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if s.deps.Postgres != nil {
		checks["postgres"] = s.deps.Postgres.Ping
	}
	if s.deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.deps.Redis.Ping(ctx).Err()
		}
	}
	if s.deps.NATS != nil {
		checks["nats"] = func(context.Context) error {
			if !s.deps.NATS.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return checks
}
