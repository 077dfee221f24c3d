package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/auth"
	"github.com/SHADOW0715/Hostel-Management-System/internal/billing"
	"github.com/SHADOW0715/Hostel-Management-System/internal/config"
	"github.com/SHADOW0715/Hostel-Management-System/internal/db"
	"github.com/SHADOW0715/Hostel-Management-System/internal/export"
	"github.com/SHADOW0715/Hostel-Management-System/internal/grpcserver"
	"github.com/SHADOW0715/Hostel-Management-System/internal/health"
	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/kafka"
	"github.com/SHADOW0715/Hostel-Management-System/internal/logger"
	"github.com/SHADOW0715/Hostel-Management-System/internal/messaging"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"
	"github.com/SHADOW0715/Hostel-Management-System/internal/middleware"
	"github.com/SHADOW0715/Hostel-Management-System/internal/storage/memory"
	"github.com/SHADOW0715/Hostel-Management-System/internal/storage/postgres"
	"github.com/SHADOW0715/Hostel-Management-System/internal/storage/redis"
	"github.com/SHADOW0715/Hostel-Management-System/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const dependencyCheckInterval = 15 * time.Second

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	grpcServer    *grpcserver.Server
	billing       *billing.Scheduler
	store         *hostel.Store
	checks        map[string]health.Checker
	meterProvider *sdkmetric.MeterProvider
	closers       []func() error
	stopWatch     context.CancelFunc
	logger        *slog.Logger
}

// New loads configuration from files and the environment and builds the app.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.LogLevel)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)
	slogLogger.Info("config loaded", "env", cfg.Env, "storage", cfg.Storage.Backend)

	return NewWithConfig(ctx, cfg, slogLogger)
}

// NewWithConfig wires storage, messaging, auth and the HTTP and gRPC servers.
// Anything opened before a failure is closed again.
func NewWithConfig(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (_ *App, err error) {
	slogLogger.Info("initializing application")

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		checks: map[string]health.Checker{},
		logger: slogLogger,
	}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	app.meterProvider, err = telemetry.InitMeterProvider(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(ServiceName)
	m, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := metrics.RegisterRuntime(meter); err != nil {
		slogLogger.Warn("failed to register runtime metrics", "error", err)
	}
	rpcMetrics, err := metrics.NewRPCMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gRPC metrics: %w", err)
	}

	repo, err := app.openRepository(ctx, m)
	if err != nil {
		return nil, err
	}

	publisher := app.openPublishers(m)

	app.store, err = hostel.Open(ctx, repo,
		hostel.WithLogger(slogLogger),
		hostel.WithPublisher(publisher),
		hostel.WithRoomChangeFee(cfg.Billing.RoomChangeFee),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open hostel store: %w", err)
	}

	if err := metrics.RegisterOccupancy(meter, app.occupancy); err != nil {
		slogLogger.Warn("failed to register occupancy metrics", "error", err)
	}

	admins, err := newAdminVerifier(cfg.Auth)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	if cfg.Billing.Enabled {
		app.billing, err = billing.NewScheduler(app.store, cfg.Billing.Schedule, cfg.Billing.MonthlyAmount, slogLogger, m)
		if err != nil {
			return nil, err
		}
	}

	app.grpcServer = grpcserver.New(slogLogger, rpcMetrics)

	app.router.Use(chimw.RequestID)
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	health.NewHandler(app.checks).RegisterRoutes(app.router)

	authHandler := auth.NewHandler(tokens, admins, hostel.StudentLogin{Store: app.store}, slogLogger, m, cfg.Auth.SecureCookie)
	hostelHandler := hostel.NewHandler(app.store, export.NewLedger(), slogLogger, m)

	authHandler.RegisterRoutes(app.router)

	app.router.Route("/api", func(r chi.Router) {
		r.Route("/public", hostelHandler.RegisterPublicRoutes)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, auth.RoleAdmin, slogLogger))
			hostelHandler.RegisterAdminRoutes(r)
		})

		r.Route("/student", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, auth.RoleStudent, slogLogger))
			hostelHandler.RegisterStudentRoutes(r)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app, nil
}

func (a *App) openRepository(ctx context.Context, m *metrics.Metrics) (hostel.Repository, error) {
	switch a.config.Storage.Backend {
	case "postgres":
		database, err := db.New(ctx, a.config.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)

		repo := postgres.NewRepository(database, postgres.WithMetrics(m))
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.checks["database"] = repo
		return repo, nil

	case "redis":
		client, err := redis.NewClient(ctx, a.config.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)

		repo := redis.NewRepository(client, a.config.Redis.Key, m)
		a.checks["redis"] = repo
		return repo, nil

	default:
		a.logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewRepository(), nil
	}
}

// openPublishers connects the configured event sinks. A sink that cannot be
// reached is logged and skipped.
func (a *App) openPublishers(m *metrics.Metrics) hostel.Publisher {
	var publishers []hostel.Publisher

	if a.config.NATS.URL != "" {
		natsPublisher, err := messaging.NewPublisher(a.config.NATS.URL, a.config.NATS.Subject, a.logger, m)
		if err != nil {
			a.logger.Warn("failed to initialize NATS publisher", "error", err)
		} else {
			a.logger.Info("NATS publisher initialized successfully", "url", a.config.NATS.URL)
			publishers = append(publishers, natsPublisher)
			a.checks["nats"] = natsPublisher
			a.closers = append(a.closers, natsPublisher.Close)
		}
	}

	if len(a.config.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(a.config.Kafka.Brokers, a.config.Kafka.Topic, a.logger, m)
		if err != nil {
			a.logger.Warn("failed to initialize Kafka producer", "error", err)
		} else {
			a.logger.Info("Kafka producer initialized successfully", "topic", a.config.Kafka.Topic)
			publishers = append(publishers, producer)
			a.closers = append(a.closers, producer.Close)
		}
	}

	if len(publishers) == 0 {
		return nil
	}
	return hostel.MultiPublisher(publishers...)
}

func newAdminVerifier(cfg config.AuthConfig) (*auth.BcryptAdmin, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" {
		if cfg.AdminPassword == "" {
			return nil, errors.New("auth.admin_password_hash or auth.admin_password must be set")
		}
		var err error
		hash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
	}
	return auth.NewBcryptAdmin(cfg.AdminUsername, hash)
}

func (a *App) occupancy() metrics.OccupancySnapshot {
	s := a.store.Stats()
	return metrics.OccupancySnapshot{
		Beds:               s.Beds,
		OccupiedBeds:       s.OccupiedBeds,
		Students:           s.Students,
		OpenComplaints:     s.OpenComplaints,
		PendingRoomChanges: s.PendingRoomChanges,
	}
}

// Handler exposes the HTTP router.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go a.grpcServer.WatchDependencies(watchCtx, a.checks, dependencyCheckInterval)

	go func() {
		if err := a.grpcServer.Run(a.config.GRPC.Port); err != nil {
			a.logger.Error("gRPC server error", "error", err)
		}
	}()

	if a.billing != nil {
		a.billing.Start()
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.grpcServer.Stop()
	if a.billing != nil {
		a.billing.Stop(ctx)
	}
	if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
		errs = append(errs, err)
	}
	a.close()

	return errors.Join(errs...)
}

// close releases publishers and storage in reverse order of opening.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close error", "error", err)
		}
	}
	a.closers = nil
}
