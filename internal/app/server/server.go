package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"hrleave/internal/domain/audit"
	"hrleave/internal/domain/core"
	"hrleave/internal/domain/leave"
	"hrleave/internal/domain/notifications"
	"hrleave/internal/domain/onboarding"
	"hrleave/internal/domain/payroll"
	"hrleave/internal/domain/policy"
	"hrleave/internal/platform/config"
	"hrleave/internal/platform/db"
	"hrleave/internal/platform/email"
	"hrleave/internal/platform/jobs"
	"hrleave/internal/platform/metrics"
	"hrleave/internal/transport/http/api"
	audithandler "hrleave/internal/transport/http/handlers/audit"
	jobshandler "hrleave/internal/transport/http/handlers/jobs"
	leavehandler "hrleave/internal/transport/http/handlers/leave"
	notificationshandler "hrleave/internal/transport/http/handlers/notifications"
	onboardinghandler "hrleave/internal/transport/http/handlers/onboarding"
	payrollhandler "hrleave/internal/transport/http/handlers/payroll"
	"hrleave/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	catalog := policy.Default()
	coreStore := core.NewStore(pool)
	leaveStore := leave.NewStore(pool)
	onboardingStore := onboarding.NewStore(pool)
	payrollStore := payroll.NewStore(pool)

	var leaveService *leave.Service
	onboardingService := onboarding.NewService(onboardingStore, coreStore, seederFunc(func(ctx context.Context, employeeID string, status policy.Status, year int) error {
		return leaveService.SeedBalances(ctx, employeeID, status, year)
	}))
	leaveService = leave.NewService(leaveStore, coreStore, onboardingService, catalog)
	leaveService.Retries = cfg.LedgerRetryAttempts
	payrollService := payroll.NewService(payrollStore, coreStore, onboardingService, catalog, cfg.PayslipDir)

	notifyService := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	trail := audit.New(pool)

	jobsService := jobs.New(pool, leaveService)
	jobsCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	jobsService.Start(jobsCtx, cfg.RolloverCheckInterval)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		leavehandler.NewHandler(leaveService, notifyService, trail).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, notifyService).RegisterRoutes(r)
		onboardinghandler.NewHandler(onboardingService, coreStore, leaveService).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(trail).RegisterRoutes(r)
		jobshandler.NewHandler(jobsService).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("leave engine listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}
}

// seederFunc defers the leave service lookup so the onboarding service and
// the leave service can reference each other without a construction cycle.
type seederFunc func(ctx context.Context, employeeID string, status policy.Status, year int) error

func (f seederFunc) SeedBalances(ctx context.Context, employeeID string, status policy.Status, year int) error {
	return f(ctx, employeeID, status, year)
}
