package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/identity"
	"hrperf/internal/domain/kpi"
	"hrperf/internal/domain/notifications"
	"hrperf/internal/domain/org"
	"hrperf/internal/domain/progress"
	"hrperf/internal/domain/reports"
	"hrperf/internal/domain/workflow"
	"hrperf/internal/platform/config"
	"hrperf/internal/platform/db"
	"hrperf/internal/platform/email"
	"hrperf/internal/platform/idempotency"
	"hrperf/internal/platform/jobs"
	"hrperf/internal/platform/memstore"
	"hrperf/internal/platform/metrics"
	audithandler "hrperf/internal/transport/http/handlers/audit"
	authhandler "hrperf/internal/transport/http/handlers/auth"
	goalshandler "hrperf/internal/transport/http/handlers/goals"
	notificationshandler "hrperf/internal/transport/http/handlers/notifications"
	orghandler "hrperf/internal/transport/http/handlers/org"
	reportshandler "hrperf/internal/transport/http/handlers/reports"
	reviewshandler "hrperf/internal/transport/http/handlers/reviews"
	"hrperf/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	cancel context.CancelFunc
}

// Close stops background workers and releases the database pool.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

type stores struct {
	identity   identity.StoreAPI
	goals      progress.StoreAPI
	kpis       kpi.StoreAPI
	workflow   workflow.StoreAPI
	inbox      notifications.StoreAPI
	audit      audit.StoreAPI
	runs       jobs.RunStore
	keys       idempotency.Store
	purgeInbox jobs.NotificationPurger
	purgeAudit jobs.AuditPurger
}

func memoryStores() stores {
	m := memstore.New()
	return stores{
		identity:   m,
		goals:      m,
		kpis:       m,
		workflow:   m,
		inbox:      m,
		audit:      m,
		runs:       m,
		keys:       idempotency.NewMemoryStore(),
		purgeInbox: m,
		purgeAudit: m,
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	inbox := notifications.NewStore(pool)
	events := audit.NewStore(pool)
	return stores{
		identity:   identity.NewStore(pool),
		goals:      progress.NewStore(pool),
		kpis:       kpi.NewStore(pool),
		workflow:   workflow.NewStore(pool),
		inbox:      inbox,
		audit:      events,
		runs:       jobs.NewStore(pool),
		keys:       idempotency.NewPGStore(pool),
		purgeInbox: inbox,
		purgeAudit: events,
	}
}

// New wires stores, services and routes. Background workers run until Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		slog.Warn("JWT_SECRET not set, using an ephemeral secret")
		cfg.JWTSecret = secret
	}

	app := &App{Config: cfg, Metrics: metrics.New()}
	var st stores
	switch cfg.StoreDriver {
	case config.StoreMemory:
		st = memoryStores()
	default:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				pool.Close()
				return nil, err
			}
		}
		st = postgresStores(pool)
	}

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.cancel = cancel

	notifier := notifications.New(st.inbox, email.New(cfg), cfg.EmailFrom, cfg.NotifyQueueSize)
	notifier.Start(bg)
	auditor := audit.New(st.audit)

	directory := identity.NewService(st.identity)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(directory, tokens)
	orgSvc := org.NewService(st.identity, notifier, auditor)
	goalSvc := progress.NewService(st.goals, directory, notifier)
	kpiSvc := kpi.NewService(st.kpis, directory, st.identity)
	workflowSvc := workflow.NewService(st.workflow, directory, goalSvc, notifier, auditor).WithMetrics(app.Metrics)
	reportSvc := reports.NewService(workflowSvc, goalSvc, directory)

	if cfg.RunSeed {
		if err := db.Seed(ctx, st.identity, workflowSvc, cfg); err != nil {
			app.Close()
			return nil, err
		}
	}

	jobSvc := jobs.New(st.runs)
	jobSvc.Start(bg)
	reminders := jobs.NewReminders(workflowSvc, directory, notifier)
	jobSvc.Every(bg, jobs.JobOverdueReminders, cfg.ReminderInterval, reminders.Run)
	retention := jobs.NewRetention(st.purgeInbox, st.purgeAudit, cfg.NotificationRetention, cfg.AuditRetention)
	jobSvc.Every(bg, jobs.JobRetention, 24*time.Hour, retention.Run)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(app.Metrics))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(tokens, directory))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(app.Metrics.Snapshot()); err != nil {
				slog.Warn("metrics encode failed", "err", err)
			}
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)
			reviewshandler.NewHandler(workflowSvc, reportSvc, st.keys).RegisterRoutes(r)
			goalshandler.NewHandler(goalSvc, kpiSvc, st.keys).RegisterRoutes(r)
			orghandler.NewHandler(orgSvc).RegisterRoutes(r)
			reportshandler.NewHandler(reportSvc, jobSvc, reminders, retention).RegisterRoutes(r)
			notificationshandler.NewHandler(notifier).RegisterRoutes(r)
			audithandler.NewHandler(auditor).RegisterRoutes(r)
		})
	})

	app.Router = router
	return app, nil
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
