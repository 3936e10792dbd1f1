package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"campus/internal/auth/guard"
	"campus/internal/auth/handler"
	"campus/internal/auth/metrics"
	"campus/internal/auth/service"
	"campus/internal/auth/session"
	userstore "campus/internal/auth/store/user"
	jwttoken "campus/internal/jwt_token"
	"campus/internal/platform/config"
	"campus/internal/platform/database"
	"campus/internal/platform/health"
	"campus/internal/platform/logger"
	"campus/internal/portal"
	"campus/internal/seeder"
	httptransport "campus/internal/transport/http"
	"campus/migrations"
	audit "campus/pkg/platform/audit"
	"campus/pkg/platform/audit/publisher"
	auditmemory "campus/pkg/platform/audit/store/memory"
	auditpg "campus/pkg/platform/audit/store/postgres"
	"campus/pkg/platform/middleware/metadata"
	"campus/pkg/platform/middleware/request"
	"campus/pkg/platform/privacy"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type stores struct {
	users service.UserStore
	audit audit.Store
	pool  *database.Pool
}

// openStores picks Postgres when DATABASE_URL is set and in-memory otherwise.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		return &stores{
			users: userstore.NewInMemoryUserStore(),
			audit: auditmemory.NewInMemoryStore(),
		}, nil
	}
	if err := migrations.Up(ctx, pool.DB()); err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on migrate failure
		return nil, err
	}
	log.Info("connected to postgres", "max_open_conns", dbCfg.MaxOpenConns)
	return &stores{
		users: userstore.NewPostgres(pool.DB()),
		audit: auditpg.New(pool.DB()),
		pool:  pool,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing campus auth",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"session_transport", cfg.SessionTransport,
	)
	if cfg.GeneratedKey {
		log.Warn("JWT_SIGNING_KEY not set, using a random key; sessions will not survive a restart")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.pool != nil {
		defer st.pool.Close() //nolint:errcheck
	}

	auditPublisher := publisher.NewPublisher(st.audit,
		publisher.WithAsyncBuffer(1024),
		publisher.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.New(registry)

	codec := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionTTL)
	transport := session.NewTransport(session.Config{
		Mode:       cfg.SessionTransport,
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.Production(),
	})

	authService := service.New(st.users, codec,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(authMetrics),
	)

	if cfg.SeedAdminEmail != "" {
		res, err := seeder.New(st.users, auditPublisher, log).SeedAdmin(ctx, seeder.Admin{
			Email:    cfg.SeedAdminEmail,
			Password: cfg.SeedAdminPassword,
		})
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if res.GeneratedPassword != "" {
			// Shown once; the account must change it at first login.
			log.Warn("seed admin created with generated password",
				"email", privacy.MaskEmail(cfg.SeedAdminEmail),
				"password", res.GeneratedPassword,
			)
		}
	}

	guardCfg := guard.DefaultConfig()
	routeGuard := guard.New(guardCfg, codec, transport,
		guard.WithLogger(log),
		guard.WithMetrics(authMetrics),
		guard.WithAuditPublisher(auditPublisher),
	)
	prefixes := make([]string, 0, len(guardCfg.Areas))
	for _, a := range guardCfg.Areas {
		prefixes = append(prefixes, a.Prefix)
	}

	pages, err := portal.New(cfg.UIUpstreamURL, log)
	if err != nil {
		return err
	}

	healthHandler := health.New(cfg.Environment)
	if st.pool != nil {
		healthHandler.RegisterCheck("database", st.pool.Health)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:          log,
		API:             handler.New(authService, transport, codec, log),
		Health:          healthHandler,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Guard:           routeGuard.Middleware,
		GuardedPrefixes: prefixes,
		Pages:           pages,
		PublicPages:     []string{"/", guardCfg.LoginPath},
		Metadata:        metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.TrustedProxies}),
		RequestMetrics:  request.NewMetrics(registry),
		RequestTimeout:  cfg.RequestTimeout,
		MaxBodyBytes:    cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
