package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"theatre-billing/internal/audit"
	"theatre-billing/internal/auth"
	statementapp "theatre-billing/internal/billing/application"
	billing "theatre-billing/internal/billing/domain"
	"theatre-billing/internal/billing/infrastructure/catalog"
	"theatre-billing/internal/billing/infrastructure/memory"
	billingpostgres "theatre-billing/internal/billing/infrastructure/postgres"
	billinginterfaces "theatre-billing/internal/billing/interfaces"
	"theatre-billing/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := loadConfig()
	if err != nil {
		logger.WithError(err).Fatal("config error")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, keeping info")
	}

	var (
		db          *sql.DB
		repo        billing.Repository
		auditLogger audit.Logger
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("db open error")
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)

		if err := db.Ping(); err != nil {
			logger.WithError(err).Fatal("db ping error")
		}
		repo = billingpostgres.NewStatementRepository(db)
		auditLogger = audit.NewRepository(db)
	} else {
		logger.Warn("no DATABASE_URL, statements are kept in memory")
		repo = memory.NewStatementRepository()
		auditLogger = audit.NewFieldLogger(logger.WithField("component", "audit"))
	}

	metrics.Init(db, logger)

	plays, err := catalog.NewFileCatalog(cfg.CatalogPath, logger.WithField("component", "catalog"))
	if err != nil {
		logger.WithError(err).WithField("path", cfg.CatalogPath).Fatal("catalog load error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.CatalogReloadInterval > 0 {
		go plays.Watch(ctx, cfg.CatalogReloadInterval)
	}

	statementService, err := statementapp.NewStatementService(plays, repo,
		statementapp.WithCurrency(cfg.Currency),
		statementapp.WithDefaultTenant(cfg.TenantID),
	)
	if err != nil {
		logger.WithError(err).Fatal("statement service error")
	}
	statementHandler, err := billinginterfaces.NewStatementHandler(statementService, auditLogger, logger.WithField("component", "statements"))
	if err != nil {
		logger.WithError(err).Fatal("statement handler error")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/statements", statementHandler)
	mux.Handle("/api/v1/statements/", statementHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(mux)
	} else {
		logger.Warn("AUTH_JWT_SECRET not set, authentication disabled")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown error")
		}
	}()

	logger.WithField("addr", cfg.HTTPAddr).Info("http listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("http server error")
	}
}

func loggingMiddleware(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   resp.status,
			"duration": time.Since(start).String(),
		}).Info("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
