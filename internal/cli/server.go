package cli

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

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/auth"
	"company-quiz-service/internal/config"
	"company-quiz-service/internal/infra/memory"
	"company-quiz-service/internal/infra/postgres"
	rediscache "company-quiz-service/internal/infra/redis"
	transport "company-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends holds the stores selected by configuration. Without postgres the
// service runs on in-memory stores; without redis the result cache is in-memory.
type backends struct {
	catalog app.QuizCatalog
	ledger  app.ParticipationLedger
	authz   app.Authorizer
	cache   app.ResultCache
	close   func()
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{close: func() {}}
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.catalog = postgres.NewCatalog(pool)
		b.ledger = postgres.NewLedger(pool)
		b.authz = postgres.NewDirectory(pool)
		b.close = pool.Close
	} else {
		logger.Warn("postgres url not configured, using in-memory stores")
		dir := memory.NewDirectory()
		catalog := memory.NewCatalog(dir)
		b.catalog = catalog
		b.ledger = memory.NewLedger(catalog, dir)
		b.authz = dir
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := rediscache.NewResultCache(client)
		if err := cache.Ping(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.cache = cache
		b.catalog = rediscache.NewCachedCatalog(client, b.catalog, quizTTL)
		closePG := b.close
		b.close = func() {
			_ = client.Close()
			closePG()
		}
	} else {
		b.cache = memory.NewResultCache()
		b.catalog = memory.NewCachedCatalog(b.catalog, quizTTL)
	}
	return b, nil
}

// newHTTPServer leaves the router's request timeout room to write its 503
// before the connection deadline fires.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: transport.RequestTimeout + 5*time.Second,
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret not configured")
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	resultTTL := config.TTLDuration(cfg.Redis.TTL, app.DefaultResultTTL)
	projector := app.NewResultProjector(b.cache, resultTTL, logger.With(slog.String("component", "projector")))
	feed := app.NewResultsFeed()

	router := transport.NewRouter(transport.Services{
		Quiz:      app.NewQuizService(b.catalog, b.ledger, b.authz, projector, feed, logger),
		Catalog:   app.NewCatalogService(b.catalog, b.authz),
		Analytics: app.NewAnalyticsService(b.catalog, b.ledger, b.authz),
		Export:    app.NewExportService(b.cache, b.authz),
	}, auth.NewService(cfg.Auth.JWTSecret), logger)

	server := newHTTPServer(":"+finalPort, router)

	go func() {
		logger.Info("starting quiz service", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", slog.String("err", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
