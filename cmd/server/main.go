package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helloauslan/auslan-server/internal/api"
	"github.com/helloauslan/auslan-server/internal/metrics"
	"github.com/helloauslan/auslan-server/pkg/catalog"
	catalogpg "github.com/helloauslan/auslan-server/pkg/catalog/repo/postgres"
	s3storage "github.com/helloauslan/auslan-server/pkg/catalog/storage/s3"
	"github.com/helloauslan/auslan-server/pkg/stats"
	statspg "github.com/helloauslan/auslan-server/pkg/stats/repo/postgres"
)

type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// CORSOrigins is a comma-separated allow list; "*" during development.
	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	// Stats endpoints are rate limited per client IP.
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" env-default:"5"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"10s"`

	DB DbConfig
	S3 S3Config
}

type DbConfig struct {
	Port     uint16 `env:"DB_PORT" env-default:"5432"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Name     string `env:"DB_NAME" env-default:"auslan_db"`
	User     string `env:"DB_USER" env-default:"auslan"`
	Password string `env:"DB_PASS" env-default:"pwd"`
}

type S3Config struct {
	Region          string `env:"AWS_REGION" env-default:"us-east-1"`
	Bucket          string `env:"S3_BUCKET"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"S3_ENDPOINT"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func NewDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	if config.S3.Bucket == "" {
		slog.Error("S3_BUCKET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := NewDbPool(ctx, config.DB)
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	store, err := s3storage.New(s3storage.Config{
		Region:          config.S3.Region,
		Bucket:          config.S3.Bucket,
		AccessKeyID:     config.S3.AccessKeyID,
		SecretAccessKey: config.S3.SecretAccessKey,
		Endpoint:        config.S3.Endpoint,
		UsePathStyle:    config.S3.UsePathStyle,
	})
	if err != nil {
		slog.Error("Failed to initialize S3 backend", "err", err)
		os.Exit(1)
	}

	videoRepo := catalogpg.NewWithPool(dbPool)
	statsRepo := statspg.NewWithPool(dbPool)

	ingestor := catalog.NewIngestor(store, videoRepo, config.S3.Bucket, slog.Default())
	statsSvc := stats.NewService(statsRepo)
	m := metrics.New()

	adminHandler := api.NewAdminHandler(ingestor, store, m)
	videosHandler := api.NewVideosHandler(videoRepo, store)
	statsHandler := api.NewStatsHandler(statsSvc)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: strings.Split(config.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Mount("/admin", adminHandler.Routes())
	r.Mount("/videos", videosHandler.Routes())
	r.Mount("/collections", videosHandler.CollectionRoutes())

	// Stats routes carry a per-IP rate limit.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(config.RateLimitRequests, config.RateLimitWindow))
		r.Mount("/", statsHandler.Routes())
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Server starting",
			"port", config.Port,
			"env", config.Environment,
			"bucket", config.S3.Bucket)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
