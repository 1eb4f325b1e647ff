package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/internal/container"
	"github.com/oksasatya/agency-identity/internal/infrastructure/blob"
	"github.com/oksasatya/agency-identity/internal/infrastructure/captcha"
	"github.com/oksasatya/agency-identity/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/agency-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/agency-identity/internal/infrastructure/search"
	"github.com/oksasatya/agency-identity/internal/router"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/obs"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
	"github.com/oksasatya/agency-identity/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfigFrom(cfg))
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var metrics *obs.Metrics
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	// Rate limiter: Redis when reachable, otherwise per-process counters
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unavailable, rate limits are per process")
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb, cfg.AppName)
		}
	}

	blobs, closeBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}
	defer closeBlobs()
	if blobs == nil {
		logger.Warn("no storage bucket configured, avatar uploads disabled")
	}

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch: %v", err)
	}
	if es != nil {
		if err := helpers.PingES(ctx, es); err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, admin search falls back to SQL")
		}
		container.SetUserIndex(search.NewUserIndex(es, cfg.ESUsersIndex))
	}

	var verifier application.CaptchaVerifier = captcha.Noop{}
	if cfg.CaptchaEnabled {
		verifier = captcha.NewRecaptcha(cfg.RecaptchaSecret)
	}

	store := pginfra.NewStore(pool)
	audit := application.NewAuditLog(store.Audit(), logger, metrics, cfg.AuditBuffer)

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetStore(store)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTVerifySecret, cfg.AccessTTL, cfg.VerifyTTL))
	container.SetMetrics(metrics)
	container.SetLimiter(limiter)
	container.SetBlobStore(blobs)
	container.SetNotifier(notifier)
	container.SetCaptcha(verifier)
	container.SetAuditor(audit)

	r := router.NewEngine(cfg, metrics)
	reg := router.NewRegistry(r, logger)
	router.InitModules(reg, pool)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := audit.Close(ctxShutdown); err != nil {
		logger.WithError(err).Warn("audit log not fully flushed")
	}
	logger.Info("server exited properly")
}

// newBlobStore returns a nil store when no bucket is configured; avatar
// uploads then fail with an internal error.
func newBlobStore(ctx context.Context, cfg *config.Config) (application.BlobStore, func(), error) {
	switch cfg.StorageDriver {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, func() {}, nil
		}
		s, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() {}, nil
	case "gcs", "":
		if cfg.GCSBucket == "" {
			return nil, func() {}, nil
		}
		client, err := blob.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, func() {}, err
		}
		return blob.NewGCSStore(client, cfg.GCSBucket), func() { _ = client.Close() }, nil
	}
	return nil, func() {}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

// newNotifier publishes to RabbitMQ when mail sending is on and the broker
// answers; otherwise notifications are only logged.
func newNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, func()) {
	if !cfg.MailSendEnabled || cfg.RabbitMQURL == "" {
		return notify.NewLogNotifier(logger), func() {}
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, notifications will only be logged")
		return notify.NewLogNotifier(logger), func() {}
	}
	return notify.NewQueueNotifier(pub), pub.Close
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
