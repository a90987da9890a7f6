package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"resume-uploads/internal/events"
	"resume-uploads/internal/resumes"
	"resume-uploads/internal/services/health"
	"resume-uploads/internal/shared/auth"
	"resume-uploads/internal/shared/config"
	"resume-uploads/internal/shared/server"
	"resume-uploads/internal/shared/server/middleware"
	"resume-uploads/internal/shared/storage/blob"
	azurestore "resume-uploads/internal/shared/storage/blob/azure"
	localstore "resume-uploads/internal/shared/storage/blob/local"
	miniostore "resume-uploads/internal/shared/storage/blob/minio"
	s3store "resume-uploads/internal/shared/storage/blob/s3"
	"resume-uploads/internal/shared/storage/cache"
	"resume-uploads/internal/shared/storage/db"
	"resume-uploads/internal/shared/storage/docdb"
	"resume-uploads/internal/shared/telemetry"
)

// App holds the process-wide handles. Everything is built once and injected.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Mongo         *mongo.Client
	Redis         *redis.Client
	Store         blob.Store
	Repo          resumes.Repo
	Events        events.Publisher
	Health        *health.Service
	Verifier      *auth.Verifier
	ResumeService *resumes.Service
	ResumeHandler *resumes.Handler

	closers []func() error
}

// Build constructs every dependency from cfg and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for backend dials.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = resumes.DefaultMaxBytes
	}

	app := &App{Config: cfg, Health: health.NewService()}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, !cfg.IsDevLike())
	if err != nil {
		return nil, err
	}
	app.Verifier = verifier

	steps := []func(context.Context, *App) error{
		buildRepo,
		buildStore,
		buildRateStore,
		buildEvents,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	app.ResumeService = &resumes.Service{
		Store:          app.Store,
		Repo:           app.Repo,
		Validator:      resumes.Validator{MaxBytes: cfg.MaxFileSize},
		Events:         app.Events,
		CleanupOrphans: cfg.CleanupOrphans,
	}
	app.ResumeHandler = resumes.NewHandler(app.ResumeService)

	var rateStore middleware.WindowStore
	if app.Redis != nil {
		rateStore = cache.NewWindowStore(app.Redis)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		ResumeHandler: app.ResumeHandler,
		Health:        app.Health,
		Verifier:      app.Verifier,
		RateStore:     rateStore,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"metadata":     metadataBackend(app),
		"events":       cfg.EventsBackend,
		"shared_limit": app.Redis != nil,
	})
	return app, nil
}

// Close releases backend connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// buildRepo prefers MongoDB when MONGO_URI is set, then Postgres, and falls
// back to memory only in dev-like environments.
func buildRepo(ctx context.Context, app *App) error {
	cfg := app.Config

	if strings.TrimSpace(cfg.MongoURI) != "" {
		client, database, err := docdb.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return devFallback(app, "mongo", err)
		}
		app.Mongo = client
		app.onClose(func() error { return client.Disconnect(context.Background()) })

		repo := resumes.NewMongoRepo(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo_indexes_failed", map[string]any{"error": err.Error()})
		}
		app.Repo = repo
		app.Health.Register("mongo", func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
		return nil
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "no DATABASE_URL or MONGO_URI"})
			app.Repo = resumes.NewMemoryRepo()
			return nil
		}
		return fmt.Errorf("DATABASE_URL or MONGO_URI is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err == nil {
			app.onClose(sqlDB.Close)
		}
	}
	if err != nil {
		return devFallback(app, "postgres", err)
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	app.DB = sqlDB
	app.Repo = &resumes.PGRepo{DB: sqlDB}
	app.Health.Register("database", func(ctx context.Context) error {
		return db.Ping(ctx, sqlDB, 0)
	})
	return nil
}

func devFallback(app *App, backend string, err error) error {
	if !app.Config.IsDevLike() {
		return fmt.Errorf("connect %s: %w", backend, err)
	}
	telemetry.Warn("bootstrap.memory_repo", map[string]any{
		"reason":  backend + " unavailable",
		"error":   err.Error(),
		"backend": backend,
	})
	app.Repo = resumes.NewMemoryRepo()
	return nil
}

func buildStore(ctx context.Context, app *App) error {
	cfg := app.Config

	var (
		store blob.Store
		err   error
	)
	switch cfg.ObjectStoreType {
	case "s3":
		store, err = s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "azure":
		store, err = azurestore.New(ctx, cfg.AzureConnString, cfg.ContainerName)
	case "minio":
		store, err = miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.ContainerName,
			Region:    cfg.AWSRegion,
		})
	default:
		store = localstore.New(cfg.LocalStoreDir)
	}
	if err != nil {
		return fmt.Errorf("object store %s: %w", cfg.ObjectStoreType, err)
	}
	app.Store = store
	return nil
}

// buildRateStore connects Redis when configured. A dev instance without
// Redis keeps the per-process limiter.
func buildRateStore(ctx context.Context, app *App) error {
	cfg := app.Config
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	client, err := cache.Open(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err.Error()})
			return nil
		}
		return err
	}
	app.Redis = client
	app.onClose(client.Close)
	app.Health.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return nil
}

func buildEvents(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.EventsBackend {
	case "sqs":
		pub, err := events.NewSQSPublisher(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
		if err != nil {
			return err
		}
		app.Events = pub
	case "rabbitmq":
		pub, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		app.Events = pub
		app.onClose(pub.Close)
	default:
		app.Events = events.Nop{}
	}
	return nil
}

func metadataBackend(app *App) string {
	switch {
	case app.Mongo != nil:
		return "mongo"
	case app.DB != nil:
		return "postgres"
	default:
		return "memory"
	}
}
