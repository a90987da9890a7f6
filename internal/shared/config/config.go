package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resume-uploads/internal/shared/telemetry"
)

const (
	defaultMaxFileSize     = 5 << 20
	defaultRateLimitMax    = 100
	defaultRateLimitWindow = 15 * time.Minute
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	JWTSecret       string
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honored.
	// Empty trusts no proxy and keys clients on the socket address.
	TrustedProxies []string

	ObjectStoreType  string
	LocalStoreDir    string
	AzureConnString  string
	ContainerName    string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	SSEKMSKeyID      string
	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MaxFileSize      int64
	CleanupOrphans   bool

	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	RateLimitWindow time.Duration
	RateLimitMax    int

	EventsBackend    string
	SQSQueueURL      string
	RabbitMQURL      string
	RabbitMQExchange string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	mongoURI := os.Getenv("MONGO_URI")

	if env == "production" && dbURL == "" && mongoURI == "" {
		telemetry.Warn("config.missing_database", map[string]any{"env": env})
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TrustedProxies:   splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		AzureConnString:  getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
		ContainerName:    getEnv("RESUME_CONTAINER_NAME", "resumes"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", ""),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		MinIOEndpoint:    getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getBool("MINIO_USE_SSL", false),
		MaxFileSize:      getInt64("MAX_FILE_SIZE", defaultMaxFileSize),
		CleanupOrphans:   getBool("CLEANUP_ORPHANS", false),
		DatabaseURL:      dbURL,
		MongoURI:         mongoURI,
		MongoDatabase:    getEnv("MONGO_DATABASE", "resumes"),
		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow),
		RateLimitMax:     int(getInt64("RATE_LIMIT_MAX", defaultRateLimitMax)),
		EventsBackend:    normalizeEventsBackend(getEnv("EVENTS_BACKEND", "none")),
		SQSQueueURL:      getEnv("SQS_QUEUE_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "resumes"),
	}
}

// IsDevLike reports whether the environment allows dev conveniences such as guest identities.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "kind": "int", "error": err.Error()})
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "kind": "bool", "error": err.Error()})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "kind": "duration", "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "azure", "azblob":
		return "azure"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

func normalizeEventsBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqs":
		return "sqs"
	case "rabbitmq", "amqp":
		return "rabbitmq"
	default:
		return "none"
	}
}
