package cmd

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string

	LMSBaseURL       string
	LMSAPIKey        string
	LMSTimeout       time.Duration
	LMSRetryAttempts int
	LMSRetryDelay    time.Duration
	LMSRetrySchedule string
	LMSRetryMax      int

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTELEndpoint string
	OTELInsecure bool

	HandoverSLA   time.Duration
	SnowflakeNode int64
}

// DSN is the libpq connection string for the configured database.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

// LoadConfig reads .env when present and then the process environment.
// Malformed numbers fall back to the default with a warning.
func LoadConfig(path string, logger *slog.Logger) Config {
	if err := godotenv.Load(path); err != nil {
		logger.Warn("No .env file loaded, using process environment", "path", path, "error", err)
	}

	env := envReader{logger: logger}
	return Config{
		HTTPPort:   env.readString("HTTP_PORT", "8080"),
		DBHost:     env.readString("DB_HOST", "localhost"),
		DBPort:     env.readString("DB_PORT", "5432"),
		DBUser:     env.readString("DB_USER", "postgres"),
		DBPassword: env.readString("DB_PASSWORD", ""),
		DBName:     env.readString("DB_NAME", "fulfillment"),
		DBSslMode:  env.readString("DB_SSLMODE", "disable"),

		JWTSecret: env.readString("JWT_SECRET", ""),

		LMSBaseURL:       env.readString("LMS_BASE_URL", ""),
		LMSAPIKey:        env.readString("LMS_API_KEY", ""),
		LMSTimeout:       env.readMillis("LMS_TIMEOUT", 30*time.Second),
		LMSRetryAttempts: env.readInt("LMS_RETRY_ATTEMPTS", 3),
		LMSRetryDelay:    env.readMillis("LMS_RETRY_DELAY", time.Second),
		LMSRetrySchedule: env.readString("LMS_RETRY_SCHEDULE", "*/30 * * * * *"),
		LMSRetryMax:      env.readInt("LMS_RETRY_MAX", 10),

		MinIOEndpoint:  env.readString("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: env.readString("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: env.readString("MINIO_SECRET_KEY", ""),
		MinIOBucket:    env.readString("MINIO_BUCKET", "packing-photos"),
		MinIOUseSSL:    env.readBool("MINIO_USE_SSL", false),
		MinIOPublicURL: env.readString("MINIO_PUBLIC_URL", ""),

		RedisAddr:     env.readString("REDIS_ADDR", ""),
		RedisPassword: env.readString("REDIS_PASSWORD", ""),
		RedisDB:       env.readInt("REDIS_DB", 0),

		OTELEndpoint: env.readString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure: env.readBool("OTEL_EXPORTER_OTLP_INSECURE", false),

		HandoverSLA:   time.Duration(env.readInt("HANDOVER_SLA_MINUTES", 60)) * time.Minute,
		SnowflakeNode: int64(env.readInt("SNOWFLAKE_NODE", 1)),
	}
}

type envReader struct {
	logger *slog.Logger
}

func (r envReader) readString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r envReader) readInt(key string, def int) int {
	raw := r.readString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.logger.Warn("Invalid integer in environment, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

func (r envReader) readBool(key string, def bool) bool {
	raw := r.readString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.logger.Warn("Invalid boolean in environment, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

// readMillis accepts a Go duration ("30s") or a bare number of milliseconds.
func (r envReader) readMillis(key string, def time.Duration) time.Duration {
	raw := r.readString(key, "")
	if raw == "" {
		return def
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.logger.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return d
}
