package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	AnnotationStorePostgres = "postgres"
	AnnotationStoreUpstream = "upstream"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Upstream   UpstreamConfig
	Assist     AssistConfig
	Auth       AuthConfig
	Annotation AnnotationConfig
	Telemetry  TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ChangeTopic        string // in-process annotation change topic
	DebugRoutes        bool
}

type DatabaseConfig struct {
	Connection string
}

// UpstreamConfig points at the learning API that explains text and owns the
// concept graph and mastery data.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AssistConfig struct {
	RequestTimeout time.Duration
	HostIdleTTL    time.Duration
	GraphIdleTTL   time.Duration
	ActivityTTL    time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type AnnotationConfig struct {
	Store    string // "postgres" or "upstream"
	CacheTTL time.Duration
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ChangeTopic:        getEnv("ANNOTATION_CHANGE_TOPIC", "ANNOTATION_CHANGED"),
			DebugRoutes:        getEnvAsBool("DEBUG_ROUTES", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("LEARNING_API_BASE_URL", "http://localhost:8000/api"),
			Timeout: getEnvAsDuration("LEARNING_API_TIMEOUT", 35*time.Second),
		},
		Assist: AssistConfig{
			RequestTimeout: getEnvAsDuration("ASSIST_REQUEST_TIMEOUT", 30*time.Second),
			HostIdleTTL:    getEnvAsDuration("ASSIST_HOST_IDLE_TTL", 30*time.Minute),
			GraphIdleTTL:   getEnvAsDuration("GRAPH_VIEW_IDLE_TTL", 30*time.Minute),
			ActivityTTL:    getEnvAsDuration("ACTIVITY_FEED_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Annotation: AnnotationConfig{
			Store:    getEnv("ANNOTATION_STORE", AnnotationStorePostgres),
			CacheTTL: getEnvAsDuration("ANNOTATION_CACHE_TTL", 5*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-study-assist-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") or whole seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
