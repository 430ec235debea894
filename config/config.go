package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string
	DBDriver     string
	RedisURL     string
	JWTSecret    string
	SendgridKey  string
	SendgridFrom string

	QueryTimeout    time.Duration
	NotifyTimeout   time.Duration
	PointsRetention time.Duration
	SessionTTL      time.Duration
	CodeTTL         time.Duration
}

// Database drivers
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// New sets up all config related services
func New() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	env := getEnv("ENV", "production")
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: getEnv("DB_NAME", "urbanfix"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         getEnv("PORT", "8080"),
		Env:          env,
		DBDriver:     getEnv("DB_DRIVER", DriverMongo),
		RedisURL:     os.Getenv("REDIS_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SendgridKey:  os.Getenv("SENDGRID_API_KEY"),
		SendgridFrom: getEnv("SENDGRID_FROM", "no-reply@urbanfix.app"),

		QueryTimeout:    getDuration("QUERY_TIMEOUT", 10*time.Second),
		NotifyTimeout:   getDuration("NOTIFY_TIMEOUT", 5*time.Second),
		PointsRetention: getDuration("POINTS_RETENTION", 365*24*time.Hour),
		SessionTTL:      getDuration("SESSION_TTL", 30*24*time.Hour),
		CodeTTL:         getDuration("CODE_TTL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		zap.S().Warnw("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New(http.StatusText(httpStatusCode))
	}
	if httpStatusCode >= http.StatusInternalServerError {
		zap.S().With(zap.Error(err)).Error(message)
	} else {
		zap.S().Debugw(message, "status", httpStatusCode, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: err.Error()},
	})
}
