package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Tracker      TrackerConfig
	Classifier   ClassifierConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TrackerConfig controls the ticket status progression. Step is the
// length of one status step; TRACKER_STEP_MILLIS sets it in whole
// milliseconds and --step at any resolution.
type TrackerConfig struct {
	Step              time.Duration
	WidgetIdleSeconds int
}

// ClassifierConfig selects the routing table.
type ClassifierConfig struct {
	Fallback  bool
	RulesFile string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	stepMillis, err := strconv.Atoi(getEnv("TRACKER_STEP_MILLIS", "1000"))
	if err != nil || stepMillis <= 0 {
		return nil, fmt.Errorf("invalid TRACKER_STEP_MILLIS: %q", os.Getenv("TRACKER_STEP_MILLIS"))
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "campus-fixit"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracker: TrackerConfig{
			Step:              time.Duration(stepMillis) * time.Millisecond,
			WidgetIdleSeconds: getEnvAsInt("WIDGET_IDLE_TTL_SECONDS", 1800),
		},
		Classifier: ClassifierConfig{
			Fallback:  getEnvAsBool("CLASSIFIER_FALLBACK", true),
			RulesFile: os.Getenv("CLASSIFIER_RULES_FILE"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StepUnit is the length of one status step.
func (t TrackerConfig) StepUnit() time.Duration {
	return t.Step
}

// IdleTTL is how long an untouched widget is kept. Zero disables sweeping.
func (t TrackerConfig) IdleTTL() time.Duration {
	if t.WidgetIdleSeconds <= 0 {
		return 0
	}
	return time.Duration(t.WidgetIdleSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
