package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "staging"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the bot.
type Config struct {
	AppEnv     string
	LogLevel   logging.Level
	RosterPath string

	FotmobBaseURL             string
	FotmobTimeout             time.Duration
	FotmobMaxRetries          int
	FotmobCircuitEnabled      bool
	FotmobCircuitFailureCount int
	FotmobCircuitOpenTimeout  time.Duration

	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   int64

	ScanInterval        time.Duration
	PollInterval        time.Duration
	TrackingLead        time.Duration
	ReportMaxRetries    int
	ReportRetryInterval time.Duration
	ReportWorkers       int

	Hashtags string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	fotmobTimeout, err := getEnvAsDuration("FOTMOB_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_TIMEOUT: %w", err)
	}
	fotmobMaxRetries, err := getEnvAsInt("FOTMOB_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_MAX_RETRIES: %w", err)
	}
	fotmobCircuitEnabled, err := strconv.ParseBool(getEnv("FOTMOB_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_ENABLED: %w", err)
	}
	fotmobCircuitFailureCount, err := getEnvAsInt("FOTMOB_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	fotmobCircuitOpenTimeout, err := getEnvAsDuration("FOTMOB_CIRCUIT_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOTMOB_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}

	telegramEnabled, err := strconv.ParseBool(getEnv("TELEGRAM_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_ENABLED: %w", err)
	}
	telegramToken := strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", ""))
	telegramChatID, err := getEnvAsInt64("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
	}
	if telegramEnabled {
		if telegramToken == "" {
			return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED=true")
		}
		if telegramChatID == 0 {
			return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_ENABLED=true")
		}
	}

	scanInterval, err := getEnvAsDuration("SCAN_INTERVAL", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCAN_INTERVAL: %w", err)
	}
	pollInterval, err := getEnvAsDuration("POLL_INTERVAL", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_INTERVAL: %w", err)
	}
	trackingLead, err := getEnvAsDuration("TRACKING_LEAD", time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_LEAD: %w", err)
	}
	reportMaxRetries, err := getEnvAsInt("REPORT_MAX_RETRIES", 15)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_MAX_RETRIES: %w", err)
	}
	reportRetryInterval, err := getEnvAsDuration("REPORT_RETRY_INTERVAL", 20*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_RETRY_INTERVAL: %w", err)
	}
	reportWorkers, err := getEnvAsInt("REPORT_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPORT_WORKERS: %w", err)
	}

	return Config{
		AppEnv:                    appEnv,
		LogLevel:                  logLevel,
		RosterPath:                getEnv("ROSTER_PATH", "ids.json"),
		FotmobBaseURL:             strings.TrimRight(getEnv("FOTMOB_BASE_URL", ""), "/"),
		FotmobTimeout:             fotmobTimeout,
		FotmobMaxRetries:          fotmobMaxRetries,
		FotmobCircuitEnabled:      fotmobCircuitEnabled,
		FotmobCircuitFailureCount: fotmobCircuitFailureCount,
		FotmobCircuitOpenTimeout:  fotmobCircuitOpenTimeout,
		TelegramEnabled:           telegramEnabled,
		TelegramBotToken:          telegramToken,
		TelegramChatID:            telegramChatID,
		ScanInterval:              scanInterval,
		PollInterval:              pollInterval,
		TrackingLead:              trackingLead,
		ReportMaxRetries:          reportMaxRetries,
		ReportRetryInterval:       reportRetryInterval,
		ReportWorkers:             reportWorkers,
		Hashtags:                  getEnv("HASHTAGS", ""),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}
