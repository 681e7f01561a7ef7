package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           int
	Environment    string
	LogLevel       string
	AuditLogPath   string
	ContentPath    string
	Msisdn         string
	TestMode       bool
	ListenTimeout  time.Duration
	RevealDelay    time.Duration
	LookupBaseURL  string
	LookupAPIKey   string
	LookupTimeout  time.Duration
	LookupMaxRetry time.Duration
	UseMockLookup  bool
}

// Load reads the process environment. Callers load .env first.
func Load() Config {
	return Config{
		Port:           envInt("PORT", 8080),
		Environment:    envStr("ENVIRONMENT", "local"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		AuditLogPath:   envStr("AUDIT_LOG_PATH", "logs.txt"),
		ContentPath:    envStr("CONTENT_PATH", ""),
		Msisdn:         envStr("MSISDN", ""),
		TestMode:       envBool("TEST_MODE", false),
		ListenTimeout:  envMillis("LISTEN_TIMEOUT_MS", 0),
		RevealDelay:    envMillis("REVEAL_DELAY_MS", 20),
		LookupBaseURL:  envStr("LOOKUP_BASE_URL", "https://api.kinopoisk.dev/v1.4"),
		LookupAPIKey:   envStr("LOOKUP_API_KEY", ""),
		LookupTimeout:  envMillis("LOOKUP_TIMEOUT_MS", 12000),
		LookupMaxRetry: envMillis("LOOKUP_MAX_ELAPSED_MS", 12000),
		UseMockLookup:  envBool("USE_MOCK_LOOKUP", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func envMillis(key string, fallbackMs int) time.Duration {
	return time.Duration(envInt(key, fallbackMs)) * time.Millisecond
}
