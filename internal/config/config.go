// Package config reads the environment into one flat struct. The skill
// is configured only through SKILL_* variables (plus an optional .env
// loaded by the CLI).
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	TLSCertFile string
	TLSKeyFile  string

	JWTSecret string

	DocflowBaseURL    string
	DocflowUsername   string
	DocflowPassword   string
	DocflowTimeoutSec int

	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	PromptDir string

	CacheDBPath     string
	CacheMaxEntries int

	RefreshSchedule string
}

func FromEnv() Config {
	return Config{
		Environment: stringOrDefault("SKILL_ENV", "development"),
		HTTPAddr:    stringOrDefault("SKILL_HTTP_ADDR", ":3000"),
		TLSCertFile: strings.TrimSpace(os.Getenv("SKILL_TLS_CERT_FILE")),
		TLSKeyFile:  strings.TrimSpace(os.Getenv("SKILL_TLS_KEY_FILE")),

		JWTSecret: stringOrDefault("SKILL_JWT_SECRET", "secret"),

		DocflowBaseURL:    strings.TrimSpace(os.Getenv("SKILL_DOCFLOW_BASE_URL")),
		DocflowUsername:   strings.TrimSpace(os.Getenv("SKILL_DOCFLOW_USERNAME")),
		DocflowPassword:   os.Getenv("SKILL_DOCFLOW_PASSWORD"),
		DocflowTimeoutSec: intOrDefault("SKILL_DOCFLOW_TIMEOUT_SECONDS", 5),

		LLMBaseURL:    strings.TrimSpace(os.Getenv("SKILL_LLM_BASE_URL")),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("SKILL_LLM_API_KEY")),
		LLMModel:      stringOrDefault("SKILL_LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec: intOrDefault("SKILL_LLM_TIMEOUT_SECONDS", 10),

		PromptDir: strings.TrimSpace(os.Getenv("SKILL_PROMPT_DIR")),

		CacheDBPath:     strings.TrimSpace(os.Getenv("SKILL_CACHE_DB_PATH")),
		CacheMaxEntries: intOrDefault("SKILL_CACHE_MAX_ENTRIES", 512),

		RefreshSchedule: stringOrDefault("SKILL_REFRESH_SCHEDULE", "*/10 * * * *"),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
