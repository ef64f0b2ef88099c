// README: Config loader with env defaults for HTTP, Redis, Postgres and LLM settings.
package config

import (
	"os"
	"strconv"
	"time"
)

// LLMConfig bounds the outbound model calls so a slow upstream cannot
// hang a conversation.
type LLMConfig struct {
	Model          string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	Redis struct {
		Addr string
	}
	DB struct {
		// DSN is optional; when empty the plan log is disabled.
		DSN string
	}
	AI struct {
		GeminiKey string
		LLM       LLMConfig
	}
	Maps struct {
		// APIKey is optional; when empty attraction hints are skipped.
		APIKey string
	}
	Session struct {
		TTL time.Duration
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("VOYAGO_HTTP_ADDR", ":8080")
	cfg.Redis.Addr = envOrDefault("VOYAGO_REDIS_ADDR", "localhost:6379")
	cfg.DB.DSN = os.Getenv("VOYAGO_DB_DSN")
	cfg.AI.GeminiKey = envOrError("GEMINI_API_KEY")
	cfg.AI.LLM.Model = envOrDefault("VOYAGO_LLM_MODEL", "gemini-2.0-flash")
	cfg.AI.LLM.ConnectTimeout = time.Duration(envOrDefaultInt("VOYAGO_LLM_CONNECT_TIMEOUT", 10)) * time.Second
	cfg.AI.LLM.ReadTimeout = time.Duration(envOrDefaultInt("VOYAGO_LLM_READ_TIMEOUT", 120)) * time.Second
	cfg.Maps.APIKey = os.Getenv("MAPS_API_KEY")
	cfg.Session.TTL = time.Duration(envOrDefaultInt("VOYAGO_SESSION_TTL_MIN", 30)) * time.Minute
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrError(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	panic("environment variable " + key + " is required")
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
