package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath            string
	Port              string
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	CacheEnabled      bool
	CacheTTL          time.Duration
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m", printEnv))
	if err != nil {
		cacheTTL = 5 * time.Minute
	}

	conf := &Config{
		DBPath:            getEnv("DB_PATH", "freya.db", printEnv),
		Port:              getEnv("PORT", "8080", printEnv),
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
		CacheEnabled:      getEnv("CACHE_ENABLED", "true", printEnv) == "true",
		CacheTTL:          cacheTTL,
	}

	return conf, nil
}
