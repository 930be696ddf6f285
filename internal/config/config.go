package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from .env and environment variables.
type Config struct {
	DatasetPath       string
	UsersPath         string
	StoreKind         string
	StorePath         string
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	MaxInvalidAnswers int
}

func Load() Config {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	return Config{
		DatasetPath:       envOrDefault("QUIZ_DATASET", "data/questoes.json"),
		UsersPath:         envOrDefault("QUIZ_USERS", "data/users.json"),
		StoreKind:         strings.ToLower(envOrDefault("QUIZ_STORE", "sqlite")),
		StorePath:         envOrDefault("QUIZ_STORE_PATH", "quiz.db"),
		HTTPAddr:          envOrDefault("QUIZ_ADDR", ":8080"),
		LogLevel:          envOrDefault("QUIZ_LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("QUIZ_LOG_FORMAT", "console"),
		MaxInvalidAnswers: intOrDefault("QUIZ_MAX_INVALID_ANSWERS", 3),
	}
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
