package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	GroqAPIKey           string
	GroqBaseURL          string
	GroqModel            string
	FlashcardsPerSession int
	QuestionsPerSession  int
	IngestWorkerCount    int
	IngestQueueSize      int
	GenerationTimeoutSec int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:studyflash.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:          envOr("GROQ_BASE_URL", ""),
		GroqModel:            envOr("GROQ_MODEL", ""),
		FlashcardsPerSession: envIntOr("FLASHCARDS_PER_SESSION", 10),
		QuestionsPerSession:  envIntOr("QUESTIONS_PER_SESSION", 5),
		IngestWorkerCount:    envIntOr("INGEST_WORKER_COUNT", 2),
		IngestQueueSize:      envIntOr("INGEST_QUEUE_SIZE", 64),
		GenerationTimeoutSec: envIntOr("GENERATION_TIMEOUT_SECONDS", 60),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}
	if c.GroqAPIKey == "" {
		problems = append(problems, "GROQ_API_KEY is required")
	}
	if c.FlashcardsPerSession <= 0 || c.FlashcardsPerSession > 50 {
		problems = append(problems, "FLASHCARDS_PER_SESSION must be between 1 and 50")
	}
	if c.QuestionsPerSession <= 0 || c.QuestionsPerSession > 50 {
		problems = append(problems, "QUESTIONS_PER_SESSION must be between 1 and 50")
	}
	if c.IngestWorkerCount <= 0 {
		problems = append(problems, "INGEST_WORKER_COUNT must be positive")
	}
	if c.IngestQueueSize <= 0 {
		problems = append(problems, "INGEST_QUEUE_SIZE must be positive")
	}
	if c.GenerationTimeoutSec <= 0 {
		problems = append(problems, "GENERATION_TIMEOUT_SECONDS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
