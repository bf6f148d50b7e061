package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	STT       STTConfig
	Embedding EmbeddingConfig
	Grading   GradingConfig
	Questions QuestionsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string // default: "whisper-1"
	LocalBaseURL  string // default: "http://localhost:8178"
	Language      string // "" = auto-detect
}

type EmbeddingConfig struct {
	Backend       string // "openai" or "ollama"
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaURL     string
	Model         string // default: "all-minilm" (384-dim)
	Dimension     int
}

type GradingConfig struct {
	ThresholdPercent float64 // default pass threshold, overridable per attempt
	MaxDurationSec   float64 // upper bound on requested recording length
}

type QuestionsConfig struct {
	Source   string // "file" or "postgres"
	FilePath string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dim, err := getEnvInt("EMBEDDING_DIMENSION", 384)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIMENSION: %w", err)
	}

	threshold, err := getEnvFloat("GRADING_THRESHOLD_PERCENT", 65)
	if err != nil {
		return nil, fmt.Errorf("invalid GRADING_THRESHOLD_PERCENT: %w", err)
	}

	maxDuration, err := getEnvFloat("GRADING_MAX_DURATION_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid GRADING_MAX_DURATION_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "local"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			Model:         getEnv("STT_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
			Language:      getEnv("STT_LANGUAGE", ""),
		},
		Embedding: EmbeddingConfig{
			Backend:       getEnv("EMBEDDING_BACKEND", "ollama"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("EMBEDDING_OPENAI_BASE_URL", ""),
			OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:         getEnv("EMBEDDING_MODEL", "all-minilm"),
			Dimension:     dim,
		},
		Grading: GradingConfig{
			ThresholdPercent: threshold,
			MaxDurationSec:   maxDuration,
		},
		Questions: QuestionsConfig{
			Source:   getEnv("QUESTIONS_SOURCE", "file"),
			FilePath: getEnv("QUESTIONS_FILE", "questions.json"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Questions.Source == "postgres" && c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.STT.Backend == "openai" && c.STT.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
