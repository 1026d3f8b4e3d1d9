package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	VectorStoreMemory = "memory"
	VectorStoreQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	VectorSize         int
	VectorStore        string
	MemoryStorePath    string // empty keeps the chromem store in memory only
	QdrantURL          string
	QdrantAPIKey       string
	QdrantUseTLS       bool
	DBPath             string
	APIPort            string
	EmbedConcurrency   int
	SkipDirs           []string // directory names the indexer does not descend into, besides .git
	LogLevel           slog.Level
	LogFormat          string // "text" or "json"
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is loaded.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", os.Getenv("LLM_API_KEY")),
		VectorStore:        strings.ToLower(getEnv("VECTOR_STORE", VectorStoreMemory)),
		MemoryStorePath:    getEnv("MEMORY_STORE_PATH", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		DBPath:             getEnv("DB_PATH", "./data/codebase-ai.db"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// VECTOR_SIZE must match the output size of the embeddings model.
	// Changing it requires recreating the collection.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	concurrency, err := strconv.Atoi(getEnv("EMBED_CONCURRENCY", "1"))
	if err != nil {
		return nil, fmt.Errorf("EMBED_CONCURRENCY must be a valid integer: %w", err)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("EMBED_CONCURRENCY must be at least 1")
	}
	cfg.EmbedConcurrency = concurrency

	cfg.SkipDirs = splitList(getEnv("INDEX_SKIP_DIRS", ""))

	useTLS, err := strconv.ParseBool(getEnv("QDRANT_USE_TLS", "false"))
	if err != nil {
		return nil, fmt.Errorf("QDRANT_USE_TLS must be a boolean: %w", err)
	}
	cfg.QdrantUseTLS = useTLS

	switch cfg.VectorStore {
	case VectorStoreMemory, VectorStoreQdrant:
	default:
		return nil, fmt.Errorf("VECTOR_STORE must be %q or %q, got %q", VectorStoreMemory, VectorStoreQdrant, cfg.VectorStore)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Create the data directory for the ledger database
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory, then the nearest .env in a parent directory.
// Missing files are ignored.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
