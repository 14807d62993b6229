package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	LLMProvider string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIGenModel   string
	OpenAIEmbedModel string

	QdrantURL        string
	QdrantCollection string

	PostgresDSN string

	ChunkSize    int
	ChunkOverlap int

	RetrievalTopK      int
	RetrievalOverfetch int

	CoverageQuestionCount int
	CoveragePoolCeiling   int
	DiversityCapSlack     int

	GenerateMaxConcurrent  int
	GenerateTimeoutSeconds int
	GenerateMaxTokens      int
	GenerateTemperature    float64
	LLMTimeoutSeconds      int
	LLMRequestsPerSecond   float64

	RetryMaxAttempts      int
	RetryInitialBackoffMS int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		LLMProvider: mustEnv("LLM_PROVIDER", "ollama"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		OpenAIAPIKey:     mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    mustEnv("OPENAI_BASE_URL", ""),
		OpenAIGenModel:   mustEnv("OPENAI_GEN_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel: mustEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: mustEnv("QDRANT_COLLECTION", "reference_chunks"),

		// Empty DSN disables the topic-confidence source; coverage
		// generation then ignores focus_on_uncertain.
		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 900),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 150),

		RetrievalTopK:      mustEnvInt("RETRIEVAL_TOP_K", 5),
		RetrievalOverfetch: mustEnvInt("RETRIEVAL_OVERFETCH", 3),

		CoverageQuestionCount: mustEnvInt("COVERAGE_QUESTION_COUNT", 10),
		CoveragePoolCeiling:   mustEnvInt("COVERAGE_POOL_CEILING", 80),
		DiversityCapSlack:     mustEnvInt("DIVERSITY_CAP_SLACK", 0),

		GenerateMaxConcurrent:  mustEnvInt("GENERATE_MAX_CONCURRENT", 4),
		GenerateTimeoutSeconds: mustEnvInt("GENERATE_TIMEOUT_SECONDS", 60),
		GenerateMaxTokens:      mustEnvInt("GENERATE_MAX_TOKENS", 1024),
		GenerateTemperature:    mustEnvFloat("GENERATE_TEMPERATURE", 0.7),
		LLMTimeoutSeconds:      mustEnvInt("LLM_TIMEOUT_SECONDS", 120),
		LLMRequestsPerSecond:   mustEnvFloat("LLM_REQUESTS_PER_SECOND", 2.0),

		RetryMaxAttempts:      mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoffMS: mustEnvInt("RETRY_INITIAL_BACKOFF_MS", 200),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
