package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Prod  bool   `yaml:"prod"`
	Level string `yaml:"level"`
}

type ServerConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	AuthToken    string `yaml:"auth_token"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`
	RateLimit    bool   `yaml:"rate_limit"`
}

type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Dimension int    `yaml:"dimension"`
}

type IndexConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type QdrantConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	APIKey   string `yaml:"api_key"`
	UseTLS   bool   `yaml:"use_tls"`
	PoolSize int    `yaml:"pool_size"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// RequestsPerMinute throttles generation calls; 0 means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type RetrievalConfig struct {
	TopK    int           `yaml:"top_k"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	StatusTTL time.Duration `yaml:"status_ttl"`
}

type LessonsConfig struct {
	Dir string `yaml:"dir"`
}

type WorkerConfig struct {
	Buffer      int           `yaml:"buffer"`
	MaxWorkers  int64         `yaml:"max_workers"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	JobTimeout  time.Duration `yaml:"job_timeout"`
}

// Config is everything the api and mcp binaries need at startup.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Redis     RedisConfig     `yaml:"redis"`
	Lessons   LessonsConfig   `yaml:"lessons"`
	Workers   WorkerConfig    `yaml:"workers"`
}

func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "debug"},
		Server:    ServerConfig{ListenAddr: ServerListenAddr},
		Chunker:   ChunkerConfig{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap},
		Embedding: EmbeddingConfig{Provider: DefaultEmbeddingProvider, Model: DefaultEmbeddingModel, Dimension: DefaultEmbeddingDimension},
		Index:     IndexConfig{Backend: DefaultIndexBackend, Dir: DefaultIndexDir},
		Qdrant:    QdrantConfig{Host: QdrantHost, Port: QdrantGrpcPort, UseTLS: QdrantUseTLS, PoolSize: QdrantPoolSize},
		LLM: LLMConfig{
			Provider:    DefaultLLMProvider,
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			Temperature: ModelTemperature,
			Timeout:     GenerationTimeout,
		},
		Retrieval: RetrievalConfig{TopK: DefaultTopK, Timeout: RetrievalTimeout},
		Redis:     RedisConfig{Enabled: true, Addr: RedisAddr, DB: RedisStatusStore, StatusTTL: RedisStatusStoreTTL},
		Lessons:   LessonsConfig{Dir: DefaultLessonsDir},
		Workers:   WorkerConfig{Buffer: BufferLimit, MaxWorkers: MaxWorkerCount, IdleTimeout: IdleWorkerTimeout, JobTimeout: IndexJobTimeout},
	}
}

// Load resolves the config: defaults, then the yaml file at path (missing is fine),
// then a .env file in the working directory, then LESSONRAG_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
	}

	// .env only fills variables that are not already set in the process
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot read .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Chunker.Size <= 0 {
		return fmt.Errorf("chunker size must be positive, got %d", c.Chunker.Size)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("chunker overlap must be in [0,%d), got %d", c.Chunker.Size, c.Chunker.Overlap)
	}
	switch c.Embedding.Provider {
	case "hashing", "openai", "google":
	default:
		return fmt.Errorf("unsupported embedding provider: %q", c.Embedding.Provider)
	}
	switch c.Index.Backend {
	case "file", "qdrant":
	default:
		return fmt.Errorf("unsupported index backend: %q", c.Index.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Index.Dir == "" || c.Lessons.Dir == "" {
		return errors.New("index dir and lessons dir are required")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", ENV_PREFIX, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", ENV_PREFIX, key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", ENV_PREFIX, key, err))
				return
			}
			*dst = d
		}
	}

	flag("LOG_PROD", &cfg.Log.Prod)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LISTEN_ADDR", &cfg.Server.ListenAddr)
	str("AUTH_TOKEN", &cfg.Server.AuthToken)
	flag("NO_AUTH_BYPASS", &cfg.Server.NoAuthBypass)
	flag("RATE_LIMIT", &cfg.Server.RateLimit)
	num("CHUNK_SIZE", &cfg.Chunker.Size)
	num("CHUNK_OVERLAP", &cfg.Chunker.Overlap)
	str("EMBEDDING_PROVIDER", &cfg.Embedding.Provider)
	str("EMBEDDING_MODEL", &cfg.Embedding.Model)
	str("EMBEDDING_BASE_URL", &cfg.Embedding.BaseURL)
	str("EMBEDDING_API_KEY", &cfg.Embedding.APIKey)
	num("EMBEDDING_DIMENSION", &cfg.Embedding.Dimension)
	str("INDEX_BACKEND", &cfg.Index.Backend)
	str("INDEX_DIR", &cfg.Index.Dir)
	str("QDRANT_HOST", &cfg.Qdrant.Host)
	num("QDRANT_PORT", &cfg.Qdrant.Port)
	str("QDRANT_API_KEY", &cfg.Qdrant.APIKey)
	flag("QDRANT_USE_TLS", &cfg.Qdrant.UseTLS)
	str("LLM_PROVIDER", &cfg.LLM.Provider)
	str("LLM_MODEL", &cfg.LLM.Model)
	str("LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("LLM_API_KEY", &cfg.LLM.APIKey)
	dur("LLM_TIMEOUT", &cfg.LLM.Timeout)
	num("LLM_REQUESTS_PER_MINUTE", &cfg.LLM.RequestsPerMinute)
	num("TOP_K", &cfg.Retrieval.TopK)
	dur("RETRIEVAL_TIMEOUT", &cfg.Retrieval.Timeout)
	flag("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	num("REDIS_DB", &cfg.Redis.DB)
	str("LESSONS_DIR", &cfg.Lessons.Dir)
	dur("JOB_TIMEOUT", &cfg.Workers.JobTimeout)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(ENV_PREFIX + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
