package rag

import (
	"context"
	"fmt"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/customHttpClient"
	"github.com/akolanti/LessonRAG/internal/data/store"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag/llm"
	"github.com/akolanti/LessonRAG/internal/rag/llm/gemini"
	"github.com/akolanti/LessonRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB/fileIndex"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

// NewProvider builds the configured model client behind the breaker and limiter.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	client := customHttpClient.NewPooledClient(cfg.Timeout)
	var inner llm.Provider
	switch cfg.Provider {
	case "", "openai":
		inner = openaiLLM.New(cfg, client)
	case "gemini":
		p, err := gemini.New(ctx, cfg, client)
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
	return llm.NewGuarded(inner, cfg.RequestsPerMinute), nil
}

// NewStore opens the configured index backend.
func NewStore(ctx context.Context, cfg *config.Config) (vectorDB.Store, error) {
	switch cfg.Index.Backend {
	case "", "file":
		s, err := fileIndex.New(cfg.Index.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "qdrant":
		s, err := qdrantDB.GetQdrantStore(ctx, cfg.Qdrant)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %q", cfg.Index.Backend)
	}
}

// NewStatusStore prefers redis and falls back to memory when it is disabled or offline.
func NewStatusStore(ctx context.Context, cfg config.RedisConfig) lessonModel.StatusStore {
	logger := logger_i.NewLogger("StatusStore")
	if cfg.Enabled {
		if s := store.GetRedisStatusStore(ctx, cfg); s != nil {
			return s
		}
		logger.Warn("Redis is offline, index status is kept in memory", "addr", cfg.Addr)
	}
	return store.InitInMemoryStatusStore()
}
