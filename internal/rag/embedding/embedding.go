package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/customHttpClient"
	"github.com/akolanti/LessonRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/LessonRAG/internal/rag/embedding/hashing"
	"github.com/akolanti/LessonRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

// Embedder maps texts to fixed-dimension vectors. Embed returns exactly one
// vector per input, in input order, and is deterministic for a given model.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelID() string
}

var (
	once     sync.Once
	instance Embedder
	initErr  error
)

// Init builds the process-wide embedder once and probes it. Later calls return
// the first result whatever cfg they pass.
func Init(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	once.Do(func() {
		logger := logger_i.NewLogger("Embedding")
		e, err := newEmbedder(ctx, cfg)
		if err != nil {
			initErr = err
			return
		}
		if err := probe(ctx, e); err != nil {
			initErr = fmt.Errorf("embedding model %s failed warmup: %w", e.ModelID(), err)
			return
		}
		instance = e
		logger.Info("Embedding model loaded", "model", e.ModelID(), "dimension", e.Dimension())
	})
	return instance, initErr
}

// Get returns the embedder built by Init, nil before a successful Init.
func Get() Embedder {
	return instance
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "hashing":
		return hashing.New(cfg.Dimension), nil
	case "openai":
		return openaiEmbedding.New(cfg, customHttpClient.NewPooledClient(0)), nil
	case "google":
		return googleEmbedding.New(ctx, cfg, customHttpClient.NewPooledClient(0))
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
}

func probe(ctx context.Context, e Embedder) error {
	vectors, err := e.Embed(ctx, []string{config.EmbeddingProbeText})
	if err != nil {
		return err
	}
	return CheckBatch(1, vectors, e.Dimension())
}

// CheckBatch verifies a provider answer: n vectors, all of length dim.
func CheckBatch(n int, vectors [][]float32, dim int) error {
	if len(vectors) != n {
		return fmt.Errorf("expected %d vectors, got %d", n, len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("vector %d is empty", i)
		}
		if dim > 0 && len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}

var errEmptyQuery = errors.New("cannot embed an empty query")

// EmbedOne embeds a single text as a one item batch.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	if text == "" {
		return nil, errEmptyQuery
	}
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if err := CheckBatch(1, vectors, e.Dimension()); err != nil {
		return nil, err
	}
	return vectors[0], nil
}
