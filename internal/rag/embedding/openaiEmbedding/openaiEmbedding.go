package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client talks to any OpenAI compatible /embeddings endpoint, e.g. a local
// sentence-transformers server hosting all-MiniLM-L6-v2.
type Client struct {
	client    openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

func New(cfg config.EmbeddingConfig, httpClient *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithAPIKey("unused"))
	}
	return &Client{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *Client) Dimension() int { return c.dimension }

func (c *Client) ModelID() string { return "openai:" + c.model }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := c.logger.WithContext(ctx)
	log.Debug("Embedding batch", "size", len(texts), "model", c.model)

	res, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(c.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		log.Error("Error getting embeddings", "error", err)
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(res.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: sent %d texts, got %d vectors", len(texts), len(res.Data))
	}

	// the api may answer out of order, Index is authoritative
	out := make([][]float32, len(texts))
	for _, d := range res.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(out) || out[idx] != nil {
			return nil, fmt.Errorf("openai embeddings: bad or duplicate index %d", d.Index)
		}
		if c.dimension > 0 && len(d.Embedding) != c.dimension {
			return nil, fmt.Errorf("openai embeddings: got dimension %d, want %d", len(d.Embedding), c.dimension)
		}
		vec := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			vec[i] = float32(x)
		}
		out[idx] = vec
	}
	return out, nil
}
