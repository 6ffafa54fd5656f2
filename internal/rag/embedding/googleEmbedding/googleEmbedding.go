package googleEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	maxBatch   = 100
	retryDelay = 5 * time.Second
	taskType   = "RETRIEVAL_DOCUMENT"
)

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, cfg config.EmbeddingConfig, httpClient *http.Client) (*Client, error) {
	model := cfg.Model
	if model == "" || model == config.DefaultEmbeddingModel {
		model = config.GoogleEmbeddingModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = config.DefaultEmbeddingDimension
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", model)
	return &Client{genAi: c, model: model, dimension: int32(dim), logger: logger}, nil
}

func (c *Client) Dimension() int { return int(c.dimension) }

func (c *Client) ModelID() string { return "google:" + c.model }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.WithContext(ctx)
	out := make([][]float32, 0, len(texts))

	for _, batch := range batches(texts, maxBatch) {
		res, err := c.doCall(ctx, getContent(batch))
		if err != nil && doRetry(err, log) {
			log.Debug("Retrying", "in", retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			res, err = c.doCall(ctx, getContent(batch))
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, fmt.Errorf("google embeddings: %w", err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("google embeddings: sent %d texts, got %d vectors", len(batch), len(res.Embeddings))
		}
		for _, e := range res.Embeddings {
			if e == nil {
				return nil, fmt.Errorf("google embeddings: missing vector in batch")
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
}
