package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/rag/llm"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"google.golang.org/genai"
)

var errEmptyResult = errors.New("gemini returned no content")

type llmClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

func New(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (llm.Provider, error) {
	modelName := cfg.Model
	if modelName == "" || modelName == config.DefaultLLMModel {
		modelName = config.GeminiModelName
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, temperature: cfg.Temperature, logger: logger}, nil
}

func (c *llmClient) Name() string { return "gemini:" + c.modelName }

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.WithContext(ctx).Debug("Generating", "model", c.modelName)
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.ModelContext}},
		},
		Temperature: genai.Ptr(c.temperature),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), contentConfig)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", errEmptyResult
	}
	text := result.Text()
	if text == "" {
		return "", errEmptyResult
	}
	return text, nil
}
