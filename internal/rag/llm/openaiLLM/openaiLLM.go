package openaiLLM

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var errNoChoices = errors.New("model returned no choices")

// Client generates through any OpenAI compatible chat endpoint, a local
// Ollama or llama.cpp server by default.
type Client struct {
	client      openai.Client
	modelName   string
	temperature float64
	logger      *logger_i.Logger
}

func New(cfg config.LLMConfig, httpClient *http.Client) *Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "unused"
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		client:      openai.NewClient(opts...),
		modelName:   cfg.Model,
		temperature: float64(cfg.Temperature),
		logger:      logger_i.NewLogger("llm_openai"),
	}
}

func (c *Client) Name() string { return "openai:" + c.modelName }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log := c.logger.WithContext(ctx)
	log.Debug("Generating", "model", c.modelName, "promptLength", len(prompt))

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.ModelContext),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errNoChoices
	}
	return res.Choices[0].Message.Content, nil
}
