package gemini

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/akolanti/LessonRAG/internal/config"
)

func TestNewPicksGeminiModelForDefault(t *testing.T) {
	p, err := New(context.Background(), config.LLMConfig{Model: config.DefaultLLMModel, APIKey: "test-key"}, http.DefaultClient)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasSuffix(p.Name(), config.GeminiModelName) {
		t.Errorf("Name = %s", p.Name())
	}
}
