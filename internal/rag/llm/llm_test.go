package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/sony/gobreaker"
)

type mockProvider struct {
	calls      int
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("  What is ATP? ", "ATP stores energy.")
	if !strings.Contains(p, "ATP stores energy.") || !strings.HasSuffix(p, "Student question: What is ATP?") {
		t.Errorf("prompt = %q", p)
	}
	if !strings.Contains(BuildPrompt("q", "  "), "no context") {
		t.Error("empty context should be called out")
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	g := NewGuarded(&mockProvider{}, 0)
	got, err := g.Generate(context.Background(), "prompt")
	if err != nil || got != "mocked llm response" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestGuardedWrapsFailures(t *testing.T) {
	cause := errors.New("provider down")
	m := &mockProvider{OnGenerate: func(ctx context.Context, prompt string) (string, error) { return "", cause }}
	g := NewGuarded(m, 0)

	_, err := g.Generate(context.Background(), "prompt")
	var genErr *lessonModel.GenerationError
	if !errors.As(err, &genErr) || genErr.Provider != "mock" {
		t.Fatalf("err = %v, want GenerationError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable")
	}
	if m.calls != 1 {
		t.Errorf("provider called %d times, failures must not be retried", m.calls)
	}
}

func TestGuardedKeepsDeadline(t *testing.T) {
	m := &mockProvider{OnGenerate: func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	g := NewGuarded(m, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := g.Generate(ctx, "p"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	m := &mockProvider{OnGenerate: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("500")
	}}
	g := NewGuarded(m, 0)
	for range config.BreakerMinRequests {
		_, _ = g.Generate(context.Background(), "p")
	}
	calls := m.calls
	_, err := g.Generate(context.Background(), "p")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open breaker", err)
	}
	if m.calls != calls {
		t.Error("open breaker should not reach the provider")
	}
}
