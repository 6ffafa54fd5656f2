package llm

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Guarded wraps a provider with a circuit breaker and an optional request rate.
// Every failure comes back as *lessonModel.GenerationError. Nothing is retried.
type Guarded struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *logger_i.Logger
}

func NewGuarded(inner Provider, requestsPerMinute int) *Guarded {
	logger := logger_i.NewLogger("llm_guard")
	g := &Guarded{inner: inner, logger: logger}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: config.BreakerMaxRequests,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= config.BreakerMinRequests && failureRatio >= config.BreakerFailureRatio
		},
		// the caller giving up is not the provider's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	if requestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), max(requestsPerMinute/10, 1))
	}
	return g
}

func (g *Guarded) Name() string { return g.inner.Name() }

func (g *Guarded) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", g.fail(ctx, err)
		}
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.Generate(ctx, prompt)
	})
	if err != nil {
		return "", g.fail(ctx, err)
	}
	answer, _ := res.(string)
	return answer, nil
}

func (g *Guarded) fail(ctx context.Context, err error) error {
	g.logger.WithContext(ctx).Error("Generation failed", "provider", g.inner.Name(), "error", err)
	return &lessonModel.GenerationError{Provider: g.inner.Name(), Err: err}
}
