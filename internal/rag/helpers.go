package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/internal/rag/embedding"
	"github.com/akolanti/LessonRAG/internal/rag/llm"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
)

func (s *service) loadIndex(ctx context.Context, lessonId string) (vectorDB.Index, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_load", time.Since(start)) }()

	return s.store.Load(ctx, lessonId)
}

func (s *service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	v, err := embedding.EmbedOne(ctx, s.embedder, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	return v, nil
}

func (s *service) search(ctx context.Context, index vectorDB.Index, query []float32, k int) ([]vectorDB.Hit, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for i := range hits {
		if hits[i].Text == "" && hits[i].Index >= 0 && hits[i].Index < index.Len() {
			hits[i].Text = index.Chunk(hits[i].Index)
		}
	}
	return hits, nil
}

// generate runs on its own deadline, detached from the retrieval one.
func (s *service) generate(ctx context.Context, question, lessonContext string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	text, err := s.llmProvider.Generate(ctx, llm.BuildPrompt(question, lessonContext))
	if err != nil {
		var genErr *lessonModel.GenerationError
		if errors.As(err, &genErr) {
			return "", err
		}
		return "", &lessonModel.GenerationError{Provider: s.llmProvider.Name(), Err: err}
	}
	return text, nil
}

func joinHits(hits []vectorDB.Hit) string {
	return strings.Join(hitTexts(hits), ContextSeparator)
}

func hitTexts(hits []vectorDB.Hit) []string {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	return texts
}

func answerFailure(err error) string {
	var corrupt *lessonModel.IndexCorruptionError
	switch {
	case errors.Is(err, lessonModel.ErrNotIndexed):
		return "not_indexed"
	case errors.As(err, &corrupt):
		return "corrupt_index"
	default:
		return "retrieval"
	}
}
