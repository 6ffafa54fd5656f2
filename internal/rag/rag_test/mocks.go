package rag_test

import (
	"bytes"
	"context"
	"io"

	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag/extract"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
)

// MockLessons implements lessonModel.LessonSource
type MockLessons struct {
	OnGetLesson func(ctx context.Context, lessonId string) (lessonModel.Lesson, error)
}

func (m *MockLessons) GetLesson(ctx context.Context, lessonId string) (lessonModel.Lesson, error) {
	if m.OnGetLesson != nil {
		return m.OnGetLesson(ctx, lessonId)
	}
	return WithPDF(lessonId, []byte("%PDF-stub")), nil
}

type memPDF struct {
	*bytes.Reader
}

func (memPDF) Close() error { return nil }

// WithPDF is a lesson whose pdf is served from memory.
func WithPDF(lessonId string, data []byte) lessonModel.Lesson {
	return lessonModel.Lesson{
		Id:     lessonId,
		HasPDF: true,
		Open: func() (lessonModel.PDFReader, error) {
			return memPDF{bytes.NewReader(data)}, nil
		},
	}
}

// MockExtractor implements indexer.TextExtractor
type MockExtractor struct {
	OnExtract func(ctx context.Context, r io.ReaderAt, size int64) (extract.Result, error)
}

func (m *MockExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (extract.Result, error) {
	if m.OnExtract != nil {
		return m.OnExtract(ctx, r, size)
	}
	return extract.Result{Text: "default lesson text", Pages: 1}, nil
}

// TextExtractor always returns text as a one page document.
func TextExtractor(text string) *MockExtractor {
	return &MockExtractor{OnExtract: func(ctx context.Context, r io.ReaderAt, size int64) (extract.Result, error) {
		return extract.Result{Text: text, Pages: 1}, nil
	}}
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	Dim     int
	OnEmbed func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, m.Dimension())
		v[0] = float32(len(texts[i]))
		out[i] = v
	}
	return out, nil
}

func (m *MockEmbedder) Dimension() int {
	if m.Dim == 0 {
		return 4
	}
	return m.Dim
}

func (m *MockEmbedder) ModelID() string { return "mock-embedder" }

// MockStore implements vectorDB.Store
type MockStore struct {
	OnSave   func(ctx context.Context, lessonId string, vectors [][]float32, chunks []string) error
	OnLoad   func(ctx context.Context, lessonId string) (vectorDB.Index, error)
	OnDelete func(ctx context.Context, lessonId string) error
}

func (m *MockStore) Save(ctx context.Context, lessonId string, vectors [][]float32, chunks []string) error {
	if m.OnSave != nil {
		return m.OnSave(ctx, lessonId, vectors, chunks)
	}
	return nil
}

func (m *MockStore) Load(ctx context.Context, lessonId string) (vectorDB.Index, error) {
	if m.OnLoad != nil {
		return m.OnLoad(ctx, lessonId)
	}
	return nil, lessonModel.ErrNotIndexed
}

func (m *MockStore) Delete(ctx context.Context, lessonId string) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, lessonId)
	}
	return nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Name() string { return "mock" }
