package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/internal/rag/embedding"
	"github.com/akolanti/LessonRAG/internal/rag/llm"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

const (
	// NotIndexedMessage is what a student sees while their lesson is still being indexed.
	NotIndexedMessage = "This lesson's PDF has not been indexed yet. Please upload it again or wait a moment and retry."
	ContextSeparator  = "\n\n---\n\n"
)

/*
Service is the only thing the handlers, the mcp server and the worker see.
The private service struct holds the store, the embedder and the model client,
so those can be swapped for mocks without the callers noticing.
*/
type Service interface {
	TriggerIndexing(ctx context.Context, lessonId string) (lessonModel.IndexJob, error)
	IndexStatus(ctx context.Context, lessonId string) (lessonModel.IndexStatus, bool)
	DeleteIndex(ctx context.Context, lessonId string) error
	Retrieve(ctx context.Context, lessonId, question string, k int) ([]vectorDB.Hit, error)
	RetrieveContext(ctx context.Context, lessonId, question string, k int) (string, error)
	AnswerQuestion(ctx context.Context, lessonId, question string) (lessonModel.Answer, error)
}

// IndexQueue accepts indexing work; *job.Service is the production queue.
type IndexQueue interface {
	Enqueue(ctx context.Context, lessonId string) (lessonModel.IndexJob, error)
}

type ServiceConfig struct {
	Lessons           lessonModel.LessonSource
	Embedder          embedding.Embedder
	Store             vectorDB.Store
	LLM               llm.Provider
	Queue             IndexQueue
	Status            lessonModel.StatusStore
	TopK              int
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
}

type service struct {
	lessons           lessonModel.LessonSource
	embedder          embedding.Embedder
	store             vectorDB.Store
	llmProvider       llm.Provider
	queue             IndexQueue
	status            lessonModel.StatusStore
	topK              int
	retrievalTimeout  time.Duration
	generationTimeout time.Duration
	logger            *logger_i.Logger
}

func NewService(cfg ServiceConfig) Service {
	s := &service{
		lessons:           cfg.Lessons,
		embedder:          cfg.Embedder,
		store:             cfg.Store,
		llmProvider:       cfg.LLM,
		queue:             cfg.Queue,
		status:            cfg.Status,
		topK:              cfg.TopK,
		retrievalTimeout:  cfg.RetrievalTimeout,
		generationTimeout: cfg.GenerationTimeout,
		logger:            logger_i.NewLogger("RAG Service"),
	}
	if s.topK <= 0 {
		s.topK = config.DefaultTopK
	}
	if s.retrievalTimeout <= 0 {
		s.retrievalTimeout = config.RetrievalTimeout
	}
	if s.generationTimeout <= 0 {
		s.generationTimeout = config.GenerationTimeout
	}
	return s
}

// TriggerIndexing queues the lesson and returns straight away.
func (s *service) TriggerIndexing(ctx context.Context, lessonId string) (lessonModel.IndexJob, error) {
	if s.queue == nil {
		return lessonModel.IndexJob{}, errors.New("no indexing queue configured")
	}
	job, err := s.queue.Enqueue(ctx, lessonId)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Could not queue indexing", config.LESSON_ID_KEY, lessonId, "error", err)
		return lessonModel.IndexJob{}, err
	}
	return job, nil
}

func (s *service) IndexStatus(ctx context.Context, lessonId string) (lessonModel.IndexStatus, bool) {
	if s.status == nil {
		return lessonModel.IndexStatus{}, false
	}
	return s.status.GetStatus(ctx, lessonId)
}

// DeleteIndex drops the stored index and its status. Deleting a lesson that was
// never indexed is not an error.
func (s *service) DeleteIndex(ctx context.Context, lessonId string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, lessonId); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	if s.status != nil {
		s.status.DeleteStatus(ctx, lessonId)
	}
	s.logger.WithContext(ctx).Info("Deleted lesson index", config.LESSON_ID_KEY, lessonId)
	return nil
}

// Retrieve returns the k chunks nearest to the question, nearest first.
func (s *service) Retrieve(ctx context.Context, lessonId, question string, k int) ([]vectorDB.Hit, error) {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, lessonModel.ErrEmptyQuestion
	}
	if k <= 0 {
		k = s.topK
	}
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId)

	ctx, cancel := context.WithTimeout(ctx, s.retrievalTimeout)
	defer cancel()

	index, err := s.loadIndex(ctx, lessonId)
	if err != nil {
		return nil, err
	}
	query, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}
	hits, err := s.search(ctx, index, query, k)
	if err != nil {
		return nil, err
	}
	log.Debug("Retrieved lesson context", "hits", len(hits), "k", k)
	return hits, nil
}

// RetrieveContext is Retrieve joined into one prompt-ready string. A lesson
// that has no index yet gives NotIndexedMessage instead of an error.
func (s *service) RetrieveContext(ctx context.Context, lessonId, question string, k int) (string, error) {
	hits, err := s.Retrieve(ctx, lessonId, question, k)
	if errors.Is(err, lessonModel.ErrNotIndexed) {
		return NotIndexedMessage, nil
	}
	if err != nil {
		return "", err
	}
	return joinHits(hits), nil
}

func (s *service) AnswerQuestion(ctx context.Context, lessonId, question string) (lessonModel.Answer, error) {
	answer := lessonModel.Answer{LessonId: lessonId, Question: question}
	if strings.TrimSpace(question) == "" {
		metrics.RecordAnswer("empty_question")
		return answer, lessonModel.ErrEmptyQuestion
	}
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId)

	lesson, err := s.lessons.GetLesson(ctx, lessonId)
	if err != nil {
		metrics.RecordAnswer("lesson_lookup")
		return answer, err
	}
	if !lesson.HasPDF {
		metrics.RecordAnswer("no_pdf")
		return answer, lessonModel.ErrNoPDF
	}

	hits, err := s.Retrieve(ctx, lessonId, question, s.topK)
	if err != nil {
		metrics.RecordAnswer(answerFailure(err))
		log.Warn("Retrieval failed", "error", err)
		return answer, err
	}
	answer.Context = hitTexts(hits)

	text, err := s.generate(ctx, question, joinHits(hits))
	if err != nil {
		metrics.RecordAnswer("generation")
		log.Error("Generation failed", "error", err)
		return answer, err
	}
	answer.Answer = text
	metrics.RecordAnswer("ok")
	return answer, nil
}
