package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/internal/rag/chunker"
	"github.com/akolanti/LessonRAG/internal/rag/embedding"
	"github.com/akolanti/LessonRAG/internal/rag/extract"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

// TextExtractor turns pdf bytes into text. *extract.Extractor satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (extract.Result, error)
}

type Indexer struct {
	lessons   lessonModel.LessonSource
	extractor TextExtractor
	splitter  *chunker.Splitter
	embedder  embedding.Embedder
	store     vectorDB.Store
	status    lessonModel.StatusStore
	logger    *logger_i.Logger
}

func New(lessons lessonModel.LessonSource, extractor TextExtractor, splitter *chunker.Splitter,
	embedder embedding.Embedder, store vectorDB.Store, status lessonModel.StatusStore) *Indexer {
	return &Indexer{
		lessons:   lessons,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		status:    status,
		logger:    logger_i.NewLogger("Indexer"),
	}
}

// IndexLesson builds and publishes the index for one lesson. It never returns an
// error: every failure ends up in the returned status, the status store and the log.
func (ix *Indexer) IndexLesson(ctx context.Context, lessonId string) lessonModel.IndexStatus {
	return ix.RunJob(ctx, lessonModel.IndexJob{LessonId: lessonId, CreatedTime: time.Now()})
}

// RunJob is IndexLesson for a queued job, keeping the job id on the status.
func (ix *Indexer) RunJob(ctx context.Context, job lessonModel.IndexJob) (status lessonModel.IndexStatus) {
	log := ix.logger.WithContext(ctx).With(config.LESSON_ID_KEY, job.LessonId, "jobId", job.Id)
	start := time.Now()

	status = lessonModel.IndexStatus{
		LessonId:    job.LessonId,
		JobId:       job.Id,
		State:       lessonModel.IndexStateRunning,
		CurrentStep: lessonModel.StepInit,
		QueuedAt:    job.CreatedTime,
	}
	ix.record(ctx, log, &status)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Indexing panicked", "step", status.CurrentStep, "panic", r)
			status.State = lessonModel.IndexStateFailed
			status.Reason = fmt.Sprintf("panic during %s: %v", status.CurrentStep, r)
			ix.record(ctx, log, &status)
		}
		metrics.RecordIndexingOutcome(string(status.State))
		metrics.CaptureJobMetrics(string(status.State), time.Since(start))
	}()

	err := ix.run(ctx, log, &status)
	switch {
	case err == nil:
		status.State = lessonModel.IndexStateIndexed
		status.CurrentStep = lessonModel.StepComplete
		log.Info("Lesson indexed", "chunks", status.ChunkCount, "pages", status.PageCount,
			"failedPages", status.FailedPages, "model", status.ModelId, "took", time.Since(start))
	case errors.Is(err, lessonModel.ErrNoPDF), errors.Is(err, lessonModel.ErrEmptyDocument):
		status.State = lessonModel.IndexStateSkipped
		status.Reason = err.Error()
		log.Info("Skipping lesson", "reason", err)
	default:
		status.State = lessonModel.IndexStateFailed
		status.Reason = err.Error()
		log.Error("Indexing failed", "step", status.CurrentStep, "error", err)
	}
	ix.record(ctx, log, &status)
	return status
}

func (ix *Indexer) run(ctx context.Context, log *logger_i.Logger, status *lessonModel.IndexStatus) error {
	if err := lessonModel.ValidateLessonId(status.LessonId); err != nil {
		return err
	}

	ix.step(ctx, log, status, lessonModel.StepLookup)
	lesson, err := ix.lessons.GetLesson(ctx, status.LessonId)
	if err != nil {
		return fmt.Errorf("lesson lookup: %w", err)
	}
	if !lesson.HasPDF || lesson.Open == nil {
		return lessonModel.ErrNoPDF
	}

	ix.step(ctx, log, status, lessonModel.StepExtract)
	result, err := ix.extractText(ctx, lesson)
	if err != nil {
		return err
	}
	status.PageCount = result.Pages
	status.FailedPages = result.FailedPages
	if strings.TrimSpace(result.Text) == "" {
		return lessonModel.ErrEmptyDocument
	}

	ix.step(ctx, log, status, lessonModel.StepChunk)
	chunks := chunker.Texts(ix.splitter.Split(result.Text))
	if len(chunks) == 0 {
		return lessonModel.ErrEmptyDocument
	}
	status.ChunkCount = len(chunks)
	log.Debug("Split lesson text", "chunks", len(chunks), "chars", len(result.Text))

	ix.step(ctx, log, status, lessonModel.StepEmbed)
	vectors, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}
	status.ModelId = ix.embedder.ModelID()

	ix.step(ctx, log, status, lessonModel.StepSave)
	saveStart := time.Now()
	err = ix.store.Save(ctx, status.LessonId, vectors, chunks)
	metrics.CaptureExecutionMetrics("index_save", time.Since(saveStart))
	if err != nil {
		return fmt.Errorf("index save: %w", err)
	}
	return nil
}

func (ix *Indexer) extractText(ctx context.Context, lesson lessonModel.Lesson) (extract.Result, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract", time.Since(start)) }()

	pdfFile, err := lesson.Open()
	if err != nil {
		return extract.Result{}, fmt.Errorf("open lesson pdf: %w", err)
	}
	defer pdfFile.Close()
	return ix.extractor.Extract(ctx, pdfFile, pdfFile.Size())
}

// embedChunks sends every chunk in one batch call.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embed", time.Since(start)) }()

	vectors, err := ix.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if err := embedding.CheckBatch(len(chunks), vectors, ix.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return vectors, nil
}

func (ix *Indexer) step(ctx context.Context, log *logger_i.Logger, status *lessonModel.IndexStatus, step lessonModel.InternalStatus) {
	status.CurrentStep = step
	log.Debug("Indexing step", "step", step)
	ix.record(ctx, log, status)
}

func (ix *Indexer) record(ctx context.Context, log *logger_i.Logger, status *lessonModel.IndexStatus) {
	if ix.status == nil {
		return
	}
	status.UpdatedAt = time.Now()
	// status writes must outlive a cancelled job context
	if err := ix.status.SaveStatus(context.WithoutCancel(ctx), *status); err != nil {
		log.Warn("Could not record index status", "error", err)
	}
}
