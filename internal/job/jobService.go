package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/akolanti/LessonRAG/internal/adapter/utils"
	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

var ErrQueueClosed = errors.New("indexing queue is shut down")

// Service is the producer side of the indexing queue; the worker pool drains JobChannel.
type Service struct {
	JobChannel        chan lessonModel.IndexJob
	RequestCount      int64
	DispatcherChannel chan bool
	StatusStore       lessonModel.StatusStore
	closed            atomic.Bool
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan lessonModel.IndexJob
	RequestCount      int64
	DispatcherChannel chan bool
	StatusStore       lessonModel.StatusStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		StatusStore:       cfg.StatusStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records the lesson as queued and hands a job to the pool. It blocks
// only while the buffer is full, and gives up when ctx ends.
func (s *Service) Enqueue(ctx context.Context, lessonId string) (lessonModel.IndexJob, error) {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return lessonModel.IndexJob{}, err
	}
	if s.closed.Load() {
		return lessonModel.IndexJob{}, ErrQueueClosed
	}

	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	job := lessonModel.IndexJob{
		Id:          utils.GetNewUUID(),
		LessonId:    lessonId,
		TraceId:     trace,
		CreatedTime: time.Now(),
	}
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId, "jobId", job.Id)

	s.saveStatus(ctx, log, lessonModel.IndexStatus{
		LessonId:    lessonId,
		JobId:       job.Id,
		State:       lessonModel.IndexStateQueued,
		CurrentStep: lessonModel.StepInit,
		QueuedAt:    job.CreatedTime,
		UpdatedAt:   job.CreatedTime,
	})

	metrics.IncrementJobsInQueue()
	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		metrics.DecrementJobsInQueue()
		log.Warn("Gave up queueing index job", "error", ctx.Err())
		s.saveStatus(ctx, log, lessonModel.IndexStatus{
			LessonId:  lessonId,
			JobId:     job.Id,
			State:     lessonModel.IndexStateFailed,
			Reason:    "indexing queue is full",
			QueuedAt:  job.CreatedTime,
			UpdatedAt: time.Now(),
		})
		return lessonModel.IndexJob{}, ctx.Err()
	}
	log.Info("Queued index job")

	// indexing is slow and calls out to the embedder, so every job may grow the pool
	atomic.AddInt64(&s.RequestCount, 1)
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
	}
	return job, nil
}

// Close stops new jobs and marks whatever is still buffered as failed.
// Workers may still be pulling from JobChannel; each job goes to one side only.
func (s *Service) Close(ctx context.Context) int {
	s.closed.Store(true)
	dropped := 0
	for {
		select {
		case job := <-s.JobChannel:
			metrics.DecrementJobsInQueue()
			dropped++
			s.fail(ctx, job, "service stopped before indexing started")
		default:
			return dropped
		}
	}
}

// Abandon records a job the pool gave up on while it was still running.
func (s *Service) Abandon(ctx context.Context, job lessonModel.IndexJob) {
	s.fail(ctx, job, "service stopped while indexing")
}

func (s *Service) fail(ctx context.Context, job lessonModel.IndexJob, reason string) {
	log := s.logger.With(config.LESSON_ID_KEY, job.LessonId, "jobId", job.Id)
	log.Warn("Failing index job on shutdown", "reason", reason)
	s.saveStatus(ctx, log, lessonModel.IndexStatus{
		LessonId:  job.LessonId,
		JobId:     job.Id,
		State:     lessonModel.IndexStateFailed,
		Reason:    reason,
		QueuedAt:  job.CreatedTime,
		UpdatedAt: time.Now(),
	})
}

// Status is the last recorded indexing state for a lesson.
func (s *Service) Status(ctx context.Context, lessonId string) (lessonModel.IndexStatus, bool) {
	if s.StatusStore == nil {
		return lessonModel.IndexStatus{}, false
	}
	return s.StatusStore.GetStatus(ctx, lessonId)
}

func (s *Service) saveStatus(ctx context.Context, log *logger_i.Logger, status lessonModel.IndexStatus) {
	if s.StatusStore == nil {
		return
	}
	if err := s.StatusStore.SaveStatus(context.WithoutCancel(ctx), status); err != nil {
		log.Warn("Could not record index status", "error", err)
	}
}
