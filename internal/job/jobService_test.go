package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/data/store"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
)

func newService(buffer int) *Service {
	return InitJobService(ServiceConfig{
		JobChannel:        make(chan lessonModel.IndexJob, buffer),
		DispatcherChannel: make(chan bool, 1),
		StatusStore:       store.InitInMemoryStatusStore(),
	})
}

func TestEnqueue_QueuesJobAndStatus(t *testing.T) {
	s := newService(2)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-9")

	job, err := s.Enqueue(ctx, "42")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Id == "" || job.LessonId != "42" || job.TraceId != "trace-9" {
		t.Errorf("unexpected job %+v", job)
	}

	select {
	case got := <-s.JobChannel:
		if got.Id != job.Id {
			t.Errorf("channel has job %s, want %s", got.Id, job.Id)
		}
	default:
		t.Fatal("job was not put on the channel")
	}
	select {
	case <-s.DispatcherChannel:
	default:
		t.Error("dispatcher was not signalled")
	}

	status, ok := s.Status(ctx, "42")
	if !ok || status.State != lessonModel.IndexStateQueued || status.JobId != job.Id {
		t.Errorf("status = %+v (found=%v)", status, ok)
	}
}

func TestEnqueue_RejectsInvalidId(t *testing.T) {
	s := newService(1)
	if _, err := s.Enqueue(context.Background(), "a/b"); !errors.Is(err, lessonModel.ErrInvalidLesson) {
		t.Errorf("err = %v", err)
	}
}

func TestEnqueue_FullQueueRespectsContext(t *testing.T) {
	s := newService(1)
	if _, err := s.Enqueue(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Enqueue(ctx, "2")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	status, _ := s.Status(context.Background(), "2")
	if status.State != lessonModel.IndexStateFailed {
		t.Errorf("state = %s", status.State)
	}
}

func TestClose_FailsBufferedJobs(t *testing.T) {
	s := newService(3)
	for _, id := range []string{"1", "2"} {
		if _, err := s.Enqueue(context.Background(), id); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.Close(context.Background()); n != 2 {
		t.Errorf("dropped %d, want 2", n)
	}
	status, _ := s.Status(context.Background(), "2")
	if status.State != lessonModel.IndexStateFailed {
		t.Errorf("state = %s", status.State)
	}
	if _, err := s.Enqueue(context.Background(), "3"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
}
