package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/data/store"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/job"
)

// MockRunner tracks which jobs were executed
type MockRunner struct {
	ProcessedCount int32
	OnRunJob       func(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus
}

func (m *MockRunner) RunJob(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnRunJob != nil {
		return m.OnRunJob(ctx, j)
	}
	return lessonModel.IndexStatus{LessonId: j.LessonId, State: lessonModel.IndexStateIndexed}
}

func newJobService() *job.Service {
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan lessonModel.IndexJob, 10),
		DispatcherChannel: make(chan bool, 10),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := newJobService()
	runner := &MockRunner{}
	pool := NewPool(jobSvc, runner, config.WorkerConfig{MaxWorkers: 3, IdleTimeout: time.Minute, JobTimeout: time.Second})
	pool.Start()

	t.Run("Dispatcher starts one worker", func(t *testing.T) {
		waitFor(t, "first worker", func() bool { return pool.WorkerCount() == 1 })
	})

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, "second worker", func() bool { return pool.WorkerCount() == 2 })
	})

	t.Run("Dispatcher respects max workers", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			jobSvc.DispatcherChannel <- true
		}
		time.Sleep(50 * time.Millisecond)
		if n := pool.WorkerCount(); n != 3 {
			t.Errorf("worker count = %d, want 3", n)
		}
	})

	t.Run("Worker processes queued jobs", func(t *testing.T) {
		for _, id := range []string{"1", "2", "3"} {
			if _, err := jobSvc.Enqueue(context.Background(), id); err != nil {
				t.Fatal(err)
			}
		}
		waitFor(t, "jobs", func() bool { return atomic.LoadInt32(&runner.ProcessedCount) == 3 })
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			pool.Stop(context.Background())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("workers did not stop within timeout")
		}
		if n := pool.WorkerCount(); n != 0 {
			t.Errorf("worker count after stop = %d", n)
		}
	})
}

func TestWorker_JobGetsTraceAndTimeout(t *testing.T) {
	jobSvc := newJobService()
	seen := make(chan context.Context, 1)
	runner := &MockRunner{OnRunJob: func(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus {
		seen <- ctx
		return lessonModel.IndexStatus{}
	}}
	pool := NewPool(jobSvc, runner, config.WorkerConfig{MaxWorkers: 1, JobTimeout: time.Second})
	pool.Start()
	defer pool.Stop(context.Background())

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-7")
	if _, err := jobSvc.Enqueue(ctx, "5"); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-seen:
		if got.Value(config.TRACE_ID_KEY) != "trace-7" {
			t.Errorf("trace = %v", got.Value(config.TRACE_ID_KEY))
		}
		if _, ok := got.Deadline(); !ok {
			t.Error("job context has no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestWorker_SurvivesPanickingRunner(t *testing.T) {
	jobSvc := newJobService()
	var calls int32
	runner := &MockRunner{OnRunJob: func(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		return lessonModel.IndexStatus{}
	}}
	pool := NewPool(jobSvc, runner, config.WorkerConfig{MaxWorkers: 1})
	pool.Start()
	defer pool.Stop(context.Background())

	for _, id := range []string{"1", "2"} {
		if _, err := jobSvc.Enqueue(context.Background(), id); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, "second job", func() bool { return atomic.LoadInt32(&calls) == 2 })
}

func TestWorker_IdleTimeout(t *testing.T) {
	jobSvc := newJobService()
	pool := NewPool(jobSvc, &MockRunner{}, config.WorkerConfig{MaxWorkers: 3, IdleTimeout: 30 * time.Millisecond})
	pool.Start()
	defer pool.Stop(context.Background())

	jobSvc.DispatcherChannel <- true
	jobSvc.DispatcherChannel <- true
	waitFor(t, "three workers", func() bool { return pool.WorkerCount() == 3 })
	waitFor(t, "idle retirement", func() bool { return pool.WorkerCount() == config.MinWorkerCount })

	time.Sleep(100 * time.Millisecond)
	if n := pool.WorkerCount(); n != config.MinWorkerCount {
		t.Errorf("pool shrank below minimum: %d", n)
	}
}

func TestStop_CancelsJobsPastDrainDeadline(t *testing.T) {
	statuses := store.InitInMemoryStatusStore()
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan lessonModel.IndexJob, 10),
		DispatcherChannel: make(chan bool, 10),
		StatusStore:       statuses,
	})
	started := make(chan struct{})
	runner := &MockRunner{OnRunJob: func(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus {
		close(started)
		<-ctx.Done()
		status := lessonModel.IndexStatus{LessonId: j.LessonId, JobId: j.Id, State: lessonModel.IndexStateFailed, Reason: ctx.Err().Error()}
		_ = statuses.SaveStatus(context.Background(), status)
		return status
	}}
	pool := NewPool(jobSvc, runner, config.WorkerConfig{MaxWorkers: 1, JobTimeout: time.Hour})
	pool.Start()
	if _, err := jobSvc.Enqueue(context.Background(), "8"); err != nil {
		t.Fatal(err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("Stop = %v, a job honouring cancel should let the pool stop", err)
	}
	if s, _ := statuses.GetStatus(context.Background(), "8"); s.State != lessonModel.IndexStateFailed {
		t.Errorf("state = %s, want FAILED", s.State)
	}
}

func TestStop_AbandonsJobsIgnoringCancel(t *testing.T) {
	statuses := store.InitInMemoryStatusStore()
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan lessonModel.IndexJob, 10),
		DispatcherChannel: make(chan bool, 10),
		StatusStore:       statuses,
	})
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	runner := &MockRunner{OnRunJob: func(ctx context.Context, j lessonModel.IndexJob) lessonModel.IndexStatus {
		close(started)
		<-release
		return lessonModel.IndexStatus{}
	}}
	pool := NewPool(jobSvc, runner, config.WorkerConfig{MaxWorkers: 1, JobTimeout: time.Hour})
	pool.cancelGrace = 20 * time.Millisecond
	pool.Start()
	if _, err := jobSvc.Enqueue(context.Background(), "9"); err != nil {
		t.Fatal(err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Stop(ctx); err == nil {
		t.Fatal("Stop should report the job that would not stop")
	}
	s, ok := statuses.GetStatus(context.Background(), "9")
	if !ok || s.State != lessonModel.IndexStateFailed || s.Reason != "service stopped while indexing" {
		t.Errorf("status = %+v", s)
	}
}
