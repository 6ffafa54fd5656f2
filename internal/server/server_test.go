package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/data/store"
	"github.com/akolanti/LessonRAG/internal/handlers"
	"github.com/akolanti/LessonRAG/internal/lessons"
	"github.com/akolanti/LessonRAG/internal/middleware"
	"github.com/akolanti/LessonRAG/internal/rag"
	"github.com/akolanti/LessonRAG/internal/rag/embedding/hashing"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB/fileIndex"
)

func newHandler(t *testing.T) *handlers.LessonHandler {
	t.Helper()
	files, err := fileIndex.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	source, err := lessons.NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	embedder := hashing.New(32)
	svc := rag.NewService(rag.ServiceConfig{
		Lessons:  source,
		Embedder: embedder,
		Store:    files,
		Status:   store.InitInMemoryStatusStore(),
	})
	return handlers.NewLessonHandler(svc, source, embedder.ModelID())
}

func TestRoutes_AuthOnLessonEndpointsOnly(t *testing.T) {
	middleware.Init(config.ServerConfig{AuthToken: "token"})
	h := Routes(newHandler(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons/1/index", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/lessons/1/index", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("authenticated unknown lesson status = %d", rec.Code)
	}
}

type stopRecorder struct{ stopped bool }

func (s *stopRecorder) Stop(ctx context.Context) error {
	s.stopped = true
	return nil
}

// slowDrainer holds Stop until its deadline, like a pool whose job outlives the budget.
type slowDrainer struct {
	queueClosedFirst bool
	queueClosed      *atomic.Bool
	hadDeadline      bool
}

func (s *slowDrainer) Stop(ctx context.Context) error {
	s.queueClosedFirst = s.queueClosed.Load()
	_, s.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestShutDownHandler_StopsWorkersAndServices(t *testing.T) {
	signals := make(chan os.Signal, 1)
	stop := make(chan bool)
	workers := &stopRecorder{}
	closed := false
	queueClosed := false

	go ShutDownHandler(ShutdownParams{
		GracefulShutdown: signals,
		StopExecution:    stop,
		Workers:          workers,
		CloseQueue:       func(ctx context.Context) int { queueClosed = true; return 0 },
		CloseServices:    func() { closed = true },
	})
	signals <- syscall.SIGTERM

	select {
	case <-stop:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	if !workers.stopped || !closed || !queueClosed {
		t.Errorf("workers %v, queue %v, services %v", workers.stopped, queueClosed, closed)
	}
}

func TestShutDownHandler_QueueClosedBeforeSlowDrain(t *testing.T) {
	signals := make(chan os.Signal, 1)
	stop := make(chan bool)
	var queueClosed atomic.Bool
	workers := &slowDrainer{queueClosed: &queueClosed}

	go ShutDownHandler(ShutdownParams{
		GracefulShutdown: signals,
		StopExecution:    stop,
		Workers:          workers,
		CloseQueue:       func(ctx context.Context) int { queueClosed.Store(true); return 1 },
		CloseServices:    func() {},
		DrainTimeout:     50 * time.Millisecond,
	})
	signals <- syscall.SIGTERM

	select {
	case <-stop:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown waited on the drain past its deadline")
	}
	if !workers.queueClosedFirst {
		t.Error("queued jobs should be failed before waiting on running ones")
	}
	if !workers.hadDeadline {
		t.Error("pool drain has no deadline")
	}
}
