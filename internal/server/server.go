package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/LessonRAG/internal/adapter/utils"
	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/handlers"
	"github.com/akolanti/LessonRAG/internal/middleware"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

// Drainer is anything that must finish before the process exits. Stop gets
// until ctx ends to wind down on its own.
type Drainer interface {
	Stop(ctx context.Context) error
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	Workers          Drainer
	// CloseQueue fails jobs that never reached a worker.
	CloseQueue    func(ctx context.Context) int
	CloseServices context.CancelFunc
	// DrainTimeout bounds Workers.Stop; config.WorkerDrainTimeout when zero.
	DrainTimeout time.Duration
}

// Routes mounts the lesson endpoints behind trace, auth and rate limiting.
// /healthz, /metrics and /swagger stay open.
func Routes(h *handlers.LessonHandler) http.Handler {
	r := utils.NewRouter()

	r.Router.Get("/healthz", h.Health)
	r.Router.Put("/lessons/{id}/pdf", middleware.Wrap(h.UploadPDF))
	r.Router.Post("/lessons/{id}/index", middleware.Wrap(h.TriggerIndex))
	r.Router.Get("/lessons/{id}/index", middleware.Wrap(h.GetIndexStatus))
	r.Router.Delete("/lessons/{id}/index", middleware.Wrap(h.DeleteIndex))
	r.Router.Post("/lessons/{id}/questions", middleware.Wrap(h.AskQuestion))
	return r.Router
}

func CreateServer(listenAddr string, h *handlers.LessonHandler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      Routes(h),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	drainTimeout := shutdownParams.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = config.WorkerDrainTimeout
	}
	forceExit := time.NewTimer(config.ShutdownContextTimeout + drainTimeout + 2*config.WorkerCancelGrace)
	defer forceExit.Stop()

	done := make(chan struct{})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
		defer cancel()

		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//queued jobs are failed first so they never wait on a slow drain
		if shutdownParams.CloseQueue != nil {
			if dropped := shutdownParams.CloseQueue(ctx); dropped > 0 {
				_logger.Warn("Dropped queued index jobs", "count", dropped)
			}
		}

		drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
		defer cancelDrain()
		if err := shutdownParams.Workers.Stop(drainCtx); err != nil {
			_logger.Error("Worker pool did not drain", "error", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-forceExit.C:
		_logger.Error("Force shut down")
		os.Exit(1)
	}
}
