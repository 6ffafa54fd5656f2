package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/LessonRAG/internal/adapter"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// the status line is already out, all we can do is log
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// extendDeadlines lifts the server wide read and write timeouts for one slow request.
func extendDeadlines(w http.ResponseWriter, log *logger_i.Logger, d time.Duration) {
	rc := http.NewResponseController(w)
	deadline := time.Now().Add(d)
	for _, set := range []func(time.Time) error{rc.SetReadDeadline, rc.SetWriteDeadline} {
		if err := set(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
			log.Warn("Could not extend request deadline", "error", err)
		}
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// statusForError maps the pipeline's typed errors onto http codes.
func statusForError(err error) int {
	var corrupt *lessonModel.IndexCorruptionError
	var genErr *lessonModel.GenerationError
	switch {
	case errors.Is(err, lessonModel.ErrEmptyQuestion), errors.Is(err, lessonModel.ErrInvalidLesson):
		return http.StatusBadRequest
	case errors.Is(err, lessonModel.ErrNoPDF), errors.Is(err, lessonModel.ErrLessonNotFound):
		return http.StatusNotFound
	case errors.Is(err, lessonModel.ErrNotIndexed):
		return http.StatusAccepted
	case errors.As(err, &corrupt):
		return http.StatusConflict
	case errors.As(err, &genErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error, code int) string {
	var corrupt *lessonModel.IndexCorruptionError
	switch {
	case errors.As(err, &corrupt):
		return "The lesson index is damaged, please upload the PDF again"
	case code == http.StatusInternalServerError:
		return "Internal Server Error"
	default:
		return err.Error()
	}
}
