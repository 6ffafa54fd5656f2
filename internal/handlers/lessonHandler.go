package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/LessonRAG/internal/adapter"
	"github.com/akolanti/LessonRAG/internal/adapter/utils"
	"github.com/akolanti/LessonRAG/internal/api"
	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag"
)

// LessonFiles is the write side of the lesson store.
type LessonFiles interface {
	Register(ctx context.Context, lessonId string) error
	StorePDF(ctx context.Context, lessonId string, r io.Reader) (int64, error)
}

type LessonHandler struct {
	service    rag.Service
	files      LessonFiles
	embeddings string
}

func NewLessonHandler(service rag.Service, files LessonFiles, embeddingModel string) *LessonHandler {
	return &LessonHandler{service: service, files: files, embeddings: embeddingModel}
}

// Health godoc
// @Summary      Liveness check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /healthz [get]
func (h *LessonHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok", EmbeddingModel: h.embeddings})
}

// UploadPDF godoc
// @Summary      Upload a lesson PDF
// @Description  Stores the PDF for the lesson, replacing any earlier one, and queues indexing. Returns before indexing finishes.
// @Tags         Lessons
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path      string  true  "Lesson ID"
// @Param        pdf  formData  file    true  "The lesson PDF"
// @Success      202  {object}  api.IndexJobResponse  "Indexing queued"
// @Failure      400  {object}  api.ErrorResponse     "Missing file, not a PDF or too large"
// @Failure      500  {object}  api.ErrorResponse     "Storage error"
// @Security     BearerAuth
// @Router       /lessons/{id}/pdf [put]
func (h *LessonHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	lessonId := utils.GetChiURLParam(r, "id")
	log := logRH.WithContext(r.Context()).With(config.LESSON_ID_KEY, lessonId)
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, lessonId, err.Error())
		return
	}

	extendDeadlines(w, log, config.UploadTimeout)
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		log.Warn("Bad upload", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, lessonId, "File too large or invalid form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("pdf")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, lessonId, "Missing pdf file")
		return
	}
	defer file.Close()

	body := bufio.NewReaderSize(file, 512)
	head, _ := body.Peek(512)
	if http.DetectContentType(head) != "application/pdf" {
		log.Warn("Rejected upload that is not a pdf", "detected", http.DetectContentType(head))
		WriteErrorResponse(w, http.StatusBadRequest, lessonId, "Only PDF files are accepted")
		return
	}

	size, err := h.files.StorePDF(r.Context(), lessonId, body)
	if err != nil {
		log.Error("Could not store pdf", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, lessonId, "Storage Error")
		return
	}
	log.Info("Lesson pdf uploaded", "bytes", size)
	h.queueIndexing(w, r, lessonId)
}

// TriggerIndex godoc
// @Summary      Lesson saved hook
// @Description  Called by the course layer after a lesson is saved. Queues indexing and returns immediately; a lesson without a PDF ends up SKIPPED.
// @Tags         Lessons
// @Produce      json
// @Param        id   path      string  true  "Lesson ID"
// @Success      202  {object}  api.IndexJobResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse  "Indexing queue unavailable"
// @Security     BearerAuth
// @Router       /lessons/{id}/index [post]
func (h *LessonHandler) TriggerIndex(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	lessonId := utils.GetChiURLParam(r, "id")
	if err := h.files.Register(r.Context(), lessonId); err != nil {
		WriteErrorResponse(w, statusForError(err), lessonId, errorMessage(err, statusForError(err)))
		return
	}
	h.queueIndexing(w, r, lessonId)
}

func (h *LessonHandler) queueIndexing(w http.ResponseWriter, r *http.Request, lessonId string) {
	job, err := h.service.TriggerIndexing(r.Context(), lessonId)
	if err != nil {
		code := statusForError(err)
		if code == http.StatusInternalServerError || code == http.StatusGatewayTimeout {
			code = http.StatusServiceUnavailable
		}
		WriteErrorResponse(w, code, lessonId, "Could not queue indexing")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToIndexJobResponse(job))
}

// GetIndexStatus godoc
// @Summary      Indexing status
// @Description  The last recorded state of the lesson's indexing run.
// @Tags         Lessons
// @Produce      json
// @Param        id   path      string  true  "Lesson ID"
// @Success      200  {object}  api.IndexStatusResponse
// @Failure      404  {object}  api.ErrorResponse  "No indexing run recorded"
// @Security     BearerAuth
// @Router       /lessons/{id}/index [get]
func (h *LessonHandler) GetIndexStatus(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	lessonId := utils.GetChiURLParam(r, "id")
	status, found := h.service.IndexStatus(r.Context(), lessonId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, lessonId, "No indexing run recorded for this lesson")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIndexStatusResponse(status))
}

// DeleteIndex godoc
// @Summary      Delete the lesson index
// @Description  Removes the stored index and its status, for use when a lesson is deleted.
// @Tags         Lessons
// @Param        id   path      string  true  "Lesson ID"
// @Success      204
// @Failure      400  {object}  api.ErrorResponse
// @Security     BearerAuth
// @Router       /lessons/{id}/index [delete]
func (h *LessonHandler) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	lessonId := utils.GetChiURLParam(r, "id")
	if err := h.service.DeleteIndex(r.Context(), lessonId); err != nil {
		code := statusForError(err)
		logRH.WithContext(r.Context()).Error("Delete index failed", config.LESSON_ID_KEY, lessonId, "error", err)
		WriteErrorResponse(w, code, lessonId, errorMessage(err, code))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AskQuestion godoc
// @Summary      Ask a question about a lesson
// @Description  Answers from the lesson PDF. While indexing is still running the answer is a not-ready message with status 202.
// @Tags         Lessons
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Lesson ID"
// @Param        request  body  api.QuestionRequest  true  "The student's question"
// @Success      200  {object}  api.AnswerResponse  "Answered"
// @Success      202  {object}  api.AnswerResponse  "Lesson not indexed yet"
// @Failure      400  {object}  api.ErrorResponse   "Empty question"
// @Failure      404  {object}  api.ErrorResponse   "Lesson has no PDF"
// @Failure      409  {object}  api.ErrorResponse   "Index is damaged, re-upload"
// @Failure      502  {object}  api.ErrorResponse   "Language model failed"
// @Failure      504  {object}  api.ErrorResponse   "Language model timed out"
// @Security     BearerAuth
// @Router       /lessons/{id}/questions [post]
func (h *LessonHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	lessonId := utils.GetChiURLParam(r, "id")
	log := logRH.WithContext(r.Context()).With(config.LESSON_ID_KEY, lessonId)

	var request api.QuestionRequest
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&request); err != nil {
		log.Warn("Bad question request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, lessonId, "Bad Request")
		return
	}

	answer, err := h.service.AnswerQuestion(r.Context(), lessonId, request.Question)
	if errors.Is(err, lessonModel.ErrNotIndexed) {
		writeJsonResponse(w, http.StatusAccepted, adapter.NotIndexed(lessonId, request.Question, rag.NotIndexedMessage))
		return
	}
	if err != nil {
		code := statusForError(err)
		WriteErrorResponse(w, code, lessonId, errorMessage(err, code))
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAnswerResponse(answer))
}
