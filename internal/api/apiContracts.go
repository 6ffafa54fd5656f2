package api

import "time"

type AnswerStatus string

const (
	AnswerStatusAnswered   AnswerStatus = "answered"
	AnswerStatusNotIndexed AnswerStatus = "not_indexed"
)

type ErrorResponse struct {
	Id    string         `json:"id" example:"42"`
	Error *OutgoingError `json:"error"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"lesson has no pdf attached"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type IndexJobResponse struct {
	JobId     string `json:"job_id" example:"2f1c7c4e-9a43-4a55-a0e4-2b1f9f0f3b11"`
	LessonId  string `json:"lesson_id" example:"42"`
	StatusURL string `json:"status_url" example:"lessons/42/index"`
}

type IndexStatusResponse struct {
	LessonId    string    `json:"lesson_id" example:"42"`
	JobId       string    `json:"job_id"`
	State       string    `json:"state" example:"INDEXED"`
	CurrentStep string    `json:"current_step" example:"Complete"`
	Reason      string    `json:"reason,omitempty"`
	ChunkCount  int       `json:"chunk_count" example:"18"`
	PageCount   int       `json:"page_count" example:"6"`
	FailedPages int       `json:"failed_pages" example:"0"`
	ModelId     string    `json:"model_id,omitempty" example:"hashing-xxhash64-384"`
	QueuedAt    time.Time `json:"queued_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AnswerResponse struct {
	LessonId string       `json:"lesson_id" example:"42"`
	Question string       `json:"question" example:"What is the capital of France?"`
	Status   AnswerStatus `json:"status" example:"answered"`
	Answer   string       `json:"answer" example:"Paris."`
	Sources  []string     `json:"sources"`
}

type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	EmbeddingModel string `json:"embedding_model" example:"hashing-xxhash64-384"`
}

// requests---------------------

type QuestionRequest struct {
	Question string `json:"question" validate:"required" example:"What is the capital of France?"`
}
