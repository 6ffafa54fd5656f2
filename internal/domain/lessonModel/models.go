package lessonModel

import (
	"context"
	"io"
	"time"
)

type IndexState string
type InternalStatus string

const (
	IndexStateQueued  IndexState = "QUEUED"
	IndexStateRunning IndexState = "RUNNING"
	IndexStateIndexed IndexState = "INDEXED"
	IndexStateSkipped IndexState = "SKIPPED"
	IndexStateFailed  IndexState = "FAILED"

	StepInit      InternalStatus = "Init"
	StepLookup    InternalStatus = "LessonLookup"
	StepExtract   InternalStatus = "Extract"
	StepChunk     InternalStatus = "Chunk"
	StepEmbed     InternalStatus = "Embed"
	StepSave      InternalStatus = "IndexSave"
	StepComplete  InternalStatus = "Complete"
	StepRetrieval InternalStatus = "Retrieval"
	StepLLM       InternalStatus = "LLM"
)

// Lesson is the slice of the course data model the pipeline cares about.
type Lesson struct {
	Id     string
	HasPDF bool
	// Open returns the PDF bytes; only valid when HasPDF is true.
	Open func() (PDFReader, error)
}

// PDFReader is what the extractor needs: random access plus a known size.
type PDFReader interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

type IndexJob struct {
	Id          string    `json:"id"`
	LessonId    string    `json:"lesson_id"`
	TraceId     string    `json:"trace_id"`
	CreatedTime time.Time `json:"created_time"`
}

// IndexStatus is the last known state of a lesson's indexing run.
type IndexStatus struct {
	LessonId    string         `json:"lesson_id"`
	JobId       string         `json:"job_id"`
	State       IndexState     `json:"state"`
	CurrentStep InternalStatus `json:"current_step"`
	Reason      string         `json:"reason,omitempty"`
	ChunkCount  int            `json:"chunk_count"`
	PageCount   int            `json:"page_count"`
	FailedPages int            `json:"failed_pages"`
	ModelId     string         `json:"model_id,omitempty"`
	QueuedAt    time.Time      `json:"queued_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Answer is the result of a question against a lesson.
type Answer struct {
	LessonId string   `json:"lesson_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Context  []string `json:"context"`
}

type StatusStore interface {
	GetStatus(ctx context.Context, lessonId string) (IndexStatus, bool)
	SaveStatus(ctx context.Context, status IndexStatus) error
	DeleteStatus(ctx context.Context, lessonId string)
}

type LessonSource interface {
	GetLesson(ctx context.Context, lessonId string) (Lesson, error)
}

// ValidateLessonId rejects ids that cannot safely name files, keys or collections.
func ValidateLessonId(id string) error {
	if id == "" || len(id) > 128 {
		return ErrInvalidLesson
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidLesson
		}
	}
	return nil
}
