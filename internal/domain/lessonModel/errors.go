package lessonModel

import (
	"errors"
	"fmt"
)

var (
	ErrNotIndexed     = errors.New("lesson is not indexed yet")
	ErrEmptyDocument  = errors.New("lesson pdf has no extractable text")
	ErrNoPDF          = errors.New("lesson has no pdf attached")
	ErrEmptyQuestion  = errors.New("question is empty")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrInvalidLesson  = errors.New("invalid lesson id")
)

// ExtractionError is a failure to read text out of a pdf. Page is 0 when the
// whole document could not be opened.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("pdf extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("pdf extraction failed on page %d: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IndexCorruptionError means a stored index exists but cannot be trusted.
type IndexCorruptionError struct {
	LessonId string
	Reason   string
	Err      error
}

func (e *IndexCorruptionError) Error() string {
	msg := fmt.Sprintf("index for lesson %s is corrupt: %s", e.LessonId, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IndexCorruptionError) Unwrap() error { return e.Err }

// GenerationError wraps a failed call to the language model.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
