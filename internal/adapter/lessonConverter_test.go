package adapter

import (
	"net/http"
	"testing"

	"github.com/akolanti/LessonRAG/internal/api"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
)

func TestToAnswerResponse_NeverNullSources(t *testing.T) {
	got := ToAnswerResponse(lessonModel.Answer{LessonId: "1", Answer: "Paris"})
	if got.Sources == nil || got.Status != api.AnswerStatusAnswered {
		t.Errorf("got %+v", got)
	}
}

func TestBadRequest_RetryOnlyForServerSide(t *testing.T) {
	tests := []struct {
		code  int
		retry bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		if got := BadRequest("1", "x", tt.code); got.Error.Retry != tt.retry || got.Error.Code != tt.code {
			t.Errorf("code %d: got %+v", tt.code, got.Error)
		}
	}
}

func TestToIndexJobResponse(t *testing.T) {
	got := ToIndexJobResponse(lessonModel.IndexJob{Id: "j", LessonId: "42"})
	if got.StatusURL != "lessons/42/index" || got.JobId != "j" {
		t.Errorf("got %+v", got)
	}
}
