package adapter

import (
	"fmt"

	"github.com/akolanti/LessonRAG/internal/api"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
)

func ToIndexJobResponse(job lessonModel.IndexJob) api.IndexJobResponse {
	return api.IndexJobResponse{
		JobId:     job.Id,
		LessonId:  job.LessonId,
		StatusURL: fmt.Sprintf("lessons/%s/index", job.LessonId),
	}
}

func ToIndexStatusResponse(status lessonModel.IndexStatus) api.IndexStatusResponse {
	return api.IndexStatusResponse{
		LessonId:    status.LessonId,
		JobId:       status.JobId,
		State:       string(status.State),
		CurrentStep: string(status.CurrentStep),
		Reason:      status.Reason,
		ChunkCount:  status.ChunkCount,
		PageCount:   status.PageCount,
		FailedPages: status.FailedPages,
		ModelId:     status.ModelId,
		QueuedAt:    status.QueuedAt,
		UpdatedAt:   status.UpdatedAt,
	}
}

func ToAnswerResponse(answer lessonModel.Answer) api.AnswerResponse {
	sources := answer.Context
	if sources == nil {
		sources = []string{}
	}
	return api.AnswerResponse{
		LessonId: answer.LessonId,
		Question: answer.Question,
		Status:   api.AnswerStatusAnswered,
		Answer:   answer.Answer,
		Sources:  sources,
	}
}

// NotIndexed is the friendly answer for a lesson whose index is not ready.
func NotIndexed(lessonId, question, message string) api.AnswerResponse {
	return api.AnswerResponse{
		LessonId: lessonId,
		Question: question,
		Status:   api.AnswerStatusNotIndexed,
		Answer:   message,
		Sources:  []string{},
	}
}

func BadRequest(id string, error string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: &api.OutgoingError{
			Code:    code,
			Message: error,
			Retry:   code >= 500 || code == 429,
		},
	}
}
