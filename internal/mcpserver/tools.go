package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "v1.0.0"

type AskLessonInput struct {
	LessonId string `json:"lesson_id" jsonschema:"id of the lesson whose PDF should answer the question"`
	Question string `json:"question" jsonschema:"the student's question"`
}

type AskLessonOutput struct {
	Status  string   `json:"status"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type LessonContextInput struct {
	LessonId string `json:"lesson_id" jsonschema:"id of the lesson to search"`
	Question string `json:"question" jsonschema:"text to find relevant passages for"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages, defaults to the configured top k"`
}

type LessonContextOutput struct {
	Context string `json:"context"`
}

type IndexStatusInput struct {
	LessonId string `json:"lesson_id" jsonschema:"id of the lesson"`
}

type IndexStatusOutput struct {
	Found       bool   `json:"found"`
	State       string `json:"state,omitempty"`
	CurrentStep string `json:"current_step,omitempty"`
	Reason      string `json:"reason,omitempty"`
	ChunkCount  int    `json:"chunk_count"`
}

type tools struct {
	service rag.Service
	logger  *logger_i.Logger
}

// NewServer exposes the lesson service as mcp tools.
func NewServer(service rag.Service) *mcp.Server {
	t := &tools{service: service, logger: logger_i.NewLogger("MCP")}
	server := mcp.NewServer(&mcp.Implementation{Name: "lessonrag", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_lesson",
		Description: "Answer a student's question from the lesson's PDF.",
	}, t.askLesson)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lesson_context",
		Description: "Return the lesson passages nearest to a question, without generating an answer.",
	}, t.lessonContext)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lesson_index_status",
		Description: "Report whether a lesson's PDF has been indexed.",
	}, t.indexStatus)
	return server
}

func (t *tools) askLesson(ctx context.Context, req *mcp.CallToolRequest, in AskLessonInput) (*mcp.CallToolResult, AskLessonOutput, error) {
	answer, err := t.service.AnswerQuestion(ctx, in.LessonId, in.Question)
	if errors.Is(err, lessonModel.ErrNotIndexed) {
		return nil, AskLessonOutput{Status: "not_indexed", Answer: rag.NotIndexedMessage, Sources: []string{}}, nil
	}
	if err != nil {
		t.logger.Warn("ask_lesson failed", config.LESSON_ID_KEY, in.LessonId, "error", err)
		return nil, AskLessonOutput{}, fmt.Errorf("cannot answer: %w", err)
	}
	sources := answer.Context
	if sources == nil {
		sources = []string{}
	}
	return nil, AskLessonOutput{Status: "answered", Answer: answer.Answer, Sources: sources}, nil
}

func (t *tools) lessonContext(ctx context.Context, req *mcp.CallToolRequest, in LessonContextInput) (*mcp.CallToolResult, LessonContextOutput, error) {
	text, err := t.service.RetrieveContext(ctx, in.LessonId, in.Question, in.K)
	if err != nil {
		return nil, LessonContextOutput{}, err
	}
	return nil, LessonContextOutput{Context: text}, nil
}

func (t *tools) indexStatus(ctx context.Context, req *mcp.CallToolRequest, in IndexStatusInput) (*mcp.CallToolResult, IndexStatusOutput, error) {
	status, found := t.service.IndexStatus(ctx, in.LessonId)
	if !found {
		return nil, IndexStatusOutput{Found: false}, nil
	}
	return nil, IndexStatusOutput{
		Found:       true,
		State:       string(status.State),
		CurrentStep: string(status.CurrentStep),
		Reason:      status.Reason,
		ChunkCount:  status.ChunkCount,
	}, nil
}
