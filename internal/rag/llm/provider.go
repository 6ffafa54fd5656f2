package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the text generation collaborator. It may fail or time out; callers
// bound it with their own context deadline.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// BuildPrompt puts the retrieved lesson context ahead of the student's question.
func BuildPrompt(question string, lessonContext string) string {
	var b strings.Builder
	b.WriteString("Lesson context:\n")
	if strings.TrimSpace(lessonContext) == "" {
		b.WriteString("(no context available)\n")
	} else {
		b.WriteString(lessonContext)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nStudent question: %s", strings.TrimSpace(question))
	return b.String()
}
