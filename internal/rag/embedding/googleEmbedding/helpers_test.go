package googleEmbedding

import (
	"errors"
	"testing"

	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestBatches(t *testing.T) {
	texts := make([]string, 250)
	got := batches(texts, 100)
	if len(got) != 3 || len(got[0]) != 100 || len(got[2]) != 50 {
		t.Errorf("batch sizes wrong: %d batches", len(got))
	}
	if batches(nil, 100) != nil {
		t.Error("no texts should give no batches")
	}
}

func TestGetContent(t *testing.T) {
	c := getContent([]string{"one", "two"})
	if len(c) != 2 || c[1].Parts[0].Text != "two" {
		t.Errorf("unexpected content %+v", c)
	}
}

func TestDoRetry(t *testing.T) {
	log := logger_i.NewLogger("test")
	if !doRetry(status.Error(codes.ResourceExhausted, "quota"), log) {
		t.Error("resource exhausted should be retried")
	}
	if doRetry(status.Error(codes.InvalidArgument, "bad"), log) {
		t.Error("invalid argument should not be retried")
	}
	if doRetry(errors.New("plain"), log) {
		t.Error("plain errors should not be retried")
	}
}
