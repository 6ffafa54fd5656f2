package lessons

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
)

func TestGetLesson(t *testing.T) {
	ctx := context.Background()
	src, err := NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.GetLesson(ctx, "1"); !errors.Is(err, lessonModel.ErrLessonNotFound) {
		t.Errorf("unknown lesson: err = %v", err)
	}

	if err := src.Register(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	lesson, err := src.GetLesson(ctx, "1")
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if lesson.HasPDF {
		t.Error("registered lesson without upload should have no pdf")
	}

	body := "%PDF-1.4 pretend pdf body"
	n, err := src.StorePDF(ctx, "1", strings.NewReader(body))
	if err != nil || n != int64(len(body)) {
		t.Fatalf("StorePDF: %d, %v", n, err)
	}
	lesson, err = src.GetLesson(ctx, "1")
	if err != nil || !lesson.HasPDF {
		t.Fatalf("lesson after upload: %+v, %v", lesson, err)
	}
	r, err := lesson.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Size() != int64(len(body)) {
		t.Errorf("Size = %d", r.Size())
	}
	got, _ := io.ReadAll(io.NewSectionReader(r, 0, r.Size()))
	if string(got) != body {
		t.Errorf("content = %q", got)
	}
}

func TestStorePDFRegistersLesson(t *testing.T) {
	ctx := context.Background()
	src, _ := NewDirSource(t.TempDir())
	if _, err := src.StorePDF(ctx, "2", strings.NewReader("%PDF-")); err != nil {
		t.Fatal(err)
	}
	if _, err := src.GetLesson(ctx, "2"); err != nil {
		t.Errorf("uploaded lesson should be known: %v", err)
	}
}

func TestInvalidLessonId(t *testing.T) {
	src, _ := NewDirSource(t.TempDir())
	if _, err := src.GetLesson(context.Background(), "../x"); !errors.Is(err, lessonModel.ErrInvalidLesson) {
		t.Errorf("err = %v", err)
	}
}
