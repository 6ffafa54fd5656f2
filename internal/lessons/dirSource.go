package lessons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

// DirSource serves lessons from a directory: lesson_<id>.pdf holds the upload and
// lesson_<id>.lesson marks a lesson the course layer has saved, PDF or not.
type DirSource struct {
	dir    string
	logger *logger_i.Logger
}

type pdfFile struct {
	*os.File
	size int64
}

func (p pdfFile) Size() int64 { return p.size }

func NewDirSource(dir string) (*DirSource, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("cannot create lessons dir %s: %w", dir, err)
	}
	return &DirSource{dir: dir, logger: logger_i.NewLogger("LessonSource")}, nil
}

func (d *DirSource) pdfPath(id string) string {
	return filepath.Join(d.dir, "lesson_"+id+".pdf")
}

func (d *DirSource) markerPath(id string) string {
	return filepath.Join(d.dir, "lesson_"+id+".lesson")
}

func (d *DirSource) GetLesson(ctx context.Context, lessonId string) (lessonModel.Lesson, error) {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return lessonModel.Lesson{}, err
	}
	lesson := lessonModel.Lesson{Id: lessonId}

	st, err := os.Stat(d.pdfPath(lessonId))
	switch {
	case err == nil && st.Mode().IsRegular() && st.Size() > 0:
		lesson.HasPDF = true
		path := d.pdfPath(lessonId)
		lesson.Open = func() (lessonModel.PDFReader, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			fst, err := f.Stat()
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			return pdfFile{File: f, size: fst.Size()}, nil
		}
		return lesson, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return lessonModel.Lesson{}, fmt.Errorf("cannot stat lesson pdf: %w", err)
	}

	if _, err := os.Stat(d.markerPath(lessonId)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lessonModel.Lesson{}, lessonModel.ErrLessonNotFound
		}
		return lessonModel.Lesson{}, fmt.Errorf("cannot stat lesson marker: %w", err)
	}
	return lesson, nil
}

// Register records that a lesson exists without touching its PDF.
func (d *DirSource) Register(ctx context.Context, lessonId string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	f, err := os.OpenFile(d.markerPath(lessonId), os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("cannot register lesson: %w", err)
	}
	return f.Close()
}

// StorePDF replaces the lesson's PDF with the contents of r, at most config.MaxUploadSize bytes.
func (d *DirSource) StorePDF(ctx context.Context, lessonId string, r io.Reader) (int64, error) {
	if err := d.Register(ctx, lessonId); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(d.dir, ".lesson_"+lessonId+".*.pdf.tmp")
	if err != nil {
		return 0, fmt.Errorf("storage error: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, config.MaxUploadSize+1))
	if err == nil && n > config.MaxUploadSize {
		err = fmt.Errorf("pdf is larger than %d bytes", config.MaxUploadSize)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write error: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.pdfPath(lessonId)); err != nil {
		return 0, fmt.Errorf("cannot publish pdf: %w", err)
	}
	d.logger.WithContext(ctx).Info("Stored lesson pdf", config.LESSON_ID_KEY, lessonId, "bytes", n)
	return n, nil
}
