package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/dslipak/pdf"
)

var (
	errNullPage    = errors.New("page object is null")
	errPageTimeout = errors.New("page extraction timed out")
	errEmptyInput  = errors.New("pdf stream is empty")
)

// Result is the text of a document plus how many pages gave nothing back.
type Result struct {
	Text        string
	Pages       int
	FailedPages int
}

// pageSource is the part of a pdf reader the extractor walks. Page numbers are 1-based.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type pdfSource struct {
	reader *pdf.Reader
}

func (s pdfSource) NumPage() int { return s.reader.NumPage() }

func (s pdfSource) PageText(num int) (string, error) {
	page := s.reader.Page(num)
	if page.V.IsNull() {
		return "", errNullPage
	}
	return page.GetPlainText(nil)
}

type Extractor struct {
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func New(pageTimeout time.Duration) *Extractor {
	if pageTimeout <= 0 {
		pageTimeout = config.PageExtractTimeout
	}
	return &Extractor{
		pageTimeout: pageTimeout,
		logger:      logger_i.NewLogger("PDF Extractor"),
	}
}

// ExtractBytes is Extract over an in-memory pdf.
func (e *Extractor) ExtractBytes(ctx context.Context, b []byte) (Result, error) {
	return e.Extract(ctx, bytes.NewReader(b), int64(len(b)))
}

// Extract reads the pdf page by page. A page that errors, panics, times out or
// has no text contributes an empty string; only a document that cannot be
// opened at all is an error.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (Result, error) {
	if size <= 0 {
		return Result{}, &lessonModel.ExtractionError{Err: errEmptyInput}
	}
	reader, err := openReader(r, size)
	if err != nil {
		return Result{}, &lessonModel.ExtractionError{Err: err}
	}
	return e.extractPages(ctx, pdfSource{reader: reader})
}

func openReader(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader = nil
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	reader, err = pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return reader, nil
}

func (e *Extractor) extractPages(ctx context.Context, src pageSource) (Result, error) {
	log := e.logger.WithContext(ctx)
	numPages := src.NumPage()
	log.Debug("extractPages", "number of pages", numPages)

	res := Result{Pages: numPages}
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		content, err := e.protectExtract(src, i)
		if err != nil {
			log.Warn("Skipping page", "page", i, "error", &lessonModel.ExtractionError{Page: i, Err: err})
			res.FailedPages++
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}
	// pages are concatenated as extracted, with no separator of our own
	res.Text = strings.Join(pages, "")
	return res, nil
}

// protectExtract isolates one page: the pdf library can hang or panic on odd content streams.
func (e *Extractor) protectExtract(src pageSource, num int) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{"", fmt.Errorf("panic: %v", rec)}
			}
		}()
		content, err := src.PageText(num)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errPageTimeout
	}
}
