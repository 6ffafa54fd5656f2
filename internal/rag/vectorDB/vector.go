package vectorDB

import (
	"context"
	"fmt"
)

// Hit is one search result. Index is the chunk's position in the lesson.
type Hit struct {
	Index    int
	Distance float32
	Text     string
}

// Index is a loaded, immutable view of one lesson's vectors and chunk texts.
type Index interface {
	Len() int
	Dim() int
	Chunk(i int) string
	// Search returns the k nearest chunks by squared euclidean distance,
	// nearest first, ties broken by the lower chunk index.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
}

// Store persists one index per lesson. Save replaces any previous index as a
// single step; Load returns lessonModel.ErrNotIndexed when nothing was saved.
type Store interface {
	Save(ctx context.Context, lessonId string, vectors [][]float32, chunks []string) error
	Load(ctx context.Context, lessonId string) (Index, error)
	Delete(ctx context.Context, lessonId string) error
}

// CheckPair validates what is about to be saved.
func CheckPair(vectors [][]float32, chunks []string) (int, error) {
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(vectors) == 0 {
		return 0, fmt.Errorf("refusing to save an empty index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("vectors have zero dimension")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return dim, nil
}
