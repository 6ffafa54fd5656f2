package vectorDB

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// Flat is an exhaustive squared-L2 index over vectors held row-major in one slice.
type Flat struct {
	dim    int
	data   []float32
	chunks []string
}

func NewFlat(vectors [][]float32, chunks []string) (*Flat, error) {
	dim, err := CheckPair(vectors, chunks)
	if err != nil {
		return nil, err
	}
	data := make([]float32, 0, dim*len(vectors))
	for _, v := range vectors {
		data = append(data, v...)
	}
	return &Flat{dim: dim, data: data, chunks: slices.Clone(chunks)}, nil
}

// FlatFromRows wraps already flattened rows; len(data) must be dim*len(chunks).
func FlatFromRows(dim int, data []float32, chunks []string) (*Flat, error) {
	if dim <= 0 || len(data) != dim*len(chunks) {
		return nil, fmt.Errorf("have %d values for %d chunks of dimension %d", len(data), len(chunks), dim)
	}
	return &Flat{dim: dim, data: data, chunks: chunks}, nil
}

func (f *Flat) Len() int { return len(f.chunks) }

func (f *Flat) Dim() int { return f.dim }

func (f *Flat) Chunk(i int) string { return f.chunks[i] }

func (f *Flat) Row(i int) []float32 { return f.data[i*f.dim : (i+1)*f.dim] }

func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), f.dim)
	}
	if k <= 0 {
		return []Hit{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]Hit, len(f.chunks))
	for i := range f.chunks {
		hits[i] = Hit{Index: i, Distance: squaredL2(query, f.Row(i)), Text: f.chunks[i]}
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return hits[:min(k, len(hits))], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
