// Package hashing is a local embedding model built on feature hashing. It needs
// no weights and no network, and two runs over the same text always agree.
package hashing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/cespare/xxhash/v2"
)

const bigramWeight = 0.5

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"what": {}, "which": {}, "who": {}, "will": {}, "with": {}, "this": {}, "these": {},
	"how": {}, "why": {}, "when": {}, "does": {}, "do": {}, "did": {},
}

type Model struct {
	dim int
}

func New(dim int) *Model {
	if dim <= 0 {
		dim = config.DefaultEmbeddingDimension
	}
	return &Model{dim: dim}
}

func (m *Model) Dimension() int { return m.dim }

func (m *Model) ModelID() string { return fmt.Sprintf("hashing-xxhash64-%d", m.dim) }

func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = m.vector(text)
	}
	return out, nil
}

// vector hashes unigrams and adjacent bigrams into signed buckets and L2
// normalises the result. Text with no usable tokens maps to the zero vector.
func (m *Model) vector(text string) []float32 {
	acc := make([]float64, m.dim)
	prev := ""
	for _, tok := range Tokenize(text) {
		m.add(acc, tok, 1)
		if prev != "" {
			m.add(acc, prev+" "+tok, bigramWeight)
		}
		prev = tok
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	v := make([]float32, m.dim)
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i, x := range acc {
		v[i] = float32(x / norm)
	}
	return v
}

func (m *Model) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(m.dim)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

// Tokenize lower-cases text, splits on anything that is not a letter or digit
// and drops stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
