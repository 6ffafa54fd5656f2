package chunker

import (
	"fmt"
	"strings"
	"unicode"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// The empty separator is the hard character cut.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is one window of the source text. Start and End are rune offsets
// into the source, so Text == string([]rune(source)[Start:End]).
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Splitter is a recursive character splitter. Sizes are counted in runes.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

type span struct {
	start int
	end   int
}

func (s span) len() int { return s.end - s.start }

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0,%d), got %d", size, overlap)
	}
	return &Splitter{size: size, overlap: overlap, separators: DefaultSeparators}, nil
}

func (s *Splitter) Size() int    { return s.size }
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into ordered overlapping chunks. Whitespace-only input gives no chunks.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	spans := s.splitSpan(runes, span{0, len(runes)}, s.separators)

	chunks := make([]Chunk, 0, len(spans))
	for _, sp := range spans {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[sp.start:sp.end]),
			Start: sp.start,
			End:   sp.end,
		})
	}
	return chunks
}

// Texts returns just the chunk strings, in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func (s *Splitter) splitSpan(runes []rune, sp span, separators []string) []span {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(string(runes[sp.start:sp.end]), candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var out []span
	var good []span
	for _, piece := range cut(runes, sp, sep) {
		if piece.len() < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(runes, good)...)
			good = nil
		}
		if len(rest) == 0 {
			if t, ok := trim(runes, piece); ok {
				out = append(out, t)
			}
			continue
		}
		out = append(out, s.splitSpan(runes, piece, rest)...)
	}
	if len(good) > 0 {
		out = append(out, s.merge(runes, good)...)
	}
	return out
}

// merge packs contiguous pieces into windows of at most size runes, carrying
// up to overlap runes of trailing pieces into the next window.
func (s *Splitter) merge(runes []rune, pieces []span) []span {
	var docs []span
	var current []span
	total := 0

	emit := func() {
		if len(current) == 0 {
			return
		}
		if t, ok := trim(runes, span{current[0].start, current[len(current)-1].end}); ok {
			docs = append(docs, t)
		}
	}

	for _, piece := range pieces {
		l := piece.len()
		if total+l > s.size && len(current) > 0 {
			emit()
			for total > s.overlap || (total+l > s.size && total > 0) {
				total -= current[0].len()
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l
	}
	emit()
	return docs
}

// cut splits sp on sep, keeping each separator at the end of the piece before it.
func cut(runes []rune, sp span, sep string) []span {
	if sep == "" {
		out := make([]span, 0, sp.len())
		for i := sp.start; i < sp.end; i++ {
			out = append(out, span{i, i + 1})
		}
		return out
	}

	sepRunes := []rune(sep)
	var out []span
	pieceStart := sp.start
	for i := sp.start; i+len(sepRunes) <= sp.end; {
		if hasPrefix(runes[i:sp.end], sepRunes) {
			out = append(out, span{pieceStart, i + len(sepRunes)})
			i += len(sepRunes)
			pieceStart = i
			continue
		}
		i++
	}
	if pieceStart < sp.end {
		out = append(out, span{pieceStart, sp.end})
	}
	return out
}

func hasPrefix(runes, prefix []rune) bool {
	if len(runes) < len(prefix) {
		return false
	}
	for i := range prefix {
		if runes[i] != prefix[i] {
			return false
		}
	}
	return true
}

func trim(runes []rune, sp span) (span, bool) {
	for sp.start < sp.end && unicode.IsSpace(runes[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && unicode.IsSpace(runes[sp.end-1]) {
		sp.end--
	}
	return sp, sp.start < sp.end
}
