package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func mustSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(size, overlap)
	if err != nil {
		t.Fatalf("NewSplitter(%d, %d): %v", size, overlap, err)
	}
	return s
}

func TestNewSplitter_RejectsBadSettings(t *testing.T) {
	tests := []struct{ size, overlap int }{
		{0, 0},
		{-5, 0},
		{100, 100},
		{100, 150},
		{100, -1},
	}
	for _, tt := range tests {
		if _, err := NewSplitter(tt.size, tt.overlap); err == nil {
			t.Errorf("NewSplitter(%d, %d) expected error", tt.size, tt.overlap)
		}
	}
}

func TestSplit_ShortInputIsOneChunk(t *testing.T) {
	s := mustSplitter(t, 1000, 200)
	chunks := s.Split("  A short lesson about photosynthesis.\n")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "A short lesson about photosynthesis." {
		t.Errorf("unexpected text %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("index = %d", chunks[0].Index)
	}
}

func TestSplit_EmptyAndWhitespace(t *testing.T) {
	s := mustSplitter(t, 1000, 200)
	for _, in := range []string{"", "   ", "\n\n\t"} {
		if got := s.Split(in); len(got) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", in, len(got))
		}
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	s := mustSplitter(t, 40, 10)
	chunks := s.Split("The capital of France is Paris. Paris is known for the Eiffel Tower.")
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "The capital of France is Paris." {
		t.Errorf("first chunk %q", chunks[0].Text)
	}
	if chunks[1].Text != "Paris is known for the Eiffel Tower." {
		t.Errorf("second chunk %q", chunks[1].Text)
	}
}

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_OverlapAndSizeBound(t *testing.T) {
	s := mustSplitter(t, 50, 20)
	text := wordText(200)
	chunks := s.Split(text)
	if len(chunks) < 10 {
		t.Fatalf("expected many chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.Text)); n > 50 || n == 0 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.Start <= prev.Start {
				t.Errorf("chunk %d does not advance: %d <= %d", i, c.Start, prev.Start)
			}
			if c.Start >= prev.End {
				t.Errorf("chunk %d does not overlap previous: start %d, prev end %d", i, c.Start, prev.End)
			}
		}
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	s := mustSplitter(t, 30, 5)
	text := strings.Repeat("x", 100)
	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Fatalf("expected hard cuts, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Text) > 30 {
			t.Errorf("chunk too long: %d", len(c.Text))
		}
	}
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	s := mustSplitter(t, 60, 0)
	text := "First paragraph talks about cells.\n\nSecond paragraph covers the nucleus."
	chunks := s.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Text != "First paragraph talks about cells." {
		t.Errorf("first chunk %q", chunks[0].Text)
	}
}

// Dropping each chunk's overlap with its predecessor and concatenating must give
// back the source, ignoring whitespace at split points.
func TestSplit_ReconstructsSource(t *testing.T) {
	inputs := []string{
		wordText(300),
		strings.Repeat("Mitochondria produce ATP. ", 80),
		"Intro line\nsecond line\n\n" + strings.Repeat("é", 250) + "\n\nÜnïcödé tail " + wordText(40),
		"The capital of France is Paris. Paris is known for the Eiffel Tower.",
	}
	for n, text := range inputs {
		for _, cfg := range []struct{ size, overlap int }{{40, 10}, {100, 30}, {1000, 200}} {
			s := mustSplitter(t, cfg.size, cfg.overlap)
			chunks := s.Split(text)
			if len(chunks) == 0 {
				t.Fatalf("input %d: no chunks", n)
			}

			source := []rune(text)
			var rebuilt strings.Builder
			for i, c := range chunks {
				if c.Text != string(source[c.Start:c.End]) {
					t.Fatalf("input %d chunk %d: text does not match its span", n, i)
				}
				skip := 0
				if i > 0 && chunks[i-1].End > c.Start {
					skip = chunks[i-1].End - c.Start
				}
				rebuilt.WriteString(string([]rune(c.Text)[skip:]))
			}

			want := strings.Join(strings.Fields(text), "")
			got := strings.Join(strings.Fields(rebuilt.String()), "")
			if got != want {
				t.Errorf("input %d size %d: reconstruction mismatch\n got %q\nwant %q", n, cfg.size, got, want)
			}
		}
	}
}

func TestTexts(t *testing.T) {
	got := Texts([]Chunk{{Text: "a"}, {Text: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Texts = %v", got)
	}
}
