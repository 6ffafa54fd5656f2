package qdrantDB

import (
	"strings"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGenerationNaming(t *testing.T) {
	gen := newGeneration("4")
	if !strings.HasPrefix(gen, "lesson_4_") {
		t.Fatalf("generation %q should sit under the lesson alias", gen)
	}
	if !isGeneration("4", gen) {
		t.Errorf("%q not recognised as a generation of lesson 4", gen)
	}
	if isGeneration("4", strings.Replace(gen, "lesson_4_", "lesson_4_1_", 1)) {
		t.Error("lesson 4 must not claim lesson 4_1's collections")
	}
	if isGeneration("4", "lesson_4") {
		t.Error("the alias itself is not a generation")
	}
	if newGeneration("4") == gen {
		t.Error("generations should be unique")
	}
}

func point(index int, score float32, text string) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Id:    qdrant.NewIDNum(uint64(index)),
		Score: score,
		Payload: qdrant.NewValueMap(map[string]any{
			payloadIndex:   index,
			payloadContent: text,
		}),
	}
}

func TestToHits(t *testing.T) {
	hits := toHits([]*qdrant.ScoredPoint{
		point(5, 2, "five"),
		point(3, 1, "three"),
		point(1, 1, "one"),
	}, 3)
	if len(hits) != 3 {
		t.Fatalf("got %d hits", len(hits))
	}
	wantOrder := []int{1, 3, 5}
	for i, h := range hits {
		if h.Index != wantOrder[i] {
			t.Errorf("hit %d index %d, want %d", i, h.Index, wantOrder[i])
		}
	}
	if hits[2].Distance != 4 || hits[2].Text != "five" {
		t.Errorf("score should be squared: %+v", hits[2])
	}
}

func TestToHits_TieAtCutoffKeepsLowestIndex(t *testing.T) {
	// qdrant may order equal scores by id any way it likes
	hits := toHits([]*qdrant.ScoredPoint{
		point(0, 0.5, "zero"),
		point(9, 1, "nine"),
		point(7, 1, "seven"),
		point(2, 1, "two"),
		point(4, 3, "four"),
	}, 2)
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Index != 0 || hits[1].Index != 2 {
		t.Errorf("hits = %+v, want indexes 0 then 2", hits)
	}
}

func TestStaleGenerations(t *testing.T) {
	older := newGeneration("4")
	mine := newGeneration("4")
	replaced := newGeneration("4")
	other := newGeneration("4")
	inFlight := newGeneration("4")
	all := []string{older, mine, replaced, other, inFlight, newGeneration("5"), "lesson_4"}

	tests := []struct {
		name   string
		live   string
		newest string
		keep   []string
		want   []string
	}{
		{
			name:   "own publish is live",
			live:   mine,
			newest: mine,
			keep:   []string{mine, older},
			want:   []string{},
		},
		{
			// a concurrent save switched the alias after ours
			name:   "later save is live",
			live:   other,
			newest: mine,
			keep:   []string{mine, replaced},
			want:   []string{older},
		},
		{
			name:   "delete drops everything",
			live:   "",
			newest: "",
			want:   []string{older, mine, replaced, other, inFlight},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := staleGenerations("4", all, tt.live, tt.newest, tt.keep...)
			if len(got) != len(tt.want) {
				t.Fatalf("stale = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stale[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
			for _, c := range got {
				if c == tt.live {
					t.Errorf("live collection %s would be dropped", c)
				}
			}
		})
	}
}
