package vectorDB

import (
	"context"
	"testing"
)

func TestFlatSearchOrdering(t *testing.T) {
	f, err := NewFlat([][]float32{{0, 0}, {3, 4}, {1, 0}, {0, 1}}, []string{"origin", "far", "east", "north"})
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}

	hits, err := f.Search(context.Background(), []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Hit{{0, 0, "origin"}, {2, 1, "east"}, {3, 1, "north"}}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits", len(hits))
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %+v, want %+v", i, hits[i], want[i])
		}
	}
}

func TestFlatSearchKLargerThanIndex(t *testing.T) {
	f, _ := NewFlat([][]float32{{1}, {2}}, []string{"a", "b"})
	hits, err := f.Search(context.Background(), []float32{2}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].Text != "b" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestFlatSearchErrors(t *testing.T) {
	f, _ := NewFlat([][]float32{{1, 2}}, []string{"a"})
	if _, err := f.Search(context.Background(), []float32{1}, 1); err == nil {
		t.Error("dimension mismatch should fail")
	}
	hits, err := f.Search(context.Background(), []float32{1, 2}, 0)
	if err != nil || len(hits) != 0 {
		t.Errorf("k=0 should give no hits, got %v %v", hits, err)
	}
}

func TestCheckPair(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		chunks  []string
		ok      bool
	}{
		{"ok", [][]float32{{1, 2}, {3, 4}}, []string{"a", "b"}, true},
		{"count mismatch", [][]float32{{1, 2}}, []string{"a", "b"}, false},
		{"empty", nil, nil, false},
		{"ragged", [][]float32{{1, 2}, {3}}, []string{"a", "b"}, false},
		{"zero dim", [][]float32{{}}, []string{"a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CheckPair(tt.vectors, tt.chunks); (err == nil) != tt.ok {
				t.Errorf("CheckPair err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestFlatFromRows(t *testing.T) {
	if _, err := FlatFromRows(2, []float32{1, 2, 3}, []string{"a", "b"}); err == nil {
		t.Error("short data should fail")
	}
	f, err := FlatFromRows(2, []float32{1, 2, 3, 4}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("FlatFromRows: %v", err)
	}
	if r := f.Row(1); r[0] != 3 || r[1] != 4 {
		t.Errorf("row 1 = %v", r)
	}
}
