package qdrantDB

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
)

// remoteIndex is pinned to one generation, so a reader never straddles a publish.
type remoteIndex struct {
	client     *qdrant.Client
	collection string
	dim        int
	chunks     []string
}

func (r *remoteIndex) Len() int { return len(r.chunks) }

func (r *remoteIndex) Dim() int { return r.dim }

func (r *remoteIndex) Chunk(i int) string { return r.chunks[i] }

func (r *remoteIndex) Search(ctx context.Context, query []float32, k int) ([]vectorDB.Hit, error) {
	if len(query) != r.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), r.dim)
	}
	if k <= 0 {
		return []vectorDB.Hit{}, nil
	}
	loggr := logger.WithContext(ctx)
	result, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k + config.QdrantTieSlack)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "collection", r.collection, "error", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}
	hits := toHits(result, k)
	loggr.Debug("Found matches", "count", len(hits), "collection", r.collection)
	return hits, nil
}

// toHits converts qdrant's euclidean score to squared distance, restores the
// lower-index-first tie order and keeps the first k. The query over-fetches so a
// tie straddling the k-th place is settled here rather than by qdrant.
func toHits(points []*qdrant.ScoredPoint, k int) []vectorDB.Hit {
	hits := make([]vectorDB.Hit, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		hits = append(hits, vectorDB.Hit{
			Index:    int(payload[payloadIndex].GetIntegerValue()),
			Distance: p.GetScore() * p.GetScore(),
			Text:     payload[payloadContent].GetStringValue(),
		})
	}
	slices.SortStableFunc(hits, func(a, b vectorDB.Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

var _ vectorDB.Store = (*Store)(nil)
