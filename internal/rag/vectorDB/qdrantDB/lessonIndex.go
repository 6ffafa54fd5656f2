package qdrantDB

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadIndex   = "chunk_index"
	payloadContent = "content"
)

func aliasName(lessonId string) string {
	return fmt.Sprintf(config.QdrantCollectionAlias, lessonId)
}

// newGeneration names are time ordered (uuid v7), so a later save sorts after an earlier one.
func newGeneration(lessonId string) string {
	return aliasName(lessonId) + "_" + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// isGeneration matches lesson_<id>_<32 hex>, so lesson 4 never claims lesson 4_1's collections.
func isGeneration(lessonId, collection string) bool {
	rest, ok := strings.CutPrefix(collection, aliasName(lessonId)+"_")
	if !ok || len(rest) != 32 {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func (s *Store) Save(ctx context.Context, lessonId string, vectors [][]float32, chunks []string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	dim, err := vectorDB.CheckPair(vectors, chunks)
	if err != nil {
		return err
	}
	log := logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId)

	collection := newGeneration(lessonId)
	if err := createCollection(ctx, s.client, collection, dim); err != nil {
		return fmt.Errorf("qdrant create collection failed: %w", err)
	}
	if err := s.upsert(ctx, collection, vectors, chunks); err != nil {
		s.dropCollection(ctx, collection)
		return err
	}

	previous, err := s.resolve(ctx, lessonId)
	if err != nil {
		s.dropCollection(ctx, collection)
		return err
	}
	ops := []*qdrant.AliasOperations{}
	if previous != "" {
		ops = append(ops, qdrant.NewAliasDelete(aliasName(lessonId)))
	}
	ops = append(ops, qdrant.NewAliasCreate(aliasName(lessonId), collection))
	if err := s.client.UpdateAliases(ctx, ops); err != nil {
		s.dropCollection(ctx, collection)
		return fmt.Errorf("qdrant alias switch failed: %w", err)
	}
	log.Info("Index published", "collection", collection, "chunks", len(chunks))

	// the generation just replaced survives one more round for readers still on it
	s.pruneGenerations(ctx, lessonId, collection, collection, previous)
	return nil
}

func (s *Store) upsert(ctx context.Context, collection string, vectors [][]float32, chunks []string) error {
	for start := 0; start < len(chunks); start += config.QdrantUpsertBatchSize {
		end := min(start+config.QdrantUpsertBatchSize, len(chunks))
		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(i)),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadIndex:   i,
					payloadContent: chunks[i],
				}),
			})
		}
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant upsert failed: %w", err)
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context, lessonId string) (vectorDB.Index, error) {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return nil, err
	}
	collection, err := s.resolve(ctx, lessonId)
	if err != nil {
		return nil, err
	}
	if collection == "" {
		return nil, lessonModel.ErrNotIndexed
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("qdrant collection info failed: %w", err)
	}
	dim := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())

	count, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: collection, Exact: qdrant.PtrOf(true)})
	if err != nil {
		return nil, fmt.Errorf("qdrant count failed: %w", err)
	}
	chunks, err := s.fetchChunks(ctx, collection, int(count))
	if err != nil {
		return nil, &lessonModel.IndexCorruptionError{LessonId: lessonId, Reason: "chunk payloads incomplete", Err: err}
	}
	if dim <= 0 {
		return nil, &lessonModel.IndexCorruptionError{LessonId: lessonId, Reason: "collection has no vector size"}
	}
	return &remoteIndex{client: s.client, collection: collection, dim: dim, chunks: chunks}, nil
}

func (s *Store) fetchChunks(ctx context.Context, collection string, count int) ([]string, error) {
	ids := make([]*qdrant.PointId, count)
	for i := range ids {
		ids[i] = qdrant.NewIDNum(uint64(i))
	}
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	chunks := make([]string, count)
	seen := 0
	for _, p := range points {
		i := int(p.GetId().GetNum())
		if i < 0 || i >= count {
			return nil, fmt.Errorf("point id %d out of range", i)
		}
		chunks[i] = p.GetPayload()[payloadContent].GetStringValue()
		seen++
	}
	if seen != count {
		return nil, fmt.Errorf("got %d of %d points", seen, count)
	}
	return chunks, nil
}

func (s *Store) Delete(ctx context.Context, lessonId string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	current, err := s.resolve(ctx, lessonId)
	if err != nil {
		return err
	}
	if current != "" {
		if err := s.client.UpdateAliases(ctx, []*qdrant.AliasOperations{qdrant.NewAliasDelete(aliasName(lessonId))}); err != nil {
			return fmt.Errorf("qdrant alias delete failed: %w", err)
		}
	}
	s.pruneGenerations(ctx, lessonId, "")
	return nil
}

// resolve returns the collection the lesson alias points at, "" when there is none.
func (s *Store) resolve(ctx context.Context, lessonId string) (string, error) {
	aliases, err := s.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("qdrant list aliases failed: %w", err)
	}
	name := aliasName(lessonId)
	for _, a := range aliases {
		if a.GetAliasName() == name {
			return a.GetCollectionName(), nil
		}
	}
	return "", nil
}

// pruneGenerations drops the lesson's dead collections. The alias is resolved
// again here because a concurrent save may have switched it since ours.
func (s *Store) pruneGenerations(ctx context.Context, lessonId, newest string, keep ...string) {
	live, err := s.resolve(ctx, lessonId)
	if err != nil {
		logger.Warn("Could not resolve alias for pruning", config.LESSON_ID_KEY, lessonId, "error", err)
		return
	}
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		logger.Warn("Could not list collections for pruning", config.LESSON_ID_KEY, lessonId, "error", err)
		return
	}
	for _, c := range staleGenerations(lessonId, collections, live, newest, keep...) {
		s.dropCollection(ctx, c)
	}
}

// staleGenerations picks the lesson's generations that can go: not the live one,
// not one in keep, and not one created after newest, which belongs to a save
// still in flight. An empty newest has no such cutoff.
func staleGenerations(lessonId string, collections []string, live, newest string, keep ...string) []string {
	var stale []string
	for _, c := range collections {
		if !isGeneration(lessonId, c) || c == live || slices.Contains(keep, c) {
			continue
		}
		if newest != "" && c > newest {
			continue
		}
		stale = append(stale, c)
	}
	return stale
}

func (s *Store) dropCollection(ctx context.Context, collection string) {
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		logger.Warn("Could not drop collection", "collection", collection, "error", err)
	}
}
