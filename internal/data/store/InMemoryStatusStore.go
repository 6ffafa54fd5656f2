package store

import (
	"context"
	"sync"

	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem StatusStore")

type InMemoryStatusStore struct {
	mu       *sync.RWMutex
	statuses map[string]lessonModel.IndexStatus
}

func InitInMemoryStatusStore() *InMemoryStatusStore {
	return &InMemoryStatusStore{
		mu:       new(sync.RWMutex),
		statuses: make(map[string]lessonModel.IndexStatus),
	}
}

func (store *InMemoryStatusStore) SaveStatus(ctx context.Context, status lessonModel.IndexStatus) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.statuses[status.LessonId] = status
	inMemLogger.Debug("Saved status", "lessonId", status.LessonId, "state", status.State)
	return nil
}

func (store *InMemoryStatusStore) GetStatus(ctx context.Context, lessonId string) (lessonModel.IndexStatus, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	result, found := store.statuses[lessonId]
	return result, found
}

func (store *InMemoryStatusStore) DeleteStatus(ctx context.Context, lessonId string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.statuses, lessonId)
}
