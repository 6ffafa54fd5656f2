package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/data/redisStore"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

type RedisStatusStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

// GetRedisStatusStore returns nil when redis is offline so callers can fall back.
func GetRedisStatusStore(ctx context.Context, cfg config.RedisConfig) *RedisStatusStore {
	s := redisStore.GetRedisStore(ctx, cfg)
	if s == nil {
		return nil
	}
	return newRedisStatusStore(s, cfg)
}

func newRedisStatusStore(s *redisStore.Store, cfg config.RedisConfig) *RedisStatusStore {
	ttl := cfg.StatusTTL
	if ttl <= 0 {
		ttl = config.RedisStatusStoreTTL
	}
	return &RedisStatusStore{
		store:  s,
		ttl:    ttl,
		logger: logger_i.NewLogger("StatusStore"),
	}
}

func statusKey(lessonId string) string {
	return config.RedisStatusPrefix + lessonId
}

func (s *RedisStatusStore) SaveStatus(ctx context.Context, status lessonModel.IndexStatus) error {
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, status.LessonId)
	log.Debug("saving status", "state", status.State)
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, statusKey(status.LessonId), data, s.ttl)
}

func (s *RedisStatusStore) GetStatus(ctx context.Context, lessonId string) (lessonModel.IndexStatus, bool) {
	var status lessonModel.IndexStatus
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId)
	val, err := s.store.Get(ctx, statusKey(lessonId))
	if s.store.IsNil(err) {
		return status, false
	} else if err != nil {
		log.Error("Failed to read status", "error", err)
		return status, false
	}
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		log.Error("Stored status is not valid json", "error", err)
		return status, false
	}
	return status, true
}

func (s *RedisStatusStore) DeleteStatus(ctx context.Context, lessonId string) {
	if err := s.store.Del(ctx, statusKey(lessonId)); err != nil {
		s.logger.Error("Error deleting status from Redis", config.LESSON_ID_KEY, lessonId, "error", err)
	}
}

// TestStatusStore builds a store over a caller supplied redis client.
func TestStatusStore(store *redisStore.Store, cfg config.RedisConfig) *RedisStatusStore {
	return newRedisStatusStore(store, cfg)
}
