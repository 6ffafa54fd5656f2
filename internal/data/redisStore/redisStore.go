package redisStore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    *logger_i.Logger
	once      sync.Once
)

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared client for cfg.DB, or nil when redis is unreachable.
func GetRedisStore(ctx context.Context, cfg config.RedisConfig) *Store {
	mu.RLock()
	instance, exists := instances[cfg.DB]
	mu.RUnlock()

	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[cfg.DB]; exists {
		return instance
	}
	return createNewStore(ctx, cfg)
}

func initLogger(dbType int) {
	if logger == nil {
		logger = logger_i.NewLogger(fmt.Sprintf("Redis Store: %d", dbType))
	}
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for db, store := range instances {
		if err := store.client.Close(); err != nil {
			logger.Error("Error closing redis client", "error", err)
		}
		delete(instances, db)
	}
	logger.Info("Redis Store Closed successfully")
}

func createNewStore(ctx context.Context, cfg config.RedisConfig) *Store {
	initLogger(cfg.DB)

	newClient := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "addr", cfg.Addr, "error", err)
		_ = newClient.Close()
		return nil
	}

	logger.Info("Redis connected", "addr", cfg.Addr, "db", cfg.DB)

	newStore := &Store{
		client: newClient,
		Type:   cfg.DB,
	}

	instances[cfg.DB] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore
}

// NewTestStore wraps an existing client, for tests against miniredis.
func NewTestStore(client *redis.Client) *Store {
	initLogger(0)
	return &Store{client: client}
}
