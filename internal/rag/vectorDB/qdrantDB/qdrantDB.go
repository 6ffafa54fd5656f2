package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var (
	logger         *logger_i.Logger
	qdrantInstance *qdrant.Client
	initErr        error
	once           sync.Once
)

// Store keeps every indexing run of a lesson in its own collection
// lesson_<id>_<generation>; the alias lesson_<id> points at the live one.
type Store struct {
	client *qdrant.Client
}

// GetQdrantStore connects once per process and closes the client when ctx ends.
func GetQdrantStore(ctx context.Context, cfg config.QdrantConfig) (*Store, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		qdrantInstance, initErr = newClient(ctx, cfg)
		if initErr == nil {
			go closeQdrant(ctx, qdrantInstance)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return &Store{client: qdrantInstance}, nil
}

func newClient(ctx context.Context, cfg config.QdrantConfig) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(max(cfg.PoolSize, 1)),
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{Time: config.QdrantKeepAliveTimeout}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectTimeout)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("qdrant is offline: %w", err)
	}
	logger.Info("Qdrant connected", "host", cfg.Host, "port", cfg.Port)
	return client, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dim int) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("collection %s already exists", collectionName)
	}
	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Euclid,
		}),
	})
}
