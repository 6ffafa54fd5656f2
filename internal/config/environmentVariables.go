package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD  = slog.LevelInfo
	TRACE_ID_KEY    = "traceId"
	LESSON_ID_KEY   = "lessonId"
	ENV_PREFIX      = "LESSONRAG_"
	DefaultYAMLPath = "lessonrag.yaml"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	RateLimiterIdleTTL          = 10 * time.Minute

	//chunking, same defaults the lesson pipeline has always used
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 3

	//embeddings
	DefaultEmbeddingProvider  = "hashing"
	DefaultEmbeddingDimension = 384 //all-MiniLM-L6-v2 sized
	DefaultEmbeddingModel     = "all-MiniLM-L6-v2"
	GoogleEmbeddingModel      = "gemini-embedding-001"
	EmbeddingProbeText        = "lesson index warmup"

	//index store
	DefaultIndexBackend   = "file"
	DefaultIndexDir       = "vector_indexes"
	IndexLockRetryDelay   = 10 * time.Millisecond
	IndexLockTimeout      = 30 * time.Second
	QdrantCollectionAlias = "lesson_%s"

	//lessons
	DefaultLessonsDir = "lesson_files"
	MaxUploadSize     = 32 << 20 //32mb
	UploadTimeout     = 10 * time.Minute

	//workers
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	BufferLimit                     = 100
	IndexJobTimeout                 = 10 * time.Minute
	PageExtractTimeout              = 10 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 2 * time.Minute //answers wait on generation
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	WorkerDrainTimeout     = 30 * time.Second //then running index jobs are cancelled
	WorkerCancelGrace      = 5 * time.Second
	ServerListenAddr       = ":3000"

	//qa path, generation gets its own budget
	RetrievalTimeout  = 15 * time.Second
	GenerationTimeout = 90 * time.Second

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantUpsertBatchSize  = 256
	QdrantTieSlack         = 8 //extra results fetched to settle ties at the k-th place
	QdrantConnectTimeout   = 5 * time.Second
	QdrantKeepAliveTimeout = 30 * time.Second

	//llm
	DefaultLLMProvider       = "openai"
	DefaultLLMBaseURL        = "http://localhost:11434/v1" //local model server
	DefaultLLMModel          = "llama3.2"
	GeminiModelName          = "gemini-2.5-flash-lite"
	ModelTemperature float32 = 0.2
	ModelContext             = "You are a teaching assistant. Answer the student's question using only the lesson context provided. If the context does not contain the answer, say you don't know."

	BreakerMaxRequests  = 3
	BreakerInterval     = 30 * time.Second
	BreakerOpenTimeout  = 60 * time.Second
	BreakerMinRequests  = 5
	BreakerFailureRatio = 0.6

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisStatusStore    = 0
	RedisStatusStoreTTL = 7 * 24 * time.Hour
	RedisStatusPrefix   = "lesson-index-status:"
)
