// @title           Lesson RAG API
// @version         1.0
// @description     Indexes lesson PDFs in the background and answers student questions from them.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/handlers"
	"github.com/akolanti/LessonRAG/internal/job"
	"github.com/akolanti/LessonRAG/internal/lessons"
	"github.com/akolanti/LessonRAG/internal/middleware"
	"github.com/akolanti/LessonRAG/internal/rag"
	"github.com/akolanti/LessonRAG/internal/rag/chunker"
	"github.com/akolanti/LessonRAG/internal/rag/embedding"
	"github.com/akolanti/LessonRAG/internal/rag/extract"
	"github.com/akolanti/LessonRAG/internal/rag/indexer"
	"github.com/akolanti/LessonRAG/internal/server"
	"github.com/akolanti/LessonRAG/internal/worker"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

var (
	configPath string
	listenAddr string
)

func main() {
	flag.StringVar(&configPath, "config", config.DefaultYAMLPath, "path to the yaml config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	logger_i.Init(cfg.Log)
	var logger = logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//the embedding model is loaded once, up front; no model means no service
	embedder, err := embedding.Init(serviceContext, cfg.Embedding)
	if err != nil {
		logger.Error("Embedding model failed to load", "error", err)
		os.Exit(1)
	}

	indexStore, err := rag.NewStore(serviceContext, cfg)
	if err != nil {
		logger.Error("Index store is unavailable", "backend", cfg.Index.Backend, "error", err)
		os.Exit(1)
	}
	llmProvider, err := rag.NewProvider(serviceContext, cfg.LLM)
	if err != nil {
		logger.Error("Language model client failed to initialize", "error", err)
		os.Exit(1)
	}
	lessonSource, err := lessons.NewDirSource(cfg.Lessons.Dir)
	if err != nil {
		logger.Error("Lesson directory is unavailable", "error", err)
		os.Exit(1)
	}
	splitter, err := chunker.NewSplitter(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		logger.Error("Invalid chunker settings", "error", err)
		os.Exit(1)
	}
	statusStore := rag.NewStatusStore(serviceContext, cfg.Redis)

	//init buffered job channel
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan lessonModel.IndexJob, cfg.Workers.Buffer),
		DispatcherChannel: make(chan bool, 1),
		StatusStore:       statusStore,
	})
	logger.Info("Starting job service")

	lessonIndexer := indexer.New(lessonSource, extract.New(config.PageExtractTimeout), splitter, embedder, indexStore, statusStore)
	ragService := rag.NewService(rag.ServiceConfig{
		Lessons:           lessonSource,
		Embedder:          embedder,
		Store:             indexStore,
		LLM:               llmProvider,
		Queue:             jobService,
		Status:            statusStore,
		TopK:              cfg.Retrieval.TopK,
		RetrievalTimeout:  cfg.Retrieval.Timeout,
		GenerationTimeout: cfg.LLM.Timeout,
	})

	//init worker pool
	pool := worker.NewPool(jobService, lessonIndexer, cfg.Workers)
	pool.Start()

	middleware.Init(cfg.Server)
	lessonHandler := handlers.NewLessonHandler(ragService, lessonSource, embedder.ModelID())

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		Workers:          pool,
		CloseQueue:       jobService.Close,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(cfg.Server.ListenAddr, lessonHandler)

	<-stopExecution
	logger.Info("Server stopped")
}
