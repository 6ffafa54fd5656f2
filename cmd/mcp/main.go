package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/lessons"
	"github.com/akolanti/LessonRAG/internal/mcpserver"
	"github.com/akolanti/LessonRAG/internal/rag"
	"github.com/akolanti/LessonRAG/internal/rag/embedding"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcp serves the read side of the lesson index over stdio. Indexing stays with the api.
func main() {
	configPath := flag.String("config", config.DefaultYAMLPath, "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger_i.InitWriter(config.LogConfig{}, os.Stderr)
		logger_i.NewLogger("mcp").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	//stdout carries the protocol
	logger_i.InitWriter(cfg.Log, os.Stderr)
	logger := logger_i.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedder, err := embedding.Init(ctx, cfg.Embedding)
	if err != nil {
		logger.Error("Embedding model failed to load", "error", err)
		os.Exit(1)
	}
	indexStore, err := rag.NewStore(ctx, cfg)
	if err != nil {
		logger.Error("Index store is unavailable", "error", err)
		os.Exit(1)
	}
	llmProvider, err := rag.NewProvider(ctx, cfg.LLM)
	if err != nil {
		logger.Error("Language model client failed to initialize", "error", err)
		os.Exit(1)
	}
	lessonSource, err := lessons.NewDirSource(cfg.Lessons.Dir)
	if err != nil {
		logger.Error("Lesson directory is unavailable", "error", err)
		os.Exit(1)
	}

	service := rag.NewService(rag.ServiceConfig{
		Lessons:           lessonSource,
		Embedder:          embedder,
		Store:             indexStore,
		LLM:               llmProvider,
		Status:            rag.NewStatusStore(ctx, cfg.Redis),
		TopK:              cfg.Retrieval.TopK,
		RetrievalTimeout:  cfg.Retrieval.Timeout,
		GenerationTimeout: cfg.LLM.Timeout,
	})

	logger.Info("MCP server starting on stdio", "version", mcpserver.Version)
	if err := mcpserver.NewServer(service).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
