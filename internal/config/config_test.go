package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunker.Size != DefaultChunkSize || cfg.Chunker.Overlap != DefaultChunkOverlap {
		t.Errorf("chunker defaults: got %+v", cfg.Chunker)
	}
	if cfg.Retrieval.TopK != DefaultTopK {
		t.Errorf("top k: got %d want %d", cfg.Retrieval.TopK, DefaultTopK)
	}
	if cfg.Index.Dir != DefaultIndexDir {
		t.Errorf("index dir: got %s", cfg.Index.Dir)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "lessonrag.yaml")
	body := `
chunker:
  size: 500
  overlap: 50
index:
  dir: /tmp/idx
llm:
  provider: gemini
  timeout: 45s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LESSONRAG_CHUNK_OVERLAP", "100")
	t.Setenv("LESSONRAG_TOP_K", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunker.Size != 500 {
		t.Errorf("size from yaml: got %d", cfg.Chunker.Size)
	}
	if cfg.Chunker.Overlap != 100 {
		t.Errorf("overlap from env: got %d", cfg.Chunker.Overlap)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("llm from yaml: got %+v", cfg.LLM)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top k from env: got %d", cfg.Retrieval.TopK)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LESSONRAG_INDEX_DIR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LESSONRAG_INDEX_DIR", "")
	os.Unsetenv("LESSONRAG_INDEX_DIR")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.Dir != "from-dotenv" {
		t.Errorf("index dir: got %q", cfg.Index.Dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"overlap equals size", func(c *Config) { c.Chunker.Overlap = c.Chunker.Size }, false},
		{"zero size", func(c *Config) { c.Chunker.Size = 0 }, false},
		{"bad embedder", func(c *Config) { c.Embedding.Provider = "word2vec" }, false},
		{"bad backend", func(c *Config) { c.Index.Backend = "faiss" }, false},
		{"bad llm", func(c *Config) { c.LLM.Provider = "bard" }, false},
		{"zero k", func(c *Config) { c.Retrieval.TopK = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LESSONRAG_CHUNK_SIZE", "lots")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non numeric chunk size")
	}
}
