package fileIndex

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/rag/vectorDB"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
	"github.com/gofrs/flock"
)

// Store keeps each lesson as lesson_<id>.index plus lesson_<id>_chunks.jsonl
// under one directory. Writers publish both files by rename while holding an
// exclusive lock on lesson_<id>.lock; readers hold the shared lock.
type Store struct {
	dir         string
	lockTimeout time.Duration
	logger      *logger_i.Logger
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	return &Store{
		dir:         dir,
		lockTimeout: config.IndexLockTimeout,
		logger:      logger_i.NewLogger("FileIndex"),
	}, nil
}

func (s *Store) indexPath(id string) string {
	return filepath.Join(s.dir, "lesson_"+id+".index")
}

func (s *Store) chunksPath(id string) string {
	return filepath.Join(s.dir, "lesson_"+id+"_chunks.jsonl")
}

func (s *Store) lockPath(id string) string {
	return filepath.Join(s.dir, "lesson_"+id+".lock")
}

func (s *Store) Save(ctx context.Context, lessonId string, vectors [][]float32, chunks []string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	if _, err := vectorDB.CheckPair(vectors, chunks); err != nil {
		return err
	}
	log := s.logger.WithContext(ctx).With(config.LESSON_ID_KEY, lessonId)

	chunkBytes, err := encodeChunks(chunks)
	if err != nil {
		return fmt.Errorf("cannot encode chunks: %w", err)
	}
	digest := sha256.Sum256(chunkBytes)

	chunkTmp, err := s.writeTemp("lesson_"+lessonId+"_chunks.*.tmp", func(f *os.File) error {
		_, err := f.Write(chunkBytes)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot write chunk file: %w", err)
	}
	defer os.Remove(chunkTmp)

	indexTmp, err := s.writeTemp("lesson_"+lessonId+".index.*.tmp", func(f *os.File) error {
		return writeIndex(f, vectors, digest)
	})
	if err != nil {
		return fmt.Errorf("cannot write index file: %w", err)
	}
	defer os.Remove(indexTmp)

	unlock, err := s.lock(ctx, lessonId, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Rename(chunkTmp, s.chunksPath(lessonId)); err != nil {
		return fmt.Errorf("cannot publish chunk file: %w", err)
	}
	if err := os.Rename(indexTmp, s.indexPath(lessonId)); err != nil {
		return fmt.Errorf("cannot publish index file: %w", err)
	}
	if err := syncDir(s.dir); err != nil {
		log.Warn("Could not sync index dir", "error", err)
	}
	log.Info("Index saved", "chunks", len(chunks), "dim", len(vectors[0]))
	return nil
}

func (s *Store) Load(ctx context.Context, lessonId string) (vectorDB.Index, error) {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return nil, err
	}
	// no lock file is created for lessons that were never indexed
	if _, err := os.Stat(s.indexPath(lessonId)); errors.Is(err, os.ErrNotExist) {
		return nil, lessonModel.ErrNotIndexed
	}

	unlock, err := s.lock(ctx, lessonId, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	f, err := os.Open(s.indexPath(lessonId))
	if errors.Is(err, os.ErrNotExist) {
		return nil, lessonModel.ErrNotIndexed
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open index: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat index: %w", err)
	}

	h, data, err := readIndex(f, st.Size())
	if err != nil {
		return nil, s.corrupt(lessonId, "unreadable index file", err)
	}

	chunkBytes, err := os.ReadFile(s.chunksPath(lessonId))
	if errors.Is(err, os.ErrNotExist) {
		return nil, s.corrupt(lessonId, "chunk file missing", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read chunk file: %w", err)
	}
	if sha256.Sum256(chunkBytes) != h.Digest {
		return nil, s.corrupt(lessonId, "chunk file does not belong to this index", nil)
	}
	chunks, err := decodeChunks(chunkBytes, int(h.Count))
	if err != nil {
		return nil, s.corrupt(lessonId, "unreadable chunk file", err)
	}

	idx, err := vectorDB.FlatFromRows(int(h.Dim), data, chunks)
	if err != nil {
		return nil, s.corrupt(lessonId, "vector and chunk counts differ", err)
	}
	return idx, nil
}

// Delete removes both files. The lock file stays so concurrent lockers agree on one inode.
func (s *Store) Delete(ctx context.Context, lessonId string) error {
	if err := lessonModel.ValidateLessonId(lessonId); err != nil {
		return err
	}
	if _, err := os.Stat(s.indexPath(lessonId)); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat(s.chunksPath(lessonId)); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	unlock, err := s.lock(ctx, lessonId, true)
	if err != nil {
		return err
	}
	defer unlock()

	var errs []error
	for _, p := range []string{s.indexPath(lessonId), s.chunksPath(lessonId)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cannot delete index: %w", err)
	}
	s.logger.WithContext(ctx).Info("Index deleted", config.LESSON_ID_KEY, lessonId)
	return nil
}

func (s *Store) lock(ctx context.Context, lessonId string, exclusive bool) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	l := flock.New(s.lockPath(lessonId))
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = l.TryLockContext(lockCtx, config.IndexLockRetryDelay)
	} else {
		locked, err = l.TryRLockContext(lockCtx, config.IndexLockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot lock index for lesson %s: %w", lessonId, err)
	}
	if !locked {
		return nil, fmt.Errorf("index for lesson %s is locked", lessonId)
	}
	return func() {
		if err := l.Unlock(); err != nil {
			s.logger.Error("Could not release index lock", config.LESSON_ID_KEY, lessonId, "error", err)
		}
	}, nil
}

func (s *Store) writeTemp(pattern string, write func(f *os.File) error) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func (s *Store) corrupt(lessonId, reason string, err error) error {
	s.logger.Error("Index is corrupt", config.LESSON_ID_KEY, lessonId, "reason", reason, "error", err)
	return &lessonModel.IndexCorruptionError{LessonId: lessonId, Reason: reason, Err: err}
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
