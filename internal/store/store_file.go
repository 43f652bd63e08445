package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"CandyShop/pkg/kit"
)

// FileStore keeps the document as one pretty-printed JSON file.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return kit.Storage("store directory unavailable", err)
	}
	return nil
}

// Load reads the document. A missing file is initialized with three empty
// collections and persisted. Any read or parse failure yields an empty
// fallback document together with a storage error.
func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		d := NewDocument()
		created, cerr := s.create(ctx, d)
		if cerr != nil {
			return d, cerr
		}
		if created {
			s.log.Info("document created", zap.String("path", s.path))
			return d, nil
		}
		raw, err = os.ReadFile(s.path)
	}
	if err != nil {
		s.log.Error("read document failed", zap.String("path", s.path), zap.Error(err))
		return fallback("read document", err)
	}

	d, err := decode(raw)
	if err != nil {
		s.log.Error("parse document failed", zap.String("path", s.path), zap.Error(err))
		return fallback("parse document", err)
	}
	return d, nil
}

// Save replaces the file atomically: the document is written to a sibling
// temp file which is then renamed over the target.
func (s *FileStore) Save(ctx context.Context, d *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpName, err := s.writeTemp(d)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmpName) }()

	if err := os.Rename(tmpName, s.path); err != nil {
		return s.saveFailed(err)
	}
	return nil
}

// create publishes d only if no document exists yet. Readers run without
// the writer lock, so the initial file is linked into place instead of
// renamed: a document committed in the meantime is never replaced.
// created is false when another caller got there first.
func (s *FileStore) create(ctx context.Context, d *Document) (created bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	tmpName, err := s.writeTemp(d)
	if err != nil {
		return false, err
	}
	defer func() { _ = os.Remove(tmpName) }()

	err = os.Link(tmpName, s.path)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, s.saveFailed(err)
	}
	return true, nil
}

// writeTemp writes the encoded document to a synced sibling temp file.
func (s *FileStore) writeTemp(d *Document) (string, error) {
	b, err := encode(d)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", s.saveFailed(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", s.saveFailed(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", s.saveFailed(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", s.saveFailed(err)
	}
	return tmpName, nil
}

func (s *FileStore) saveFailed(err error) error {
	s.log.Error("write document failed", zap.String("path", s.path), zap.Error(err))
	return kit.Storage("write document", err)
}
