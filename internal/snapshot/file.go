package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/venkeey/viscanvas-sub000/internal/document"
	"github.com/venkeey/viscanvas-sub000/internal/typeid"
)

// FileStore keeps the latest snapshot of each document as <dir>/<id>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(documentID string) (string, error) {
	if documentID == "" || strings.ContainsAny(documentID, `/\`) || strings.HasPrefix(documentID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, documentID)
	}
	return filepath.Join(s.dir, documentID+".json"), nil
}

func (s *FileStore) Save(ctx context.Context, snap *document.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(snap.DocumentID)
	if err != nil {
		return err
	}

	nextVersion := 1
	if current, err := s.read(path); err == nil {
		nextVersion = current.Version + 1
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	snap.ID = typeid.NewSnapshotID()
	snap.Version = nextVersion
	data, err := document.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.dir, snap.DocumentID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Latest(ctx context.Context, documentID string) (*document.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(documentID)
	if err != nil {
		return nil, err
	}
	return s.read(path)
}

func (s *FileStore) read(path string) (*document.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return document.Unmarshal(data)
}

func (s *FileStore) Close() {}
