package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quotawin/internal/modules/sync/domain"
	syncout "quotawin/internal/modules/sync/port/out"
)

// FileDocumentStore keeps the document in a directory, typically one a
// file-sync client mirrors between machines. The version tag is the sha256
// of the content.
type FileDocumentStore struct {
	path string
	mu   sync.Mutex
}

func NewFileDocumentStore(dir, name string) *FileDocumentStore {
	return &FileDocumentStore{path: filepath.Join(dir, name)}
}

func (s *FileDocumentStore) Location() string {
	return s.path
}

func (s *FileDocumentStore) Fetch(_ context.Context) (syncout.VersionedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return syncout.VersionedDocument{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return syncout.VersionedDocument{}, fmt.Errorf("read sync document: %w", err)
	}
	return syncout.VersionedDocument{Raw: raw, ETag: contentTag(raw)}, nil
}

func (s *FileDocumentStore) Put(_ context.Context, raw []byte, ifMatch string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if ifMatch != "" {
			return "", fmt.Errorf("%w: document was removed", domain.ErrVersionConflict)
		}
	case err != nil:
		return "", fmt.Errorf("read sync document: %w", err)
	default:
		if ifMatch == "" || contentTag(current) != ifMatch {
			return "", domain.ErrVersionConflict
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("create sync dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".quotawin-sync-*")
	if err != nil {
		return "", fmt.Errorf("create temp document: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return "", fmt.Errorf("replace sync document: %w", err)
	}
	return contentTag(raw), nil
}

func contentTag(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
