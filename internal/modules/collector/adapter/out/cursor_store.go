package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	collectorout "quotawin/internal/modules/collector/port/out"
)

// FileCursorStore keeps the last delivered sample time per collector in
// <dataDir>/collectors/cursors.json.
type FileCursorStore struct {
	mu   sync.Mutex
	path string
}

func NewFileCursorStore(dataDir string) collectorout.CursorStore {
	return &FileCursorStore{path: filepath.Join(dataDir, "collectors", "cursors.json")}
}

func (s *FileCursorStore) Load(_ context.Context, name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursors, err := s.read()
	if err != nil {
		return time.Time{}, err
	}
	return cursors[name], nil
}

func (s *FileCursorStore) Save(_ context.Context, name string, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursors, err := s.read()
	if err != nil {
		return err
	}
	cursors[name] = lastSeen.UTC()
	raw, err := json.MarshalIndent(cursors, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collector cursors: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create collectors dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write collector cursors: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace collector cursors: %w", err)
	}
	return nil
}

func (s *FileCursorStore) read() (map[string]time.Time, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]time.Time{}, nil
		}
		return nil, fmt.Errorf("read collector cursors: %w", err)
	}
	cursors := map[string]time.Time{}
	if err := json.Unmarshal(raw, &cursors); err != nil {
		return nil, fmt.Errorf("decode collector cursors: %w", err)
	}
	return cursors, nil
}
