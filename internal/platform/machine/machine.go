package machine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quotawin/internal/platform/clock"
	"quotawin/internal/platform/id"
)

// Identity names the machine that owns locally recorded rows.
type Identity struct {
	MachineID string    `json:"machine_id"`
	Hostname  string    `json:"hostname"`
	CreatedAt time.Time `json:"created_at"`
}

type FileStore struct {
	path  string
	ids   id.Generator
	clock clock.Clock
	host  func() (string, error)
	mu    sync.Mutex
}

func NewFileStore(dataDir string, ids id.Generator, clk clock.Clock) *FileStore {
	return &FileStore{
		path:  filepath.Join(dataDir, "machine.json"),
		ids:   ids,
		clock: clk,
		host:  os.Hostname,
	}
}

// LoadOrCreate returns the persisted identity, minting one on first use.
func (s *FileStore) LoadOrCreate() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err == nil {
		identity := Identity{}
		if err := json.Unmarshal(raw, &identity); err != nil {
			return Identity{}, fmt.Errorf("decode machine identity: %w", err)
		}
		if identity.MachineID == "" {
			return Identity{}, fmt.Errorf("machine identity %s has no machine_id", s.path)
		}
		return identity, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Identity{}, fmt.Errorf("read machine identity: %w", err)
	}

	hostname, err := s.host()
	if err != nil {
		hostname = "unknown"
	}
	identity := Identity{
		MachineID: s.ids.New(),
		Hostname:  hostname,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Identity{}, fmt.Errorf("create identity dir: %w", err)
	}
	encoded, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return Identity{}, err
	}
	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return Identity{}, fmt.Errorf("write machine identity: %w", err)
	}
	return identity, nil
}
