package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	collectorout "quotawin/internal/modules/collector/adapter/out"
)

func writeManifests(t *testing.T, base, raw string) {
	t.Helper()
	dir := filepath.Join(base, "collectors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir collectors: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "collectors.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write collectors.json: %v", err)
	}
}

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := collectorout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifests(t, base, `[
  {
    "name": "jsonl",
    "version": "1.0.0",
    "binary": "collectors/bin/jsonl-collector",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true
  }
]`)
	manifests, err := collectorout.NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	want := filepath.Join(base, "collectors", "bin", "jsonl-collector")
	if manifests[0].Binary != want {
		t.Fatalf("expected %s, got %s", want, manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifests(t, base, `[
  {
    "name": "jsonl",
    "version": "1.0.0",
    "binary": "/tmp/jsonl-collector",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["command"]
  }
]`)
	if _, err := collectorout.NewFileManifestStore(base).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
