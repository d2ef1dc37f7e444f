package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	collectorout "quotawin/internal/modules/collector/adapter/out"
	"quotawin/internal/modules/collector/domain"
)

func TestGRPCHostIntegrationJSONLCollector(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the jsonl collector binary")
	}
	binPath, checksum := buildJSONLCollector(t)
	samplesPath := filepath.Join(t.TempDir(), "samples.jsonl")
	lines := []string{
		`{"timestamp":"2025-03-03T09:15:00Z","usage_pct":12.5}`,
		`{"timestamp":"2025-03-03T10:15:00Z","usage_pct":40,"source":"statusline"}`,
		`{"timestamp":"2025-03-03T11:15:00Z","usage_pct":55}`,
	}
	if err := os.WriteFile(samplesPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write samples: %v", err)
	}
	t.Setenv("QUOTAWIN_JSONL_PATH", samplesPath)

	manifest := domain.Manifest{Name: "jsonl", Version: "1.0.0", Binary: binPath, SHA256: checksum, Enabled: true}
	host := collectorout.NewGRPCHost()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	meta, err := host.GetMetadata(ctx, manifest)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if meta.Name != "jsonl-collector" || meta.Source != "jsonl" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	since := time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC)
	samples, err := host.Collect(ctx, manifest, domain.CollectRequest{Since: since, Limit: 10})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected two samples after cursor, got %d", len(samples))
	}
	if samples[0].Source != "statusline" || samples[1].Source != "jsonl" {
		t.Fatalf("unexpected sources: %+v", samples)
	}
}

func buildJSONLCollector(t *testing.T) (string, string) {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "jsonl-collector")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/jsonl-collector")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build jsonl collector: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built collector: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
