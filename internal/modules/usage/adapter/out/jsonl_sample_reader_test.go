package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	usageout "quotawin/internal/modules/usage/adapter/out"
	apperrors "quotawin/internal/platform/errors"
)

func TestReadSamples(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	content := strings.Join([]string{
		`# exported`,
		`{"timestamp":"2025-03-03T10:15:00+01:00","usage_pct":12.5,"source":"statusline"}`,
		``,
		`{"timestamp":"2025-03-03T09:45:00Z","usage_pct":0}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write samples: %v", err)
	}
	samples, err := usageout.NewJSONLSampleReader().ReadSamples(context.Background(), path)
	if err != nil {
		t.Fatalf("read samples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if !samples[0].Timestamp.Equal(time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC)) || samples[0].Timestamp.Location() != time.UTC {
		t.Fatalf("unexpected timestamp %v", samples[0].Timestamp)
	}
	if samples[0].UsagePct != 12.5 || samples[0].Source != "statusline" || samples[0].MachineID != "" {
		t.Fatalf("unexpected sample %+v", samples[0])
	}
}

func TestDecodeRejectsIncompleteLines(t *testing.T) {
	t.Parallel()
	reader := usageout.NewJSONLSampleReader()
	for _, line := range []string{`{"usage_pct":3}`, `{"timestamp":"2025-03-03T09:45:00Z"}`, `not json`} {
		_, err := reader.Decode(context.Background(), strings.NewReader(line))
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("line %q: expected invalid input, got %v", line, err)
		}
	}
}
