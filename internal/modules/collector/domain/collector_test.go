package domain_test

import (
	"strings"
	"testing"
	"time"

	"quotawin/internal/modules/collector/domain"
)

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	sha := strings.Repeat("a", 64)
	cases := []struct {
		name      string
		manifest  domain.Manifest
		shouldErr bool
	}{
		{name: "valid", manifest: domain.Manifest{Name: "c", Version: "1", Binary: "/tmp/c", SHA256: sha, Enabled: true}},
		{name: "missing name", manifest: domain.Manifest{Version: "1", Binary: "/tmp/c", SHA256: sha}, shouldErr: true},
		{name: "missing version", manifest: domain.Manifest{Name: "c", Binary: "/tmp/c", SHA256: sha}, shouldErr: true},
		{name: "missing binary", manifest: domain.Manifest{Name: "c", Version: "1", SHA256: sha}, shouldErr: true},
		{name: "uppercase sha", manifest: domain.Manifest{Name: "c", Version: "1", Binary: "/tmp/c", SHA256: strings.Repeat("A", 64)}, shouldErr: true},
		{name: "short sha", manifest: domain.Manifest{Name: "c", Version: "1", Binary: "/tmp/c", SHA256: "abc"}, shouldErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestFreshDropsDeliveredSamplesAndSorts(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	samples := []domain.Sample{
		{Timestamp: base.Add(2 * time.Hour), UsagePct: 30},
		{Timestamp: base, UsagePct: 10},
		{Timestamp: base.Add(time.Hour), UsagePct: 20},
	}
	fresh := domain.Fresh(samples, base)
	if len(fresh) != 2 {
		t.Fatalf("expected two fresh samples, got %d", len(fresh))
	}
	if !fresh[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected oldest first, got %v", fresh[0].Timestamp)
	}
	if all := domain.Fresh(samples, time.Time{}); len(all) != 3 {
		t.Fatalf("zero cursor should keep everything, got %d", len(all))
	}
}

func TestAdvanceNeverMovesBackwards(t *testing.T) {
	t.Parallel()
	cursor := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	older := []domain.Sample{{Timestamp: cursor.Add(-time.Hour)}}
	if got := domain.Advance(cursor, older); !got.Equal(cursor) {
		t.Fatalf("cursor moved backwards to %v", got)
	}
	newer := []domain.Sample{{Timestamp: cursor.Add(30 * time.Minute)}, {Timestamp: cursor.Add(10 * time.Minute)}}
	if got := domain.Advance(cursor, newer); !got.Equal(cursor.Add(30 * time.Minute)) {
		t.Fatalf("unexpected cursor %v", got)
	}
}
