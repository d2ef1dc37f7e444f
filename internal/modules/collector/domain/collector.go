package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"
)

var (
	ErrCollectorDisabled = errors.New("collector is disabled")
	ErrCollectorNotFound = errors.New("collector not found")
	ErrChecksumMismatch  = errors.New("collector checksum mismatch")
	ErrCollectorTimeout  = errors.New("collector timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// DefaultLimit caps how many samples a single Collect call may return.
const DefaultLimit = 5000

type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("collector name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("collector version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("collector binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("collector sha256 must be lowercase 64-char hex")
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
	Source  string
}

type Sample struct {
	Timestamp time.Time
	UsagePct  float64
	Source    string
}

type CollectRequest struct {
	Since time.Time
	Limit int
}

// Fresh keeps samples strictly newer than since, oldest first. Collectors
// are allowed to resend what they already delivered.
func Fresh(samples []Sample, since time.Time) []Sample {
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if since.IsZero() || s.Timestamp.After(since) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Advance returns the cursor position after samples were recorded.
func Advance(cursor time.Time, samples []Sample) time.Time {
	next := cursor
	for _, s := range samples {
		if s.Timestamp.After(next) {
			next = s.Timestamp
		}
	}
	return next.UTC()
}
