package out

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quotawin/internal/modules/usage/domain"
	apperrors "quotawin/internal/platform/errors"
)

// JSONLSampleReader reads one JSON object per line:
//
//	{"timestamp":"2025-03-03T09:15:00Z","usage_pct":42.5,"source":"statusline"}
//
// Blank lines and lines starting with # are skipped.
type JSONLSampleReader struct{}

func NewJSONLSampleReader() JSONLSampleReader {
	return JSONLSampleReader{}
}

type sampleLine struct {
	Timestamp *time.Time `json:"timestamp"`
	UsagePct  *float64   `json:"usage_pct"`
	Source    string     `json:"source"`
}

func (r JSONLSampleReader) ReadSamples(ctx context.Context, path string) ([]domain.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples: %w", err)
	}
	defer file.Close()
	return r.Decode(ctx, file)
}

func (JSONLSampleReader) Decode(ctx context.Context, in io.Reader) ([]domain.Sample, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	samples := []domain.Sample{}
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed := sampleLine{}
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrInvalidInput, lineNo, err)
		}
		if parsed.Timestamp == nil || parsed.UsagePct == nil {
			return nil, fmt.Errorf("%w: line %d: timestamp and usage_pct are required", apperrors.ErrInvalidInput, lineNo)
		}
		samples = append(samples, domain.Sample{
			Timestamp: parsed.Timestamp.UTC(),
			UsagePct:  *parsed.UsagePct,
			Source:    parsed.Source,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan samples: %w", err)
	}
	return samples, nil
}
