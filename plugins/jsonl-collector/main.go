package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-plugin"

	collectorrpc "quotawin/internal/modules/collector/adapter/out/rpc"
	usageout "quotawin/internal/modules/usage/adapter/out"
)

const (
	pathEnv       = "QUOTAWIN_JSONL_PATH"
	defaultSource = "jsonl"
)

type server struct {
	path   string
	reader usageout.JSONLSampleReader
}

func (s *server) GetMetadata(_ context.Context, _ *collectorrpc.Empty) (*collectorrpc.Metadata, error) {
	return &collectorrpc.Metadata{Name: "jsonl-collector", Version: "1.0.0", Source: defaultSource}, nil
}

func (s *server) Collect(ctx context.Context, in *collectorrpc.CollectRequest) (*collectorrpc.CollectResponse, error) {
	if s.path == "" {
		return nil, fmt.Errorf("%s is not set", pathEnv)
	}
	samples, err := s.reader.ReadSamples(ctx, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &collectorrpc.CollectResponse{Samples: []collectorrpc.Sample{}}, nil
		}
		return nil, err
	}
	out := make([]collectorrpc.Sample, 0, len(samples))
	for _, sample := range samples {
		if !in.Since.IsZero() && !sample.Timestamp.After(in.Since) {
			continue
		}
		source := sample.Source
		if source == "" {
			source = defaultSource
		}
		out = append(out, collectorrpc.Sample{Timestamp: sample.Timestamp, UsagePct: sample.UsagePct, Source: source})
		if in.Limit > 0 && len(out) >= int(in.Limit) {
			break
		}
	}
	return &collectorrpc.CollectResponse{Samples: out}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: collectorrpc.HandshakeConfig,
		Plugins:         collectorrpc.PluginMap(&server{path: os.Getenv(pathEnv), reader: usageout.NewJSONLSampleReader()}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
