package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	collectorrpc "quotawin/internal/modules/collector/adapter/out/rpc"
	"quotawin/internal/modules/collector/domain"
	collectorout "quotawin/internal/modules/collector/port/out"
)

const (
	defaultStartTimeout   = 3 * time.Second
	defaultCallTimeout    = 5 * time.Second
	defaultCollectTimeout = 30 * time.Second
)

type GRPCHost struct{}

func NewGRPCHost() collectorout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.Metadata{}, fmt.Errorf("%w: %s", domain.ErrCollectorTimeout, manifest.Name)
		}
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Source: meta.Source}, nil
}

func (h *GRPCHost) Collect(ctx context.Context, manifest domain.Manifest, req domain.CollectRequest) ([]domain.Sample, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCollectTimeout)
	defer cancel()
	response, err := client.Collect(callCtx, &collectorrpc.CollectRequest{Since: req.Since.UTC(), Limit: int32(req.Limit)})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectorTimeout, manifest.Name)
		}
		return nil, fmt.Errorf("collect: %w", err)
	}
	out := make([]domain.Sample, 0, len(response.Samples))
	for _, s := range response.Samples {
		out = append(out, domain.Sample{Timestamp: s.Timestamp.UTC(), UsagePct: s.UsagePct, Source: s.Source})
	}
	return out, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (collectorrpc.CollectorClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  collectorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          collectorrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start collector client: %w", err)
	}
	raw, err := rpcClient.Dispense(collectorrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense collector: %w", err)
	}
	typed, ok := raw.(collectorrpc.CollectorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("collector rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
