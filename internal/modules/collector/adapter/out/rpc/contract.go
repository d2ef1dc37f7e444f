package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "collector"
	serviceName       = "quotawin.collector.v1.Collector"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodCollect     = "/" + serviceName + "/Collect"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "QUOTAWIN_COLLECTOR",
	MagicCookieValue: "quotawin",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

type CollectRequest struct {
	Since time.Time `json:"since"`
	Limit int32     `json:"limit"`
}

type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	UsagePct  float64   `json:"usage_pct"`
	Source    string    `json:"source"`
}

type CollectResponse struct {
	Samples []Sample `json:"samples"`
}

type CollectorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Collect(ctx context.Context, in *CollectRequest) (*CollectResponse, error)
}

type CollectorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Collect(ctx context.Context, in *CollectRequest) (*CollectResponse, error)
}

type collectorClient struct {
	conn *grpc.ClientConn
}

func NewCollectorClient(conn *grpc.ClientConn) CollectorClient {
	return &collectorClient{conn: conn}
}

func (c *collectorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collectorClient) Collect(ctx context.Context, in *CollectRequest) (*CollectResponse, error) {
	out := &CollectResponse{}
	if err := c.conn.Invoke(ctx, methodCollect, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterCollectorServer(server grpc.ServiceRegistrar, impl CollectorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*CollectorServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Collect",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &CollectRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Collect(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCollect}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*CollectRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Collect(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "quotawin/collector/v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl CollectorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterCollectorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewCollectorClient(conn), nil
}

func PluginMap(impl CollectorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
