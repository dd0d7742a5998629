package frameapi

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/model"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote frame service.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// NewClient wraps an existing connection. Close is a no-op for clients built
// this way.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial connects to the frame service at target. Without extra options the
// connection is insecure; it is always traced and forwards request IDs.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(RequestIDUnaryClientInterceptor()),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial frame service %s: %w", target, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// Close releases the connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Convert runs req remotely. Errors are gRPC status errors.
func (c *Client) Convert(ctx context.Context, req conversion.Request, opts ...grpc.CallOption) (conversion.Result, error) {
	in, err := EncodeConvertRequest(req)
	if err != nil {
		return conversion.Result{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ConvertMethod, in, out, opts...); err != nil {
		return conversion.Result{}, err
	}
	return DecodeConvertResult(out)
}

// ListSites fetches the remote site catalogue.
func (c *Client) ListSites(ctx context.Context, opts ...grpc.CallOption) ([]model.Site, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListSitesMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	return DecodeSites(out)
}
