package analysisrpc

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote analysis service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. Without options the connection is cleartext.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }

// Describe returns the server's description of its loaded signal.
func (c *Client) Describe(ctx context.Context) (map[string]interface{}, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodDescribe, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Estimate asks for the cost of one threshold.
func (c *Client) Estimate(ctx context.Context, threshold float64) (types.CompressionStats, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodEstimate, wrapperspb.Double(threshold), out); err != nil {
		return types.CompressionStats{}, err
	}
	return statsFromStruct(out)
}

// Sweep asks for the cost of each threshold, in order.
func (c *Client) Sweep(ctx context.Context, thresholds []float64) ([]types.CompressionStats, error) {
	in := &structpb.ListValue{Values: make([]*structpb.Value, len(thresholds))}
	for i, th := range thresholds {
		in.Values[i] = structpb.NewNumberValue(th)
	}
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, methodSweep, in, out); err != nil {
		return nil, err
	}
	stats := make([]types.CompressionStats, len(out.GetValues()))
	for i, v := range out.GetValues() {
		st, err := statsFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("sweep result %d: %w", i, err)
		}
		stats[i] = st
	}
	return stats, nil
}
