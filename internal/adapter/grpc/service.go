package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "casestudy.v1.AnalyticsService"

// Full method names, as seen by interceptors
const (
	FullMethodRunFundAnalytics = "/" + ServiceName + "/RunFundAnalytics"
	FullMethodListFunds        = "/" + ServiceName + "/ListFunds"
)

// AnalyticsServiceServer is the server API for the analytics service.
// Messages are well-known types: a request carries {"fund": "..."} and
// responses are JSON-shaped documents.
type AnalyticsServiceServer interface {
	RunFundAnalytics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFunds(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterAnalyticsServiceServer registers srv on s
func RegisterAnalyticsServiceServer(s grpc.ServiceRegistrar, srv AnalyticsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the analytics service for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyticsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RunFundAnalytics",
			Handler:    runFundAnalyticsHandler,
		},
		{
			MethodName: "ListFunds",
			Handler:    listFundsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "casestudy/v1/analytics.proto",
}

func runFundAnalyticsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyticsServiceServer).RunFundAnalytics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FullMethodRunFundAnalytics,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyticsServiceServer).RunFundAnalytics(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listFundsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyticsServiceServer).ListFunds(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FullMethodListFunds,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyticsServiceServer).ListFunds(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the analytics service over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new analytics service client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// RunFundAnalytics runs the analytics of fund and returns the result document.
// An empty fund lets the server use its default fund.
func (c *Client) RunFundAnalytics(ctx context.Context, fund string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]interface{}{}
	if fund != "" {
		fields["fund"] = fund
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethodRunFundAnalytics, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFunds returns the funds known to the server
func (c *Client) ListFunds(ctx context.Context, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethodListFunds, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	var funds []string
	for _, v := range out.GetFields()["funds"].GetListValue().GetValues() {
		funds = append(funds, v.GetStringValue())
	}
	return funds, nil
}
