// Package frameapi exposes frame conversion over gRPC. Messages are
// google.protobuf.Struct values so clients in any language can call the
// service without generated stubs.
package frameapi

import (
	"context"

	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/internal/logging"
	"github.com/signalsfoundry/refframe/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully-qualified service and method names.
const (
	ServiceName     = "refframe.v1.FrameService"
	ConvertMethod   = "/" + ServiceName + "/Convert"
	ListSitesMethod = "/" + ServiceName + "/ListSites"
)

// FrameServiceServer is the server API for the frame service.
type FrameServiceServer interface {
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSites(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the frame service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Convert", Handler: convertHandler},
		{MethodName: "ListSites", Handler: listSitesHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterFrameServiceServer registers srv on s.
func RegisterFrameServiceServer(s grpc.ServiceRegistrar, srv FrameServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func convertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrameServiceServer).Convert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConvertMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrameServiceServer).Convert(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listSitesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrameServiceServer).ListSites(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListSitesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrameServiceServer).ListSites(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// FrameService implements FrameServiceServer on top of a conversion.Service.
type FrameService struct {
	svc *conversion.Service
	log logging.Logger
}

// NewFrameService constructs a FrameService bound to svc.
func NewFrameService(svc *conversion.Service, log logging.Logger) *FrameService {
	if log == nil {
		log = logging.Noop()
	}
	return &FrameService{svc: svc, log: log}
}

// Convert decodes a conversion request, runs it and encodes the result.
func (s *FrameService) Convert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, reqLog := s.requestLogger(ctx)

	req, err := DecodeConvertRequest(in)
	if err != nil {
		reqLog.Debug(ctx, "Convert request rejected", logging.Err(err))
		return nil, ToStatusError(err)
	}

	res, err := s.svc.Convert(ctx, req)
	if err != nil {
		return nil, ToStatusError(err)
	}

	out, err := EncodeConvertResult(res)
	if err != nil {
		reqLog.Error(ctx, "Convert response encoding failed", logging.Err(err))
		return nil, ToStatusError(err)
	}
	return out, nil
}

// ListSites returns the site catalogue.
func (s *FrameService) ListSites(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, reqLog := s.requestLogger(ctx)

	out, err := EncodeSites(s.svc.ListSites(ctx))
	if err != nil {
		reqLog.Error(ctx, "ListSites response encoding failed", logging.Err(err))
		return nil, ToStatusError(err)
	}
	return out, nil
}

// requestLogger prefers the logger installed by RequestIDUnaryServerInterceptor.
func (s *FrameService) requestLogger(ctx context.Context) (context.Context, logging.Logger) {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return ctx, l
	}
	return logging.WithRequestLogger(ctx, s.log)
}

// NewServer builds a gRPC server serving svc with OpenTelemetry
// instrumentation, request IDs, span enrichment and RPC metrics. A nil
// collector disables RPC metrics.
func NewServer(svc *FrameService, collector *observability.ConversionCollector, log logging.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if log == nil {
		log = logging.Noop()
	}
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RequestIDUnaryServerInterceptor(log),
			TracingUnaryServerInterceptor(),
			collector.UnaryServerInterceptor(),
		),
	}
	server := grpc.NewServer(append(base, opts...)...)
	RegisterFrameServiceServer(server, svc)
	return server
}
