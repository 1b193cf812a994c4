package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "missiondesign.v1.MissionEvaluation"

// Method names of the MissionEvaluation service.
const (
	MethodEvaluateSolution  = "EvaluateSolution"
	MethodCompareSolutions  = "CompareSolutions"
	MethodGetMissionSummary = "GetMissionSummary"
	MethodListIterations    = "ListIterations"
)

// FullMethod returns "/missiondesign.v1.MissionEvaluation/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MissionEvaluationServer is the server API for the MissionEvaluation
// service. Requests and responses are google.protobuf.Struct messages whose
// fields follow the REST JSON bodies.
type MissionEvaluationServer interface {
	EvaluateSolution(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CompareSolutions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMissionSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListIterations(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(MissionEvaluationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MissionEvaluationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MissionEvaluationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MissionEvaluationServiceDesc describes the service for grpc.Server.
var MissionEvaluationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MissionEvaluationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodEvaluateSolution, Handler: unaryHandler(MethodEvaluateSolution, MissionEvaluationServer.EvaluateSolution)},
		{MethodName: MethodCompareSolutions, Handler: unaryHandler(MethodCompareSolutions, MissionEvaluationServer.CompareSolutions)},
		{MethodName: MethodGetMissionSummary, Handler: unaryHandler(MethodGetMissionSummary, MissionEvaluationServer.GetMissionSummary)},
		{MethodName: MethodListIterations, Handler: unaryHandler(MethodListIterations, MissionEvaluationServer.ListIterations)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "missiondesign/v1/mission_evaluation.proto",
}

// RegisterMissionEvaluationServer registers srv on s.
func RegisterMissionEvaluationServer(s grpc.ServiceRegistrar, srv MissionEvaluationServer) {
	s.RegisterService(&MissionEvaluationServiceDesc, srv)
}
