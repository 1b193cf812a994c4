package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

// Client calls the MissionEvaluation service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, req, out any, opts ...grpc.CallOption) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, resp, opts...); err != nil {
		return err
	}
	return FromStruct(resp, out)
}

// EvaluateSolution evaluates one solution on the server.
func (c *Client) EvaluateSolution(ctx context.Context, req EvaluateRequest, opts ...grpc.CallOption) (scenario.Evaluation, error) {
	var out scenario.Evaluation
	err := c.call(ctx, MethodEvaluateSolution, req, &out, opts...)
	return out, err
}

// CompareSolutions returns the comparison of the named solutions.
func (c *Client) CompareSolutions(ctx context.Context, req CompareRequest, opts ...grpc.CallOption) (scenario.Comparison, error) {
	var out scenario.Comparison
	err := c.call(ctx, MethodCompareSolutions, req, &out, opts...)
	return out, err
}

// GetMissionSummary returns the mission headline and rendered summary.
func (c *Client) GetMissionSummary(ctx context.Context, missionID string, opts ...grpc.CallOption) (MissionSummaryResponse, error) {
	var out MissionSummaryResponse
	err := c.call(ctx, MethodGetMissionSummary, MissionRequest{MissionID: missionID}, &out, opts...)
	return out, err
}

// ListIterations returns the mission's design history.
func (c *Client) ListIterations(ctx context.Context, missionID string, opts ...grpc.CallOption) ([]scenario.IterationView, error) {
	var out IterationsResponse
	err := c.call(ctx, MethodListIterations, MissionRequest{MissionID: missionID}, &out, opts...)
	return out.Iterations, err
}
