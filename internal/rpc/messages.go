package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

// EvaluateRequest asks for an evaluation of one solution. Without
// verification entries the automatic evaluator runs.
type EvaluateRequest struct {
	MissionID  string `json:"mission_id"`
	SolutionID string `json:"solution_id"`
	scenario.EvaluationInput
}

// CompareRequest names the solutions to compare; empty compares all.
type CompareRequest struct {
	MissionID   string   `json:"mission_id"`
	SolutionIDs []string `json:"solution_ids,omitempty"`
}

// MissionRequest addresses a mission.
type MissionRequest struct {
	MissionID string `json:"mission_id"`
}

// MissionSummaryResponse is the headline view plus the rendered summary.
type MissionSummaryResponse struct {
	scenario.MissionSummary
	Report string `json:"report"`
}

// IterationsResponse is the design history of a mission.
type IterationsResponse struct {
	Iterations []scenario.IterationView `json:"iterations"`
}

// ToStruct converts a JSON-tagged value into a Struct message.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

// FromStruct decodes a Struct message into v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
