// Package rpc serves the mission registry over gRPC.
package rpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/observability"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
	"github.com/signalsfoundry/mission-designer/kb"
)

// MissionEvaluationService implements MissionEvaluationServer over a
// MissionStore. Evaluations take the mission's write lock; the other
// methods only read.
type MissionEvaluationService struct {
	store     *kb.MissionStore
	evaluator *core.Evaluator
	evals     *observability.EvaluationCollector
	log       logging.Logger
}

// ServiceOption customises a MissionEvaluationService.
type ServiceOption func(*MissionEvaluationService)

// WithEvaluationMetrics counts manual evaluations and comparisons on c.
func WithEvaluationMetrics(c *observability.EvaluationCollector) ServiceOption {
	return func(s *MissionEvaluationService) { s.evals = c }
}

// NewMissionEvaluationService constructs the service. A nil evaluator is
// replaced by a default one.
func NewMissionEvaluationService(store *kb.MissionStore, evaluator *core.Evaluator, log logging.Logger, opts ...ServiceOption) *MissionEvaluationService {
	if evaluator == nil {
		evaluator = core.NewEvaluator()
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &MissionEvaluationService{store: store, evaluator: evaluator, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ MissionEvaluationServer = (*MissionEvaluationService)(nil)

func requireMission(id string) error {
	if id == "" {
		return fmt.Errorf("%w: mission_id is required", ErrInvalidRequest)
	}
	return nil
}

// EvaluateSolution evaluates one solution and returns the evaluation view.
func (s *MissionEvaluationService) EvaluateSolution(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req EvaluateRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, ToStatusError(err)
	}
	if err := requireMission(req.MissionID); err != nil {
		return nil, ToStatusError(err)
	}
	if req.SolutionID == "" {
		return nil, ToStatusError(fmt.Errorf("%w: solution_id is required", ErrInvalidRequest))
	}

	ctx, span := startChildSpan(ctx, "MissionStore.Update", req.MissionID, req.SolutionID)
	defer span.End()

	var out scenario.Evaluation
	err := s.store.Update(req.MissionID, func(m *core.Mission) error {
		if req.IsAuto() {
			res, err := s.evaluator.Evaluate(ctx, m, req.SolutionID)
			if err != nil {
				return err
			}
			req.Annotate(res.Evaluation)
			out = scenario.FromEvaluation(res.Evaluation)
			return nil
		}
		start := time.Now()
		ev, err := req.Apply(m, req.SolutionID)
		if err != nil {
			return err
		}
		if s.evals != nil {
			s.evals.ObserveEvaluation(m.DesignSolution(req.SolutionID).Status, time.Since(start))
		}
		out = scenario.FromEvaluation(ev)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn(ctx, "evaluation failed",
			logging.String("mission_id", req.MissionID),
			logging.String("solution_id", req.SolutionID),
			logging.Err(err),
		)
		return nil, ToStatusError(err)
	}
	return s.encode(out)
}

// CompareSolutions returns the comparison report and ranking.
func (s *MissionEvaluationService) CompareSolutions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CompareRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, ToStatusError(err)
	}
	if err := requireMission(req.MissionID); err != nil {
		return nil, ToStatusError(err)
	}

	_, span := startChildSpan(ctx, "MissionStore.View", req.MissionID, "")
	defer span.End()

	var out scenario.Comparison
	err := s.store.View(req.MissionID, func(m *core.Mission) error {
		ids := req.SolutionIDs
		if len(ids) == 0 {
			for _, sol := range m.DesignSolutions() {
				ids = append(ids, sol.ID)
			}
		}
		out = scenario.Compare(m, ids)
		return nil
	})
	if err != nil {
		return nil, ToStatusError(err)
	}
	if s.evals != nil {
		s.evals.IncComparisons()
	}
	return s.encode(out)
}

// GetMissionSummary returns the mission counts and the rendered summary.
func (s *MissionEvaluationService) GetMissionSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req MissionRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, ToStatusError(err)
	}
	if err := requireMission(req.MissionID); err != nil {
		return nil, ToStatusError(err)
	}
	info, err := s.store.Info(req.MissionID)
	if err != nil {
		return nil, ToStatusError(err)
	}
	out := MissionSummaryResponse{MissionSummary: scenario.FromInfo(info)}
	err = s.store.View(req.MissionID, func(m *core.Mission) error {
		out.Report = m.Summary()
		return nil
	})
	if err != nil {
		return nil, ToStatusError(err)
	}
	return s.encode(out)
}

// ListIterations returns the design history in order.
func (s *MissionEvaluationService) ListIterations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req MissionRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, ToStatusError(err)
	}
	if err := requireMission(req.MissionID); err != nil {
		return nil, ToStatusError(err)
	}
	out := IterationsResponse{Iterations: []scenario.IterationView{}}
	err := s.store.View(req.MissionID, func(m *core.Mission) error {
		for _, it := range m.Iterations() {
			out.Iterations = append(out.Iterations, scenario.FromIteration(it))
		}
		return nil
	})
	if err != nil {
		return nil, ToStatusError(err)
	}
	return s.encode(out)
}

func (s *MissionEvaluationService) encode(v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}
