package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

// SolutionDetail is a solution together with its current evaluation.
type SolutionDetail struct {
	scenario.Solution
	Evaluation *scenario.Evaluation `json:"evaluation,omitempty"`
}

// IterationRequest is the body of POST /iterations.
type IterationRequest = scenario.Iteration

// SelectionResponse reports the outcome of select, baseline and reject.
type SelectionResponse struct {
	Message            string `json:"message"`
	SolutionID         string `json:"solution_id"`
	Status             string `json:"status"`
	BaselineSolutionID string `json:"baseline_solution_id,omitempty"`
	SelectedSolutionID string `json:"selected_solution_id,omitempty"`
}

// CompareRequest names the solutions to compare; empty compares all.
type CompareRequest struct {
	SolutionIDs []string `json:"solution_ids"`
}

func solutionNotFound(id string) error {
	return fmt.Errorf("%w: %s", core.ErrSolutionNotFound, id)
}

func (s *Server) createSolution(c *gin.Context) {
	var body scenario.Solution
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	if body.ID == "" {
		body.ID = newID("SOL")
	}
	body.Status = ""
	sol, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusCreated, func(m *core.Mission) (scenario.Solution, error) {
		if _, err := m.AddDesignSolution(sol); err != nil {
			return scenario.Solution{}, err
		}
		return scenario.FromSolution(sol), nil
	})
}

func (s *Server) listSolutions(c *gin.Context) {
	read(s, c, func(m *core.Mission) (gin.H, error) {
		out := []scenario.SolutionItem{}
		for _, sol := range m.DesignSolutions() {
			out = append(out, scenario.FromSolutionItem(sol))
		}
		return gin.H{"solutions": out}, nil
	})
}

func (s *Server) getSolution(c *gin.Context) {
	sid := c.Param("sid")
	read(s, c, func(m *core.Mission) (SolutionDetail, error) {
		sol := m.DesignSolution(sid)
		if sol == nil {
			return SolutionDetail{}, solutionNotFound(sid)
		}
		out := SolutionDetail{Solution: scenario.FromSolution(sol)}
		if ev := m.Evaluation(sid); ev != nil {
			view := scenario.FromEvaluation(ev)
			out.Evaluation = &view
		}
		return out, nil
	})
}

// updateSolution replaces the spacecraft and orbit. The status is owned by
// evaluation and selection and cannot be set here.
func (s *Server) updateSolution(c *gin.Context) {
	var body scenario.Solution
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	body.ID = c.Param("sid")
	body.Status = ""
	sol, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusOK, func(m *core.Mission) (scenario.Solution, error) {
		if !m.ReplaceDesignSolution(sol) {
			return scenario.Solution{}, solutionNotFound(sol.ID)
		}
		return scenario.FromSolution(sol), nil
	})
}

func (s *Server) deleteSolution(c *gin.Context) {
	sid := c.Param("sid")
	mutate(s, c, http.StatusOK, func(m *core.Mission) (gin.H, error) {
		if !m.RemoveDesignSolution(sid) {
			return nil, solutionNotFound(sid)
		}
		return deleted("Solution", sid), nil
	})
}

// evaluateSolution runs the automatic evaluator when the body carries no
// verification entries, otherwise records the entries as given.
func (s *Server) evaluateSolution(c *gin.Context) {
	var in scenario.EvaluationInput
	if err := bindOptionalJSON(c, &in); err != nil {
		abortWithError(c, err)
		return
	}
	sid := c.Param("sid")
	ctx := c.Request.Context()
	mutate(s, c, http.StatusOK, func(m *core.Mission) (scenario.Evaluation, error) {
		if in.IsAuto() {
			res, err := s.evaluator.Evaluate(ctx, m, sid)
			if err != nil {
				return scenario.Evaluation{}, err
			}
			in.Annotate(res.Evaluation)
			return scenario.FromEvaluation(res.Evaluation), nil
		}
		start := time.Now()
		ev, err := in.Apply(m, sid)
		if err != nil {
			return scenario.Evaluation{}, err
		}
		status := m.DesignSolution(sid).Status
		if s.evals != nil {
			s.evals.ObserveEvaluation(status, time.Since(start))
		}
		logging.LoggerFromContext(ctx).Info(ctx, "manual evaluation recorded",
			logging.String("mission_id", m.ID),
			logging.String("solution_id", sid),
			logging.String("status", string(status)),
		)
		return scenario.FromEvaluation(ev), nil
	})
}

func (s *Server) getEvaluation(c *gin.Context) {
	sid := c.Param("sid")
	read(s, c, func(m *core.Mission) (scenario.Evaluation, error) {
		if m.DesignSolution(sid) == nil {
			return scenario.Evaluation{}, solutionNotFound(sid)
		}
		ev := m.Evaluation(sid)
		if ev == nil {
			return scenario.Evaluation{}, fmt.Errorf("%w: no evaluation for solution %s", ErrNotFound, sid)
		}
		return scenario.FromEvaluation(ev), nil
	})
}

// createIteration snapshots the solution with its current evaluation,
// evaluating it first when it has none.
func (s *Server) createIteration(c *gin.Context) {
	var req IterationRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	if req.SolutionID == "" {
		abortWithError(c, fmt.Errorf("%w: solution_id is required", ErrBadRequest))
		return
	}
	ctx := c.Request.Context()
	mutate(s, c, http.StatusCreated, func(m *core.Mission) (scenario.IterationView, error) {
		sol := m.DesignSolution(req.SolutionID)
		if sol == nil {
			return scenario.IterationView{}, solutionNotFound(req.SolutionID)
		}
		ev := m.Evaluation(req.SolutionID)
		if ev == nil {
			res, err := s.evaluator.Evaluate(ctx, m, req.SolutionID)
			if err != nil {
				return scenario.IterationView{}, err
			}
			ev = res.Evaluation
		}
		it := m.AddDesignIteration(sol, ev, req.ChangesFromPrevious, req.IterationNotes)
		return scenario.FromIteration(it), nil
	})
}

func (s *Server) listIterations(c *gin.Context) {
	read(s, c, func(m *core.Mission) (gin.H, error) {
		out := []scenario.IterationView{}
		for _, it := range m.Iterations() {
			out = append(out, scenario.FromIteration(it))
		}
		return gin.H{"iterations": out}, nil
	})
}

func (s *Server) selectSolution(c *gin.Context) {
	s.applySelection(c, "selected", (*core.Mission).SetSelectedSolution)
}

func (s *Server) baselineSolution(c *gin.Context) {
	s.applySelection(c, "set as baseline", (*core.Mission).SetBaselineSolution)
}

func (s *Server) rejectSolution(c *gin.Context) {
	s.applySelection(c, "rejected", (*core.Mission).RejectSolution)
}

func (s *Server) applySelection(c *gin.Context, verb string, apply func(*core.Mission, string) bool) {
	sid := c.Param("sid")
	mutate(s, c, http.StatusOK, func(m *core.Mission) (SelectionResponse, error) {
		if !apply(m, sid) {
			return SelectionResponse{}, solutionNotFound(sid)
		}
		return SelectionResponse{
			Message:            fmt.Sprintf("Solution %s %s", sid, verb),
			SolutionID:         sid,
			Status:             string(m.DesignSolution(sid).Status),
			BaselineSolutionID: m.BaselineSolutionID,
			SelectedSolutionID: m.SelectedSolutionID,
		}, nil
	})
}

func (s *Server) compareSolutions(c *gin.Context) {
	var req CompareRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	read(s, c, func(m *core.Mission) (scenario.Comparison, error) {
		ids := req.SolutionIDs
		if len(ids) == 0 {
			for _, sol := range m.DesignSolutions() {
				ids = append(ids, sol.ID)
			}
		}
		if s.evals != nil {
			s.evals.IncComparisons()
		}
		return scenario.Compare(m, ids), nil
	})
}
