package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client calls the mission design REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default 30s-timeout http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient targets baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func missionPath(id string, parts ...string) string {
	p := "/api/missions/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// CreateMission registers a new mission.
func (c *Client) CreateMission(ctx context.Context, req MissionRequest) (scenario.MissionSummary, error) {
	var out scenario.MissionSummary
	err := c.do(ctx, http.MethodPost, "/api/missions", req, &out)
	return out, err
}

// ListMissions returns every mission summary.
func (c *Client) ListMissions(ctx context.Context) ([]scenario.MissionSummary, error) {
	var out struct {
		Missions []scenario.MissionSummary `json:"missions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/missions", nil, &out)
	return out.Missions, err
}

// GetMission returns the full mission view.
func (c *Client) GetMission(ctx context.Context, id string) (MissionDetail, error) {
	var out MissionDetail
	err := c.do(ctx, http.MethodGet, missionPath(id), nil, &out)
	return out, err
}

// UpdateMission changes the descriptive fields; empty fields are kept.
func (c *Client) UpdateMission(ctx context.Context, id string, req MissionRequest) (scenario.MissionSummary, error) {
	var out scenario.MissionSummary
	err := c.do(ctx, http.MethodPut, missionPath(id), req, &out)
	return out, err
}

// DeleteMission removes the mission.
func (c *Client) DeleteMission(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, missionPath(id), nil, nil)
}

// AddObjective posts an objective.
func (c *Client) AddObjective(ctx context.Context, missionID string, o scenario.Objective) (scenario.Objective, error) {
	var out scenario.Objective
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "objectives"), o, &out)
	return out, err
}

// ListObjectives returns the mission's objectives.
func (c *Client) ListObjectives(ctx context.Context, missionID string) ([]scenario.Objective, error) {
	var out struct {
		Objectives []scenario.Objective `json:"objectives"`
	}
	err := c.do(ctx, http.MethodGet, missionPath(missionID, "objectives"), nil, &out)
	return out.Objectives, err
}

// AddRequirement posts a requirement.
func (c *Client) AddRequirement(ctx context.Context, missionID string, r scenario.Requirement) (scenario.Requirement, error) {
	var out scenario.Requirement
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "requirements"), r, &out)
	return out, err
}

// ListRequirements returns the mission's requirements, filtered by type
// when requirementType is non-empty.
func (c *Client) ListRequirements(ctx context.Context, missionID, requirementType string) ([]scenario.Requirement, error) {
	path := missionPath(missionID, "requirements")
	if requirementType != "" {
		path += "?type=" + url.QueryEscape(requirementType)
	}
	var out struct {
		Requirements []scenario.Requirement `json:"requirements"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Requirements, err
}

// AddConstraint posts a constraint.
func (c *Client) AddConstraint(ctx context.Context, missionID string, con scenario.Constraint) (scenario.Constraint, error) {
	var out scenario.Constraint
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "constraints"), con, &out)
	return out, err
}

// ListConstraints returns the mission's constraints, filtered by type when
// constraintType is non-empty.
func (c *Client) ListConstraints(ctx context.Context, missionID, constraintType string) ([]scenario.Constraint, error) {
	path := missionPath(missionID, "constraints")
	if constraintType != "" {
		path += "?type=" + url.QueryEscape(constraintType)
	}
	var out struct {
		Constraints []scenario.Constraint `json:"constraints"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Constraints, err
}

// AddSolution posts a design solution.
func (c *Client) AddSolution(ctx context.Context, missionID string, s scenario.Solution) (scenario.Solution, error) {
	var out scenario.Solution
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "solutions"), s, &out)
	return out, err
}

// ListSolutions returns the solution list view.
func (c *Client) ListSolutions(ctx context.Context, missionID string) ([]scenario.SolutionItem, error) {
	var out struct {
		Solutions []scenario.SolutionItem `json:"solutions"`
	}
	err := c.do(ctx, http.MethodGet, missionPath(missionID, "solutions"), nil, &out)
	return out.Solutions, err
}

// GetSolution returns one solution with its current evaluation.
func (c *Client) GetSolution(ctx context.Context, missionID, solutionID string) (SolutionDetail, error) {
	var out SolutionDetail
	err := c.do(ctx, http.MethodGet, missionPath(missionID, "solutions", solutionID), nil, &out)
	return out, err
}

// EvaluateSolution evaluates a solution. A zero input runs the automatic
// evaluator on the server.
func (c *Client) EvaluateSolution(ctx context.Context, missionID, solutionID string, in scenario.EvaluationInput) (scenario.Evaluation, error) {
	var out scenario.Evaluation
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "solutions", solutionID, "evaluate"), in, &out)
	return out, err
}

// GetEvaluation returns the current evaluation of a solution.
func (c *Client) GetEvaluation(ctx context.Context, missionID, solutionID string) (scenario.Evaluation, error) {
	var out scenario.Evaluation
	err := c.do(ctx, http.MethodGet, missionPath(missionID, "solutions", solutionID, "evaluation"), nil, &out)
	return out, err
}

// AddIteration appends a design iteration.
func (c *Client) AddIteration(ctx context.Context, missionID string, req IterationRequest) (scenario.IterationView, error) {
	var out scenario.IterationView
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "iterations"), req, &out)
	return out, err
}

// ListIterations returns the design history.
func (c *Client) ListIterations(ctx context.Context, missionID string) ([]scenario.IterationView, error) {
	var out struct {
		Iterations []scenario.IterationView `json:"iterations"`
	}
	err := c.do(ctx, http.MethodGet, missionPath(missionID, "iterations"), nil, &out)
	return out.Iterations, err
}

// SelectSolution marks the solution as selected.
func (c *Client) SelectSolution(ctx context.Context, missionID, solutionID string) (SelectionResponse, error) {
	var out SelectionResponse
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "select-solution", solutionID), nil, &out)
	return out, err
}

// SetBaselineSolution marks the solution as the baseline.
func (c *Client) SetBaselineSolution(ctx context.Context, missionID, solutionID string) (SelectionResponse, error) {
	var out SelectionResponse
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "baseline-solution", solutionID), nil, &out)
	return out, err
}

// RejectSolution moves the solution to rejected.
func (c *Client) RejectSolution(ctx context.Context, missionID, solutionID string) (SelectionResponse, error) {
	var out SelectionResponse
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "reject-solution", solutionID), nil, &out)
	return out, err
}

// CompareSolutions returns the comparison report and ranking. No ids
// compares every solution.
func (c *Client) CompareSolutions(ctx context.Context, missionID string, ids ...string) (scenario.Comparison, error) {
	var out scenario.Comparison
	err := c.do(ctx, http.MethodPost, missionPath(missionID, "compare"), CompareRequest{SolutionIDs: ids}, &out)
	return out, err
}
