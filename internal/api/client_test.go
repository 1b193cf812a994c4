package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

func TestClientWorkflow(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx := context.Background()
	c := NewClient(ts.URL+"/", WithHTTPClient(ts.Client()))

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	doc, err := scenario.GlobalWatch()
	require.NoError(t, err)

	_, err = c.CreateMission(ctx, MissionRequest{ID: "CLI-1", Name: "Client mission", MissionType: "Earth Observation"})
	require.NoError(t, err)
	_, err = c.AddRequirement(ctx, "CLI-1", doc.Requirements[2])
	require.NoError(t, err)
	_, err = c.AddConstraint(ctx, "CLI-1", doc.Constraints[0])
	require.NoError(t, err)
	_, err = c.AddObjective(ctx, "CLI-1", doc.Objectives[0])
	require.NoError(t, err)
	for _, sol := range doc.Solutions[:2] {
		_, err = c.AddSolution(ctx, "CLI-1", sol)
		require.NoError(t, err)
	}

	reqs, err := c.ListRequirements(ctx, "CLI-1", "swath_width")
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	evA, err := c.EvaluateSolution(ctx, "CLI-1", "SOL-A", scenario.EvaluationInput{})
	require.NoError(t, err)
	assert.Equal(t, "requirements_not_met", evA.OverallStatus)

	it, err := c.AddIteration(ctx, "CLI-1", IterationRequest{SolutionID: "SOL-B", ChangesFromPrevious: "wider detector"})
	require.NoError(t, err)
	assert.Equal(t, 1, it.IterationNumber)
	require.NotNil(t, it.Evaluation)
	assert.Equal(t, "requirements_met", it.Evaluation.OverallStatus)

	evB, err := c.GetEvaluation(ctx, "CLI-1", "SOL-B")
	require.NoError(t, err)
	assert.Equal(t, it.Evaluation.EvaluationID, evB.EvaluationID)

	comparison, err := c.CompareSolutions(ctx, "CLI-1")
	require.NoError(t, err)
	require.Len(t, comparison.Ranking, 2)
	assert.Equal(t, "SOL-B", comparison.Ranking[0].SolutionID)

	sel, err := c.SelectSolution(ctx, "CLI-1", "SOL-B")
	require.NoError(t, err)
	assert.Equal(t, "selected", sel.Status)

	detail, err := c.GetMission(ctx, "CLI-1")
	require.NoError(t, err)
	assert.Equal(t, "SOL-B", detail.SelectedSolutionID)
	assert.Equal(t, 1, detail.DesignIterationsCount)

	missions, err := c.ListMissions(ctx)
	require.NoError(t, err)
	assert.Len(t, missions, 2)

	require.NoError(t, c.DeleteMission(ctx, "CLI-1"))
}

func TestClientReturnsAPIError(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := NewClient(ts.URL, WithHTTPClient(ts.Client()))
	_, err := c.GetSolution(context.Background(), "GW-001", "SOL-Z")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "SOL-Z")

	_, err = c.CreateMission(context.Background(), MissionRequest{ID: "GW-001", Name: "dup"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestClientForwardsRequestID(t *testing.T) {
	var seen string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","missions_count":0}`))
	}))
	defer ts.Close()

	ctx := logging.ContextWithRequestID(context.Background(), "trace-me")
	_, err := NewClient(ts.URL).Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trace-me", seen)
}
