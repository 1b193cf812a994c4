package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
	"github.com/signalsfoundry/mission-designer/kb"
	"github.com/signalsfoundry/mission-designer/timectrl"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const gw = "/api/missions/GW-001"

func newTestServer(t *testing.T) (*Server, *kb.MissionStore) {
	t.Helper()
	doc, err := scenario.GlobalWatch()
	require.NoError(t, err)
	clock := timectrl.NewManualClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Second)
	m, err := doc.Build(context.Background(), nil, core.WithClock(clock))
	require.NoError(t, err)
	store := kb.NewMissionStore()
	require.NoError(t, store.Create(m))
	return NewServer(store, WithClock(clock)), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func solutionBody(t *testing.T, id string) scenario.Solution {
	t.Helper()
	doc, err := scenario.GlobalWatch()
	require.NoError(t, err)
	sol := doc.Solutions[1]
	sol.ID = id
	sol.Label = "Option " + id
	return sol
}

func TestHealthAndDocs(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthStatus](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.MissionsCount)

	w = doJSON(t, s, http.MethodGet, "/api/docs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	docs := decode[Docs](t, w)
	assert.Equal(t, Version, docs.Version)
	assert.Contains(t, docs.Endpoints, Endpoint{Method: http.MethodPost, Path: "/api/missions/:id/compare"})
	assert.Contains(t, docs.Endpoints, Endpoint{Method: http.MethodGet, Path: "/api/missions/:id/solutions/:sid/evaluation"})
}

func TestMissionLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/missions", MissionRequest{ID: "M-1", Name: "Test", Description: "d"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[scenario.MissionSummary](t, w)
	assert.Equal(t, "M-1", created.ID)
	assert.Equal(t, core.DefaultMissionType, created.MissionType)

	w = doJSON(t, s, http.MethodGet, "/api/missions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Missions []scenario.MissionSummary `json:"missions"`
		Count    int                       `json:"count"`
	}](t, w)
	assert.Equal(t, 2, list.Count)

	w = doJSON(t, s, http.MethodPut, "/api/missions/M-1", MissionRequest{Name: "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[scenario.MissionSummary](t, w)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "d", updated.Description)

	w = doJSON(t, s, http.MethodDelete, "/api/missions/M-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, "/api/missions/M-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMissionGeneratesID(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/missions", MissionRequest{Name: "Anonymous"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[scenario.MissionSummary](t, w)
	assert.True(t, strings.HasPrefix(created.ID, "MISSION-"), created.ID)
	assert.Equal(t, 2, store.Len())
}

func TestErrorStatusCodes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/missions", "{", http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/missions", MissionRequest{ID: "X"}, http.StatusBadRequest},
		{"duplicate mission", http.MethodPost, "/api/missions", MissionRequest{ID: "GW-001", Name: "again"}, http.StatusConflict},
		{"unknown mission", http.MethodGet, "/api/missions/nope", nil, http.StatusNotFound},
		{"unknown mission update", http.MethodPut, "/api/missions/nope", MissionRequest{Name: "x"}, http.StatusNotFound},
		{"duplicate objective", http.MethodPost, gw + "/objectives", scenario.Objective{ID: "OBJ-001", Title: "dup", Priority: "high"}, http.StatusConflict},
		{"bad priority", http.MethodPost, gw + "/objectives", scenario.Objective{Title: "x", Priority: "urgent"}, http.StatusBadRequest},
		{"unknown objective", http.MethodPut, gw + "/objectives/OBJ-999", scenario.Objective{Title: "x", Priority: "low"}, http.StatusNotFound},
		{"unknown requirement delete", http.MethodDelete, gw + "/requirements/REQ-999", nil, http.StatusNotFound},
		{"bad requirement filter", http.MethodGet, gw + "/requirements?type=bogus", nil, http.StatusBadRequest},
		{"bad constraint filter", http.MethodGet, gw + "/constraints?type=bogus", nil, http.StatusBadRequest},
		{"solution without orbit", http.MethodPost, gw + "/solutions", scenario.Solution{ID: "SOL-X", Spacecraft: &scenario.Spacecraft{ID: "SC"}}, http.StatusBadRequest},
		{"duplicate solution", http.MethodPost, gw + "/solutions", solutionBody(t, "SOL-A"), http.StatusConflict},
		{"unknown solution", http.MethodGet, gw + "/solutions/SOL-Z", nil, http.StatusNotFound},
		{"evaluate unknown solution", http.MethodPost, gw + "/solutions/SOL-Z/evaluate", nil, http.StatusNotFound},
		{"iteration without solution", http.MethodPost, gw + "/iterations", IterationRequest{}, http.StatusBadRequest},
		{"iteration unknown solution", http.MethodPost, gw + "/iterations", IterationRequest{SolutionID: "SOL-Z"}, http.StatusNotFound},
		{"select unknown", http.MethodPost, gw + "/select-solution/SOL-Z", nil, http.StatusNotFound},
		{"reject unknown", http.MethodPost, gw + "/reject-solution/SOL-Z", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			body := decode[map[string]any](t, w)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetMissionDetail(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, gw, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[MissionDetail](t, w)
	assert.Equal(t, "GlobalWatch", detail.Name)
	assert.Equal(t, 3, detail.DesignSolutionsCount)
	assert.Equal(t, 3, detail.DesignIterationsCount)
	assert.Equal(t, "SOL-B", detail.BaselineSolutionID)
	assert.Len(t, detail.Objectives, 2)
	assert.Len(t, detail.Requirements, 5)
	assert.Len(t, detail.Constraints, 4)
	require.Len(t, detail.Solutions, 3)
	assert.Equal(t, "ORB-705", detail.Solutions[0].OrbitID)
}

func TestRequirementAndConstraintFilters(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, gw+"/requirements?type=swath_width", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reqs := decode[struct {
		Requirements []scenario.Requirement `json:"requirements"`
	}](t, w)
	require.Len(t, reqs.Requirements, 1)
	assert.Equal(t, "REQ-003", reqs.Requirements[0].ID)

	w = doJSON(t, s, http.MethodGet, gw+"/constraints?type=budget", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cons := decode[struct {
		Constraints []scenario.Constraint `json:"constraints"`
	}](t, w)
	require.Len(t, cons.Constraints, 1)
	assert.Equal(t, "CON-002", cons.Constraints[0].ID)

	w = doJSON(t, s, http.MethodGet, gw+"/constraints", nil)
	all := decode[struct {
		Constraints []scenario.Constraint `json:"constraints"`
	}](t, w)
	assert.Len(t, all.Constraints, 4)
}

func TestObjectiveCRUD(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, gw+"/objectives", scenario.Objective{Title: "Data latency", Priority: "medium"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[scenario.Objective](t, w)
	assert.True(t, strings.HasPrefix(created.ID, "OBJ-"), created.ID)

	w = doJSON(t, s, http.MethodPut, gw+"/objectives/"+created.ID, scenario.Objective{Title: "Downlink latency", Priority: "high"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Downlink latency", decode[scenario.Objective](t, w).Title)

	w = doJSON(t, s, http.MethodDelete, gw+"/objectives/OBJ-002", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, gw+"/objectives", nil)
	list := decode[struct {
		Objectives []scenario.Objective `json:"objectives"`
	}](t, w)
	require.Len(t, list.Objectives, 2)
	assert.Equal(t, "OBJ-001", list.Objectives[0].ID)
	assert.Equal(t, created.ID, list.Objectives[1].ID)
}

func TestCreateSolutionStartsProposed(t *testing.T) {
	s, _ := newTestServer(t)

	body := solutionBody(t, "SOL-D")
	body.Status = "selected"
	w := doJSON(t, s, http.MethodPost, gw+"/solutions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "proposed", decode[scenario.Solution](t, w).Status)

	w = doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-D/evaluation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, gw+"/solutions", nil)
	list := decode[struct {
		Solutions []scenario.SolutionItem `json:"solutions"`
	}](t, w)
	assert.Len(t, list.Solutions, 4)
}

func TestUpdateSolutionKeepsStatus(t *testing.T) {
	s, _ := newTestServer(t)

	body := solutionBody(t, "SOL-B")
	body.Name = "Wide-swath imager, revised"
	body.Status = "rejected"
	w := doJSON(t, s, http.MethodPut, gw+"/solutions/SOL-B", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[scenario.Solution](t, w)
	assert.Equal(t, "Wide-swath imager, revised", got.Name)
	assert.Equal(t, "requirements_met", got.Status)

	w = doJSON(t, s, http.MethodDelete, gw+"/solutions/SOL-C", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-C", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateAutomatic(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, gw+"/solutions/SOL-B/evaluate", scenario.EvaluationInput{
		Strengths: []string{"Closes the swath gap"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ev := decode[scenario.Evaluation](t, w)
	assert.Equal(t, "SOL-B", ev.SolutionID)
	assert.Equal(t, "requirements_met", ev.OverallStatus)
	assert.True(t, ev.AllRequirementsMet)
	assert.Equal(t, 100.0, ev.RequirementSuccessRate)
	assert.Contains(t, ev.Strengths, "Closes the swath gap")

	w = doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-B/evaluation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ev.EvaluationID, decode[scenario.Evaluation](t, w).EvaluationID)

	w = doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[SolutionDetail](t, w)
	require.NotNil(t, detail.Evaluation)
	assert.Equal(t, ev.EvaluationID, detail.Evaluation.EvaluationID)
}

func TestEvaluateManualEntries(t *testing.T) {
	s, _ := newTestServer(t)

	in := scenario.EvaluationInput{
		RequirementVerifications: []scenario.RequirementEntry{
			{RequirementID: "REQ-001", CalculatedValue: 12, Verified: true},
		},
		ConstraintVerifications: []scenario.ConstraintEntry{
			{ConstraintID: "CON-001", CalculatedValue: 760},
		},
		SummaryNotes: "Resolution analysis from vendor data",
	}
	w := doJSON(t, s, http.MethodPost, gw+"/solutions/SOL-A/evaluate", in)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ev := decode[scenario.Evaluation](t, w)
	require.Len(t, ev.RequirementVerifications, 1)
	assert.False(t, ev.RequirementVerifications[0].Verified)
	assert.Equal(t, "requirements_not_met", ev.OverallStatus)
	assert.Equal(t, "Resolution analysis from vendor data", ev.SummaryNotes)

	in.RequirementVerifications[0].CalculatedValue = 8
	w = doJSON(t, s, http.MethodPost, gw+"/solutions/SOL-A/evaluate", in)
	require.Equal(t, http.StatusOK, w.Code)
	ev = decode[scenario.Evaluation](t, w)
	assert.Equal(t, "requirements_met", ev.OverallStatus)
	assert.Equal(t, 100.0, ev.RequirementSuccessRate)
}

func TestEvaluateManualRejectsBadUnitWithoutChanges(t *testing.T) {
	s, _ := newTestServer(t)

	before := decode[scenario.Evaluation](t, doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-A/evaluation", nil))
	w := doJSON(t, s, http.MethodPost, gw+"/solutions/SOL-A/evaluate", scenario.EvaluationInput{
		KPIEvaluations: []scenario.KPIEntry{{KPIID: "KPI-EXTERNAL", CalculatedValue: 3, Unit: "furlongs"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	after := decode[scenario.Evaluation](t, doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-A/evaluation", nil))
	assert.Equal(t, before.EvaluationID, after.EvaluationID)
}

func TestIterations(t *testing.T) {
	s, _ := newTestServer(t)

	body := solutionBody(t, "SOL-D")
	require.Equal(t, http.StatusCreated, doJSON(t, s, http.MethodPost, gw+"/solutions", body).Code)

	w := doJSON(t, s, http.MethodPost, gw+"/iterations", IterationRequest{
		SolutionID:          "SOL-D",
		ChangesFromPrevious: "Copy of B for margin study",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[scenario.IterationView](t, w)
	assert.Equal(t, 4, it.IterationNumber)
	require.NotNil(t, it.Evaluation, "an unevaluated solution is evaluated before the snapshot")
	assert.Equal(t, "requirements_met", it.Evaluation.OverallStatus)

	w = doJSON(t, s, http.MethodGet, gw+"/iterations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Iterations []scenario.IterationView `json:"iterations"`
	}](t, w)
	require.Len(t, list.Iterations, 4)
	for i, v := range list.Iterations {
		assert.Equal(t, i+1, v.IterationNumber)
	}
	assert.Equal(t, "SOL-A", list.Iterations[0].SolutionID)
}

func TestSelectionEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, gw+"/select-solution/SOL-B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sel := decode[SelectionResponse](t, w)
	assert.Equal(t, "selected", sel.Status)
	assert.Equal(t, "SOL-B", sel.SelectedSolutionID)

	w = doJSON(t, s, http.MethodPost, gw+"/baseline-solution/SOL-C", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SOL-C", decode[SelectionResponse](t, w).BaselineSolutionID)

	w = doJSON(t, s, http.MethodPost, gw+"/reject-solution/SOL-B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rej := decode[SelectionResponse](t, w)
	assert.Equal(t, "rejected", rej.Status)
	assert.Empty(t, rej.SelectedSolutionID)

	// rejected is terminal for later evaluations
	w = doJSON(t, s, http.MethodPost, gw+"/solutions/SOL-B/evaluate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, gw+"/solutions/SOL-B", nil)
	assert.Equal(t, "rejected", decode[SolutionDetail](t, w).Status)
}

func TestCompare(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, gw+"/compare", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cmpAll := decode[scenario.Comparison](t, w)
	require.Len(t, cmpAll.Ranking, 3)
	assert.Equal(t, "SOL-B", cmpAll.Ranking[0].SolutionID)
	assert.Contains(t, cmpAll.Report, "Option B")

	w = doJSON(t, s, http.MethodPost, gw+"/compare", CompareRequest{SolutionIDs: []string{"SOL-A", "SOL-C"}})
	require.Equal(t, http.StatusOK, w.Code)
	pair := decode[scenario.Comparison](t, w)
	require.Len(t, pair.Ranking, 2)
	assert.Equal(t, "SOL-C", pair.Ranking[0].SolutionID)
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = doJSON(t, s, http.MethodGet, "/api/health", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
