package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

// MissionRequest is the body of mission create and update calls.
type MissionRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MissionType string `json:"mission_type,omitempty"`
}

// MissionDetail is the full view of one mission.
type MissionDetail struct {
	scenario.MissionSummary
	Objectives   []scenario.Objective    `json:"objectives"`
	Requirements []scenario.Requirement  `json:"requirements"`
	Constraints  []scenario.Constraint   `json:"constraints"`
	Solutions    []scenario.SolutionItem `json:"design_solutions"`
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// newID returns a short prefixed identifier for records posted without one.
func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Server) createMission(c *gin.Context) {
	var req MissionRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	if req.Name == "" {
		abortWithError(c, fmt.Errorf("%w: name is required", ErrBadRequest))
		return
	}
	if req.ID == "" {
		req.ID = newID("MISSION")
	}
	m, err := core.NewMission(req.ID, req.Name, req.Description,
		core.WithMissionType(req.MissionType),
		core.WithClock(s.clock),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.store.Create(m); err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	logging.LoggerFromContext(ctx).Info(ctx, "mission created", logging.String("mission_id", m.ID))
	s.respondSummary(c, http.StatusCreated, m.ID)
}

func (s *Server) listMissions(c *gin.Context) {
	infos := s.store.List()
	out := make([]scenario.MissionSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, scenario.FromInfo(info))
	}
	c.JSON(http.StatusOK, gin.H{"missions": out, "count": len(out)})
}

func (s *Server) getMission(c *gin.Context) {
	id := c.Param("id")
	info, err := s.store.Info(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	detail := MissionDetail{MissionSummary: scenario.FromInfo(info)}
	err = s.store.View(id, func(m *core.Mission) error {
		doc := scenario.FromMission(m)
		detail.Objectives = nonNil(doc.Objectives)
		detail.Requirements = nonNil(doc.Requirements)
		detail.Constraints = nonNil(doc.Constraints)
		detail.Solutions = make([]scenario.SolutionItem, 0, len(doc.Solutions))
		for _, sol := range m.DesignSolutions() {
			detail.Solutions = append(detail.Solutions, scenario.FromSolutionItem(sol))
		}
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) updateMission(c *gin.Context) {
	var req MissionRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	id := c.Param("id")
	err := s.store.Update(id, func(m *core.Mission) error {
		m.UpdateDetails(req.Name, req.Description, req.MissionType)
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.respondSummary(c, http.StatusOK, id)
}

func (s *Server) deleteMission(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	logging.LoggerFromContext(ctx).Info(ctx, "mission deleted", logging.String("mission_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Mission deleted", "mission_id": id})
}

func (s *Server) respondSummary(c *gin.Context, status int, id string) {
	info, err := s.store.Info(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(status, scenario.FromInfo(info))
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
