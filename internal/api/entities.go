package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
	"github.com/signalsfoundry/mission-designer/model"
)

// mutate runs fn under the mission's write lock and writes its result.
func mutate[V any](s *Server, c *gin.Context, status int, fn func(m *core.Mission) (V, error)) {
	var out V
	err := s.store.Update(c.Param("id"), func(m *core.Mission) error {
		v, err := fn(m)
		out = v
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(status, out)
}

// read runs fn under the mission's lock and writes its result.
func read[V any](s *Server, c *gin.Context, fn func(m *core.Mission) (V, error)) {
	var out V
	err := s.store.View(c.Param("id"), func(m *core.Mission) error {
		v, err := fn(m)
		out = v
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func deleted(kind, id string) gin.H {
	return gin.H{"message": kind + " deleted", "id": id}
}

// ---- Objectives ----

func (s *Server) createObjective(c *gin.Context) {
	var body scenario.Objective
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	if body.ID == "" {
		body.ID = newID("OBJ")
	}
	obj, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusCreated, func(m *core.Mission) (scenario.Objective, error) {
		if err := m.AddObjective(obj); err != nil {
			return scenario.Objective{}, err
		}
		return scenario.FromObjective(obj), nil
	})
}

func (s *Server) listObjectives(c *gin.Context) {
	read(s, c, func(m *core.Mission) (gin.H, error) {
		out := []scenario.Objective{}
		for _, o := range m.Objectives() {
			out = append(out, scenario.FromObjective(o))
		}
		return gin.H{"objectives": out}, nil
	})
}

func (s *Server) updateObjective(c *gin.Context) {
	var body scenario.Objective
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	body.ID = c.Param("oid")
	obj, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusOK, func(m *core.Mission) (scenario.Objective, error) {
		if !m.ReplaceObjective(obj) {
			return scenario.Objective{}, fmt.Errorf("%w: objective %s", ErrNotFound, obj.ID)
		}
		return scenario.FromObjective(obj), nil
	})
}

func (s *Server) deleteObjective(c *gin.Context) {
	oid := c.Param("oid")
	mutate(s, c, http.StatusOK, func(m *core.Mission) (gin.H, error) {
		if !m.RemoveObjective(oid) {
			return nil, fmt.Errorf("%w: objective %s", ErrNotFound, oid)
		}
		return deleted("Objective", oid), nil
	})
}

// ---- Requirements ----

func (s *Server) createRequirement(c *gin.Context) {
	var body scenario.Requirement
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	if body.ID == "" {
		body.ID = newID("REQ")
	}
	req, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusCreated, func(m *core.Mission) (scenario.Requirement, error) {
		if err := m.AddRequirement(req); err != nil {
			return scenario.Requirement{}, err
		}
		return scenario.FromRequirement(req), nil
	})
}

func (s *Server) listRequirements(c *gin.Context) {
	filter := c.Query("type")
	var rt model.RequirementType
	if filter != "" {
		var err error
		if rt, err = model.ParseRequirementType(filter); err != nil {
			abortWithError(c, err)
			return
		}
	}
	read(s, c, func(m *core.Mission) (gin.H, error) {
		reqs := m.Requirements()
		if filter != "" {
			reqs = m.RequirementsByType(rt)
		}
		out := []scenario.Requirement{}
		for _, r := range reqs {
			out = append(out, scenario.FromRequirement(r))
		}
		return gin.H{"requirements": out}, nil
	})
}

func (s *Server) updateRequirement(c *gin.Context) {
	var body scenario.Requirement
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	body.ID = c.Param("rid")
	req, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusOK, func(m *core.Mission) (scenario.Requirement, error) {
		if !m.ReplaceRequirement(req) {
			return scenario.Requirement{}, fmt.Errorf("%w: requirement %s", ErrNotFound, req.ID)
		}
		return scenario.FromRequirement(req), nil
	})
}

func (s *Server) deleteRequirement(c *gin.Context) {
	rid := c.Param("rid")
	mutate(s, c, http.StatusOK, func(m *core.Mission) (gin.H, error) {
		if !m.RemoveRequirement(rid) {
			return nil, fmt.Errorf("%w: requirement %s", ErrNotFound, rid)
		}
		return deleted("Requirement", rid), nil
	})
}

// ---- Constraints ----

func (s *Server) createConstraint(c *gin.Context) {
	var body scenario.Constraint
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	if body.ID == "" {
		body.ID = newID("CON")
	}
	con, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusCreated, func(m *core.Mission) (scenario.Constraint, error) {
		if err := m.AddConstraint(con); err != nil {
			return scenario.Constraint{}, err
		}
		return scenario.FromConstraint(con), nil
	})
}

func (s *Server) listConstraints(c *gin.Context) {
	filter := c.Query("type")
	var ct model.ConstraintType
	if filter != "" {
		var err error
		if ct, err = model.ParseConstraintType(filter); err != nil {
			abortWithError(c, err)
			return
		}
	}
	read(s, c, func(m *core.Mission) (gin.H, error) {
		cons := m.Constraints()
		if filter != "" {
			cons = m.ConstraintsByType(ct)
		}
		out := []scenario.Constraint{}
		for _, con := range cons {
			out = append(out, scenario.FromConstraint(con))
		}
		return gin.H{"constraints": out}, nil
	})
}

func (s *Server) updateConstraint(c *gin.Context) {
	var body scenario.Constraint
	if err := bindJSON(c, &body); err != nil {
		abortWithError(c, err)
		return
	}
	body.ID = c.Param("cid")
	con, err := body.Build()
	if err != nil {
		abortWithError(c, err)
		return
	}
	mutate(s, c, http.StatusOK, func(m *core.Mission) (scenario.Constraint, error) {
		if !m.ReplaceConstraint(con) {
			return scenario.Constraint{}, fmt.Errorf("%w: constraint %s", ErrNotFound, con.ID)
		}
		return scenario.FromConstraint(con), nil
	})
}

func (s *Server) deleteConstraint(c *gin.Context) {
	cid := c.Param("cid")
	mutate(s, c, http.StatusOK, func(m *core.Mission) (gin.H, error) {
		if !m.RemoveConstraint(cid) {
			return nil, fmt.Errorf("%w: constraint %s", ErrNotFound, cid)
		}
		return deleted("Constraint", cid), nil
	})
}
