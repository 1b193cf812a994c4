package core

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/mission-designer/model"
)

// DesignSolution pairs one spacecraft with one orbit. Its status only
// changes through Mission operations.
type DesignSolution struct {
	ID         string
	Name       string
	Label      string
	Spacecraft *Spacecraft
	Orbit      *Orbit
	Status     model.SolutionStatus
	CreatedAt  time.Time
	Notes      string
}

// NewDesignSolution validates that both halves of the solution are present.
func NewDesignSolution(id, name, label string, sc *Spacecraft, orbit *Orbit) (*DesignSolution, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: solution id is required", ErrInvalidRecord)
	}
	if sc == nil || orbit == nil {
		return nil, fmt.Errorf("%w: solution %s needs a spacecraft and an orbit", ErrInvalidRecord, id)
	}
	return &DesignSolution{
		ID:         id,
		Name:       name,
		Label:      label,
		Spacecraft: sc,
		Orbit:      orbit,
		Status:     model.SolutionProposed,
	}, nil
}

func (s *DesignSolution) String() string {
	return fmt.Sprintf("%s: %s in %s", s.Label, s.Spacecraft.Name, s.Orbit.Label)
}

// Clone returns a deep copy.
func (s *DesignSolution) Clone() *DesignSolution {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Spacecraft = s.Spacecraft.clone()
	cp.Orbit = s.Orbit.clone()
	return &cp
}

// DesignIteration is one entry of a mission's design history. Solution and
// Evaluation are copies taken when the iteration was appended, so later
// changes to the live solution do not rewrite history.
type DesignIteration struct {
	Number              int
	Solution            *DesignSolution
	Evaluation          *SolutionEvaluation
	CreatedAt           time.Time
	Notes               string
	ChangesFromPrevious string
}
