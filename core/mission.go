package core

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/mission-designer/model"
	"github.com/signalsfoundry/mission-designer/timectrl"
)

// DefaultMissionType is used when a mission does not name its type.
const DefaultMissionType = "Earth Observation"

// Mission owns the objectives, requirements, constraints, candidate
// solutions, their evaluations and the design iteration history.
//
// A Mission is not safe for concurrent use; callers serialise access per
// mission (see kb.MissionStore).
type Mission struct {
	ID          string
	Name        string
	Description string
	MissionType string

	objectives   []*MissionObjective
	requirements []*Requirement
	constraints  []*Constraint
	solutions    []*DesignSolution
	evaluations  map[string]*SolutionEvaluation
	iterations   []*DesignIteration

	BaselineSolutionID string
	SelectedSolutionID string

	CreatedAt    time.Time
	LastModified time.Time

	clock timectrl.Clock
}

// MissionOption customises Mission construction.
type MissionOption func(*Mission)

// WithClock sets the clock used for every timestamp the mission records.
func WithClock(c timectrl.Clock) MissionOption {
	return func(m *Mission) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithMissionType overrides DefaultMissionType.
func WithMissionType(t string) MissionOption {
	return func(m *Mission) {
		if t != "" {
			m.MissionType = t
		}
	}
}

// NewMission constructs an empty mission.
func NewMission(id, name, description string, opts ...MissionOption) (*Mission, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: mission id is required", ErrInvalidRecord)
	}
	m := &Mission{
		ID:          id,
		Name:        name,
		Description: description,
		MissionType: DefaultMissionType,
		evaluations: make(map[string]*SolutionEvaluation),
		clock:       timectrl.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	now := m.clock.Now()
	m.CreatedAt = now
	m.LastModified = now
	return m, nil
}

func (m *Mission) touch() { m.LastModified = m.clock.Now() }

// Now reads the mission's clock.
func (m *Mission) Now() time.Time { return m.clock.Now() }

// UpdateDetails replaces the descriptive fields; empty arguments are ignored.
func (m *Mission) UpdateDetails(name, description, missionType string) {
	if name != "" {
		m.Name = name
	}
	if description != "" {
		m.Description = description
	}
	if missionType != "" {
		m.MissionType = missionType
	}
	m.touch()
}

// ---- Objectives ----

// AddObjective appends o. Duplicate ids are rejected.
func (m *Mission) AddObjective(o *MissionObjective) error {
	if m.Objective(o.ID) != nil {
		return fmt.Errorf("%w: objective %s", ErrDuplicateID, o.ID)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.clock.Now()
	}
	m.objectives = append(m.objectives, o)
	m.touch()
	return nil
}

// Objective returns the objective with id, or nil.
func (m *Mission) Objective(id string) *MissionObjective {
	for _, o := range m.objectives {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Objectives returns the objectives in insertion order.
func (m *Mission) Objectives() []*MissionObjective {
	return append([]*MissionObjective(nil), m.objectives...)
}

// ReplaceObjective swaps in o for the objective with the same id, keeping
// its position. It reports whether the id was found.
func (m *Mission) ReplaceObjective(o *MissionObjective) bool {
	for i, cur := range m.objectives {
		if cur.ID == o.ID {
			if o.CreatedAt.IsZero() {
				o.CreatedAt = cur.CreatedAt
			}
			m.objectives[i] = o
			m.touch()
			return true
		}
	}
	return false
}

// RemoveObjective deletes the objective with id.
func (m *Mission) RemoveObjective(id string) bool {
	for i, o := range m.objectives {
		if o.ID == id {
			m.objectives = append(m.objectives[:i], m.objectives[i+1:]...)
			m.touch()
			return true
		}
	}
	return false
}

// AllKPIs flattens the KPIs of every objective.
func (m *Mission) AllKPIs() []*KeyPerformanceIndicator {
	var out []*KeyPerformanceIndicator
	for _, o := range m.objectives {
		out = append(out, o.AllKPIs()...)
	}
	return out
}

// KPI returns the KPI with id, or nil.
func (m *Mission) KPI(id string) *KeyPerformanceIndicator {
	for _, k := range m.AllKPIs() {
		if k.ID == id {
			return k
		}
	}
	return nil
}

// ---- Requirements ----

// AddRequirement appends r. Duplicate ids are rejected.
func (m *Mission) AddRequirement(r *Requirement) error {
	if m.Requirement(r.ID) != nil {
		return fmt.Errorf("%w: requirement %s", ErrDuplicateID, r.ID)
	}
	m.requirements = append(m.requirements, r)
	m.touch()
	return nil
}

// Requirement returns the requirement with id, or nil.
func (m *Mission) Requirement(id string) *Requirement {
	for _, r := range m.requirements {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Requirements returns the requirements in insertion order.
func (m *Mission) Requirements() []*Requirement {
	return append([]*Requirement(nil), m.requirements...)
}

// RequirementsByType filters requirements by type.
func (m *Mission) RequirementsByType(t model.RequirementType) []*Requirement {
	var out []*Requirement
	for _, r := range m.requirements {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// ReplaceRequirement swaps in r for the requirement with the same id.
func (m *Mission) ReplaceRequirement(r *Requirement) bool {
	for i, cur := range m.requirements {
		if cur.ID == r.ID {
			m.requirements[i] = r
			m.touch()
			return true
		}
	}
	return false
}

// RemoveRequirement deletes the requirement with id.
func (m *Mission) RemoveRequirement(id string) bool {
	for i, r := range m.requirements {
		if r.ID == id {
			m.requirements = append(m.requirements[:i], m.requirements[i+1:]...)
			m.touch()
			return true
		}
	}
	return false
}

// VerifyRequirement checks actual against the requirement with id. Unknown
// ids yield false.
func (m *Mission) VerifyRequirement(id string, actual float64) bool {
	r := m.Requirement(id)
	if r == nil {
		return false
	}
	return r.Verify(actual)
}

// ---- Constraints ----

// AddConstraint appends c. Duplicate ids are rejected.
func (m *Mission) AddConstraint(c *Constraint) error {
	if m.Constraint(c.ID) != nil {
		return fmt.Errorf("%w: constraint %s", ErrDuplicateID, c.ID)
	}
	m.constraints = append(m.constraints, c)
	m.touch()
	return nil
}

// Constraint returns the constraint with id, or nil.
func (m *Mission) Constraint(id string) *Constraint {
	for _, c := range m.constraints {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Constraints returns the constraints in insertion order.
func (m *Mission) Constraints() []*Constraint {
	return append([]*Constraint(nil), m.constraints...)
}

// ConstraintsByType filters constraints by type.
func (m *Mission) ConstraintsByType(t model.ConstraintType) []*Constraint {
	var out []*Constraint
	for _, c := range m.constraints {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceConstraint swaps in c for the constraint with the same id.
func (m *Mission) ReplaceConstraint(c *Constraint) bool {
	for i, cur := range m.constraints {
		if cur.ID == c.ID {
			m.constraints[i] = c
			m.touch()
			return true
		}
	}
	return false
}

// RemoveConstraint deletes the constraint with id.
func (m *Mission) RemoveConstraint(id string) bool {
	for i, c := range m.constraints {
		if c.ID == id {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			m.touch()
			return true
		}
	}
	return false
}

// VerifyConstraint checks actual against the constraint with id. Unknown
// ids yield false.
func (m *Mission) VerifyConstraint(id string, actual float64) bool {
	c := m.Constraint(id)
	if c == nil {
		return false
	}
	return c.Verify(actual)
}

// ---- Solutions ----

// AddDesignSolution registers s and returns its id. The orbit epoch and the
// creation time default to the mission clock.
func (m *Mission) AddDesignSolution(s *DesignSolution) (string, error) {
	if m.DesignSolution(s.ID) != nil {
		return "", fmt.Errorf("%w: %s", ErrSolutionExists, s.ID)
	}
	now := m.clock.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.Orbit != nil && s.Orbit.Epoch.IsZero() {
		s.Orbit.SetEpoch(now)
	}
	if s.Status == "" {
		s.Status = model.SolutionProposed
	}
	m.solutions = append(m.solutions, s)
	m.touch()
	return s.ID, nil
}

// DesignSolution returns the solution with id, or nil.
func (m *Mission) DesignSolution(id string) *DesignSolution {
	for _, s := range m.solutions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// DesignSolutions returns the solutions in insertion order.
func (m *Mission) DesignSolutions() []*DesignSolution {
	return append([]*DesignSolution(nil), m.solutions...)
}

// ReplaceDesignSolution swaps in s for the solution with the same id. The
// existing status and creation time are kept.
func (m *Mission) ReplaceDesignSolution(s *DesignSolution) bool {
	for i, cur := range m.solutions {
		if cur.ID == s.ID {
			s.Status = cur.Status
			s.CreatedAt = cur.CreatedAt
			if s.Orbit != nil && s.Orbit.Epoch.IsZero() && cur.Orbit != nil {
				s.Orbit.SetEpoch(cur.Orbit.Epoch)
			}
			m.solutions[i] = s
			m.touch()
			return true
		}
	}
	return false
}

// RemoveDesignSolution deletes the solution with id and its evaluation.
// Baseline and selected references to it are cleared.
func (m *Mission) RemoveDesignSolution(id string) bool {
	for i, s := range m.solutions {
		if s.ID == id {
			m.solutions = append(m.solutions[:i], m.solutions[i+1:]...)
			delete(m.evaluations, id)
			if m.BaselineSolutionID == id {
				m.BaselineSolutionID = ""
			}
			if m.SelectedSolutionID == id {
				m.SelectedSolutionID = ""
			}
			m.touch()
			return true
		}
	}
	return false
}

// EvaluateSolution starts a fresh evaluation for the solution, replacing any
// earlier one. A solution that is not yet selected or rejected moves to
// under_evaluation.
func (m *Mission) EvaluateSolution(id string) (*SolutionEvaluation, error) {
	s := m.DesignSolution(id)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	now := m.clock.Now()
	ev := NewSolutionEvaluation(
		fmt.Sprintf("EVAL-%s-%s", s.ID, now.Format("20060102150405")),
		s.ID, s.Label, now,
	)
	m.evaluations[s.ID] = ev
	if !isTerminal(s.Status) {
		s.Status = model.SolutionUnderEvaluation
	}
	m.touch()
	return ev, nil
}

// Evaluation returns the current evaluation for a solution, or nil.
func (m *Mission) Evaluation(solutionID string) *SolutionEvaluation {
	return m.evaluations[solutionID]
}

// ResolveSolutionStatus runs DetermineOverallStatus on the solution's
// evaluation and copies the outcome onto the solution unless it has already
// been selected or rejected.
func (m *Mission) ResolveSolutionStatus(id string) (model.SolutionStatus, error) {
	s := m.DesignSolution(id)
	if s == nil {
		return "", fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	ev := m.evaluations[id]
	if ev == nil {
		return s.Status, nil
	}
	status := ev.DetermineOverallStatus()
	if !isTerminal(s.Status) {
		s.Status = status
	}
	m.touch()
	return status, nil
}

func isTerminal(s model.SolutionStatus) bool {
	return s == model.SolutionSelected || s == model.SolutionRejected
}

// SetBaselineSolution marks id as the baseline. Unknown ids are ignored.
func (m *Mission) SetBaselineSolution(id string) bool {
	if m.DesignSolution(id) == nil {
		return false
	}
	m.BaselineSolutionID = id
	m.touch()
	return true
}

// SetSelectedSolution marks id as the selected design and moves it to
// selected regardless of its evaluation outcome. Unknown ids are ignored.
func (m *Mission) SetSelectedSolution(id string) bool {
	s := m.DesignSolution(id)
	if s == nil {
		return false
	}
	m.SelectedSolutionID = id
	s.Status = model.SolutionSelected
	m.touch()
	return true
}

// RejectSolution moves id to rejected. Unknown ids are ignored.
func (m *Mission) RejectSolution(id string) bool {
	s := m.DesignSolution(id)
	if s == nil {
		return false
	}
	s.Status = model.SolutionRejected
	if m.SelectedSolutionID == id {
		m.SelectedSolutionID = ""
	}
	m.touch()
	return true
}

// ---- Iterations ----

// AddDesignIteration appends a snapshot of the solution and evaluation to the
// history. Numbers run 1, 2, 3... in append order. evaluation may be nil.
func (m *Mission) AddDesignIteration(s *DesignSolution, evaluation *SolutionEvaluation, changes, notes string) *DesignIteration {
	it := &DesignIteration{
		Number:              len(m.iterations) + 1,
		Solution:            s.Clone(),
		Evaluation:          evaluation.Clone(),
		CreatedAt:           m.clock.Now(),
		Notes:               notes,
		ChangesFromPrevious: changes,
	}
	m.iterations = append(m.iterations, it)
	m.touch()
	return it
}

// Iterations returns the design history in order.
func (m *Mission) Iterations() []*DesignIteration {
	return append([]*DesignIteration(nil), m.iterations...)
}
