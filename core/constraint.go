package core

import (
	"fmt"

	"github.com/signalsfoundry/mission-designer/model"
)

var constraintUnits = map[model.ConstraintType][]model.Unit{
	model.ConstraintBudget:   {model.UnitUSD, model.UnitEUR},
	model.ConstraintMass:     {model.UnitKilogram, model.UnitGram, model.UnitTonne},
	model.ConstraintPower:    {model.UnitWatt, model.UnitKilowatt},
	model.ConstraintSchedule: {model.UnitDay, model.UnitYear},
}

// AllowedConstraintUnits returns the unit set for t, or nil when any unit is accepted.
func AllowedConstraintUnits(t model.ConstraintType) []model.Unit {
	return append([]model.Unit(nil), constraintUnits[t]...)
}

// ConstraintRecord is the plain input used to build a Constraint. The
// trailing fields apply to one variant each: Phase to budget, Parameter to
// orbital, Component to mass, Mode to power and Milestone to schedule.
type ConstraintRecord struct {
	ID           string
	Title        string
	Type         model.ConstraintType
	Value        model.NumericConstraintValue
	Priority     model.Priority
	Rationale    string
	IsNegotiable bool
	Impacts      []string
	Notes        string

	Phase     string
	Parameter string
	Component string
	Mode      string
	Milestone string
}

// Constraint is a limit a design must respect. Non-negotiable constraints
// gate a solution's overall status.
type Constraint struct {
	ID           string
	Title        string
	Type         model.ConstraintType
	Value        model.NumericConstraintValue
	Priority     model.Priority
	Rationale    string
	IsNegotiable bool
	Impacts      []string
	Notes        string

	Phase     string
	Parameter string
	Component string
	Mode      string
	Milestone string
}

// NewConstraint validates the type, priority, operand shape and unit, and applies the
// variant defaults (phase "total", component "total", mode "nominal").
func NewConstraint(rec ConstraintRecord) (*Constraint, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: constraint id is required", ErrInvalidRecord)
	}
	if _, err := model.ParseConstraintType(string(rec.Type)); err != nil {
		return nil, fmt.Errorf("constraint %s: %w", rec.ID, err)
	}
	priority, err := defaultPriority(rec.Priority)
	if err != nil {
		return nil, fmt.Errorf("constraint %s: %w", rec.ID, err)
	}
	if err := rec.Value.Validate(); err != nil {
		return nil, fmt.Errorf("constraint %s: %w", rec.ID, err)
	}
	if err := checkUnit(rec.Value.Unit, constraintUnits[rec.Type]); err != nil {
		return nil, fmt.Errorf("constraint %s (%s): %w", rec.ID, rec.Type, err)
	}

	c := &Constraint{
		ID:           rec.ID,
		Title:        rec.Title,
		Type:         rec.Type,
		Value:        rec.Value,
		Priority:     priority,
		Rationale:    rec.Rationale,
		IsNegotiable: rec.IsNegotiable,
		Impacts:      append([]string(nil), rec.Impacts...),
		Notes:        rec.Notes,
	}
	switch rec.Type {
	case model.ConstraintBudget:
		c.Phase = stringOr(rec.Phase, "total")
	case model.ConstraintOrbital:
		c.Parameter = rec.Parameter
	case model.ConstraintMass:
		c.Component = stringOr(rec.Component, "total")
	case model.ConstraintPower:
		c.Mode = stringOr(rec.Mode, "nominal")
	case model.ConstraintSchedule:
		c.Milestone = rec.Milestone
	}
	return c, nil
}

// Verify delegates to the constraint value. This is the general-purpose path;
// spacecraft budget checks use the fixed-sense Spacecraft.Verify* methods.
func (c *Constraint) Verify(actual float64) bool { return c.Value.Evaluate(actual) }

// Margin is the signed distance from actual to the constraint boundary.
func (c *Constraint) Margin(actual float64) float64 { return c.Value.Margin(actual) }

func (c *Constraint) String() string {
	kind := "non-negotiable"
	if c.IsNegotiable {
		kind = "negotiable"
	}
	return fmt.Sprintf("%s: %s (%s, %s)", c.ID, c.Title, c.Value, kind)
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
