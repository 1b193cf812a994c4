package core

import (
	"fmt"

	"github.com/signalsfoundry/mission-designer/model"
)

// requirementUnits lists the units each requirement type accepts. Types not
// listed accept any unit.
var requirementUnits = map[model.RequirementType][]model.Unit{
	model.RequirementSpatialResolution:     {model.UnitMeter, model.UnitKilometer, model.UnitCentimeter},
	model.RequirementTemporalResolution:    {model.UnitDay, model.UnitHour, model.UnitMinute},
	model.RequirementSpectralResolution:    {model.UnitNanometer, model.UnitMicrometer, model.UnitCount},
	model.RequirementRadiometricResolution: {model.UnitBit, model.UnitCount},
	model.RequirementSwathWidth:            {model.UnitKilometer, model.UnitMeter},
	model.RequirementCoverageArea:          {model.UnitPercent, model.UnitKilometer},
	model.RequirementDataLatency:           {model.UnitHour, model.UnitMinute, model.UnitDay},
}

// AllowedRequirementUnits returns the unit set for t, or nil when any unit is accepted.
func AllowedRequirementUnits(t model.RequirementType) []model.Unit {
	return append([]model.Unit(nil), requirementUnits[t]...)
}

// RequirementRecord is the plain input used to build a Requirement.
type RequirementRecord struct {
	ID                    string
	Title                 string
	Type                  model.RequirementType
	Value                 model.NumericConstraintValue
	Priority              model.Priority
	Rationale             string
	DerivedFromObjectives []string
	VerificationMethod    string
	Notes                 string

	Region             *model.GeographicRegion
	CoveragePercentage *float64
	SpectralBands      []SpectralBand
}

// Requirement is a numeric acceptance criterion on a measured quantity.
// Region applies to temporal and coverage requirements, CoveragePercentage
// to coverage requirements and SpectralBands to spectral requirements.
type Requirement struct {
	ID                    string
	Title                 string
	Type                  model.RequirementType
	Value                 model.NumericConstraintValue
	Priority              model.Priority
	Rationale             string
	DerivedFromObjectives []string
	VerificationMethod    string
	Notes                 string

	Region             *model.GeographicRegion
	CoveragePercentage *float64
	SpectralBands      []SpectralBand
}

// NewRequirement validates the type, priority, the value's operand shape and
// its unit against the type's allowed set.
func NewRequirement(rec RequirementRecord) (*Requirement, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: requirement id is required", ErrInvalidRecord)
	}
	if _, err := model.ParseRequirementType(string(rec.Type)); err != nil {
		return nil, fmt.Errorf("requirement %s: %w", rec.ID, err)
	}
	priority, err := defaultPriority(rec.Priority)
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", rec.ID, err)
	}
	if err := rec.Value.Validate(); err != nil {
		return nil, fmt.Errorf("requirement %s: %w", rec.ID, err)
	}
	if err := checkUnit(rec.Value.Unit, requirementUnits[rec.Type]); err != nil {
		return nil, fmt.Errorf("requirement %s (%s): %w", rec.ID, rec.Type, err)
	}

	r := &Requirement{
		ID:                    rec.ID,
		Title:                 rec.Title,
		Type:                  rec.Type,
		Value:                 rec.Value,
		Priority:              priority,
		Rationale:             rec.Rationale,
		DerivedFromObjectives: append([]string(nil), rec.DerivedFromObjectives...),
		VerificationMethod:    rec.VerificationMethod,
		Notes:                 rec.Notes,
	}
	switch rec.Type {
	case model.RequirementTemporalResolution:
		r.Region = regionOrGlobal(rec.Region)
	case model.RequirementCoverageArea:
		r.Region = regionOrGlobal(rec.Region)
		r.CoveragePercentage = copyFloat(rec.CoveragePercentage)
	case model.RequirementSpectralResolution:
		r.SpectralBands = append([]SpectralBand(nil), rec.SpectralBands...)
	default:
		r.Region = rec.Region
	}
	return r, nil
}

// Verify delegates to the constraint value. actual must already be in the
// requirement's unit.
func (r *Requirement) Verify(actual float64) bool { return r.Value.Evaluate(actual) }

// Margin is the signed distance from actual to the requirement boundary.
func (r *Requirement) Margin(actual float64) float64 { return r.Value.Margin(actual) }

func (r *Requirement) String() string {
	return fmt.Sprintf("%s: %s (%s)", r.ID, r.Title, r.Value)
}

func regionOrGlobal(r *model.GeographicRegion) *model.GeographicRegion {
	if r != nil {
		return r
	}
	return model.GlobalRegion()
}

func defaultPriority(p model.Priority) (model.Priority, error) {
	if p == "" {
		return model.PriorityMedium, nil
	}
	return model.ParsePriority(string(p))
}

func checkUnit(u model.Unit, allowed []model.Unit) error {
	if !u.Valid() {
		return fmt.Errorf("%w: unit %q", model.ErrInvalidEnum, u)
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == u {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in %v", ErrUnitMismatch, u, allowed)
}
