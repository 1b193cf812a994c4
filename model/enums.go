package model

import (
	"fmt"
	"strings"
)

// Priority ranks how important a requirement or constraint is.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// RequirementType classifies a technical requirement.
type RequirementType string

const (
	RequirementSpatialResolution     RequirementType = "spatial_resolution"
	RequirementTemporalResolution    RequirementType = "temporal_resolution"
	RequirementSpectralResolution    RequirementType = "spectral_resolution"
	RequirementRadiometricResolution RequirementType = "radiometric_resolution"
	RequirementSwathWidth            RequirementType = "swath_width"
	RequirementCoverageArea          RequirementType = "coverage_area"
	RequirementDataLatency           RequirementType = "data_latency"
	RequirementGeolocationAccuracy   RequirementType = "geolocation_accuracy"
	RequirementSignalToNoise         RequirementType = "signal_to_noise_ratio"
	RequirementMissionLifetime       RequirementType = "mission_lifetime"
	RequirementOther                 RequirementType = "other"
)

// ConstraintType classifies a mission constraint.
type ConstraintType string

const (
	ConstraintBudget     ConstraintType = "budget"
	ConstraintOrbital    ConstraintType = "orbital"
	ConstraintTechnology ConstraintType = "technology"
	ConstraintRegulatory ConstraintType = "regulatory"
	ConstraintPhysical   ConstraintType = "physical"
	ConstraintSchedule   ConstraintType = "schedule"
	ConstraintMass       ConstraintType = "mass"
	ConstraintPower      ConstraintType = "power"
	ConstraintDataVolume ConstraintType = "data_volume"
	ConstraintOther      ConstraintType = "other"
)

// ComponentType names the spacecraft subsystem a component belongs to.
type ComponentType string

const (
	ComponentEPS               ComponentType = "eps"
	ComponentADCS              ComponentType = "adcs"
	ComponentPayloadInstrument ComponentType = "payload_instrument"
	ComponentCommunications    ComponentType = "communications"
	ComponentPlatformAvionics  ComponentType = "platform_avionics"
	ComponentPayloadAvionics   ComponentType = "payload_avionics"
	ComponentPropulsion        ComponentType = "propulsion"
	ComponentThermal           ComponentType = "thermal"
	ComponentStructure         ComponentType = "structure"
	ComponentOther             ComponentType = "other"
)

// ObjectiveStatus is the tiered outcome of evaluating a KPI or objective.
type ObjectiveStatus string

const (
	StatusNotEvaluated   ObjectiveStatus = "not_evaluated"
	StatusBelowThreshold ObjectiveStatus = "below_threshold"
	StatusThresholdMet   ObjectiveStatus = "threshold_met"
	StatusBaselineMet    ObjectiveStatus = "baseline_met"
	StatusTargetMet      ObjectiveStatus = "target_met"
	StatusExceeded       ObjectiveStatus = "exceeded"
)

// Rank orders statuses for aggregation: exceeded 5 down to not_evaluated 0.
func (s ObjectiveStatus) Rank() int {
	switch s {
	case StatusExceeded:
		return 5
	case StatusTargetMet:
		return 4
	case StatusBaselineMet:
		return 3
	case StatusThresholdMet:
		return 2
	case StatusBelowThreshold:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold reports whether s is at or above threshold_met.
func (s ObjectiveStatus) MeetsThreshold() bool { return s.Rank() >= StatusThresholdMet.Rank() }

// SolutionStatus tracks a design solution through the evaluation lifecycle.
type SolutionStatus string

const (
	SolutionProposed           SolutionStatus = "proposed"
	SolutionUnderEvaluation    SolutionStatus = "under_evaluation"
	SolutionRequirementsMet    SolutionStatus = "requirements_met"
	SolutionRequirementsNotMet SolutionStatus = "requirements_not_met"
	SolutionSelected           SolutionStatus = "selected"
	SolutionRejected           SolutionStatus = "rejected"
)

// AggregationMethod describes how a KPI combines repeated measurements.
type AggregationMethod string

const (
	AggregationMinimum         AggregationMethod = "minimum"
	AggregationMaximum         AggregationMethod = "maximum"
	AggregationAverage         AggregationMethod = "average"
	AggregationWeightedAverage AggregationMethod = "weighted_average"
	AggregationMedian          AggregationMethod = "median"
	AggregationSum             AggregationMethod = "sum"
	AggregationProduct         AggregationMethod = "product"
	AggregationCustom          AggregationMethod = "custom"
)

// ThresholdLevel is one of the three performance tiers of a KPI.
type ThresholdLevel string

const (
	LevelThreshold ThresholdLevel = "threshold"
	LevelBaseline  ThresholdLevel = "baseline"
	LevelTarget    ThresholdLevel = "target"
)

var (
	priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

	requirementTypes = []RequirementType{
		RequirementSpatialResolution, RequirementTemporalResolution, RequirementSpectralResolution,
		RequirementRadiometricResolution, RequirementSwathWidth, RequirementCoverageArea,
		RequirementDataLatency, RequirementGeolocationAccuracy, RequirementSignalToNoise,
		RequirementMissionLifetime, RequirementOther,
	}

	constraintTypes = []ConstraintType{
		ConstraintBudget, ConstraintOrbital, ConstraintTechnology, ConstraintRegulatory,
		ConstraintPhysical, ConstraintSchedule, ConstraintMass, ConstraintPower,
		ConstraintDataVolume, ConstraintOther,
	}

	componentTypes = []ComponentType{
		ComponentEPS, ComponentADCS, ComponentPayloadInstrument, ComponentCommunications,
		ComponentPlatformAvionics, ComponentPayloadAvionics, ComponentPropulsion,
		ComponentThermal, ComponentStructure, ComponentOther,
	}

	objectiveStatuses = []ObjectiveStatus{
		StatusNotEvaluated, StatusBelowThreshold, StatusThresholdMet,
		StatusBaselineMet, StatusTargetMet, StatusExceeded,
	}

	solutionStatuses = []SolutionStatus{
		SolutionProposed, SolutionUnderEvaluation, SolutionRequirementsMet,
		SolutionRequirementsNotMet, SolutionSelected, SolutionRejected,
	}

	aggregationMethods = []AggregationMethod{
		AggregationMinimum, AggregationMaximum, AggregationAverage, AggregationWeightedAverage,
		AggregationMedian, AggregationSum, AggregationProduct, AggregationCustom,
	}

	thresholdLevels = []ThresholdLevel{LevelThreshold, LevelBaseline, LevelTarget}
)

func parseEnum[T ~string](kind, s string, members []T) (T, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, m := range members {
		if strings.ToLower(string(m)) == v {
			return m, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrInvalidEnum, kind, s)
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) { return parseEnum("priority", s, priorities) }

// ParseRequirementType parses a requirement type name.
func ParseRequirementType(s string) (RequirementType, error) {
	return parseEnum("requirement type", s, requirementTypes)
}

// ParseConstraintType parses a constraint type name.
func ParseConstraintType(s string) (ConstraintType, error) {
	return parseEnum("constraint type", s, constraintTypes)
}

// ParseComponentType parses a component type name.
func ParseComponentType(s string) (ComponentType, error) {
	return parseEnum("component type", s, componentTypes)
}

// ParseObjectiveStatus parses an objective status name.
func ParseObjectiveStatus(s string) (ObjectiveStatus, error) {
	return parseEnum("objective status", s, objectiveStatuses)
}

// ParseSolutionStatus parses a solution status name.
func ParseSolutionStatus(s string) (SolutionStatus, error) {
	return parseEnum("solution status", s, solutionStatuses)
}

// ParseAggregationMethod parses an aggregation method name.
func ParseAggregationMethod(s string) (AggregationMethod, error) {
	return parseEnum("aggregation method", s, aggregationMethods)
}

// ParseThresholdLevel parses a threshold level; matching is case-insensitive.
func ParseThresholdLevel(s string) (ThresholdLevel, error) {
	return parseEnum("threshold level", s, thresholdLevels)
}
