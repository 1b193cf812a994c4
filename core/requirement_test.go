package core

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/mission-designer/model"
)

func TestNewRequirement_UnitMustMatchType(t *testing.T) {
	cases := []struct {
		typ  model.RequirementType
		unit model.Unit
		ok   bool
	}{
		{model.RequirementSpatialResolution, model.UnitMeter, true},
		{model.RequirementSpatialResolution, model.UnitDay, false},
		{model.RequirementTemporalResolution, model.UnitHour, true},
		{model.RequirementTemporalResolution, model.UnitKilometer, false},
		{model.RequirementSpectralResolution, model.UnitMicrometer, true},
		{model.RequirementRadiometricResolution, model.UnitBit, true},
		{model.RequirementRadiometricResolution, model.UnitByte, false},
		{model.RequirementSwathWidth, model.UnitKilometer, true},
		{model.RequirementCoverageArea, model.UnitPercent, true},
		{model.RequirementDataLatency, model.UnitMinute, true},
		{model.RequirementDataLatency, model.UnitMbps, false},
		{model.RequirementGeolocationAccuracy, model.UnitMbps, true},
	}
	for _, tc := range cases {
		_, err := NewRequirement(RequirementRecord{
			ID: "r", Type: tc.typ, Value: mustValue(t, model.OpLessOrEqual, 1, tc.unit),
		})
		if tc.ok && err != nil {
			t.Fatalf("%s/%s: unexpected error %v", tc.typ, tc.unit, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnitMismatch) {
			t.Fatalf("%s/%s: expected ErrUnitMismatch, got %v", tc.typ, tc.unit, err)
		}
	}
}

func TestNewRequirement_VariantFields(t *testing.T) {
	r, err := NewRequirement(RequirementRecord{
		ID: "cov", Type: model.RequirementCoverageArea,
		Value:              mustValue(t, model.OpGreaterOrEqual, 90, model.UnitPercent),
		CoveragePercentage: Float(90),
	})
	if err != nil {
		t.Fatalf("NewRequirement: %v", err)
	}
	if r.Region == nil || !r.Region.IsGlobal {
		t.Fatalf("coverage requirement should default to the global region, got %+v", r.Region)
	}
	if r.Priority != model.PriorityMedium {
		t.Fatalf("priority default=%s", r.Priority)
	}
	if r.CoveragePercentage == nil || *r.CoveragePercentage != 90 {
		t.Fatalf("coverage percentage not kept")
	}
	if !r.Verify(95) || r.Verify(85) {
		t.Fatalf("Verify mismatch")
	}
	if got := r.Margin(95); got != 5 {
		t.Fatalf("Margin(95)=%v, want 5", got)
	}

	if _, err := NewRequirement(RequirementRecord{ID: "r", Type: "telepathy"}); !errors.Is(err, model.ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum, got %v", err)
	}
	if _, err := NewRequirement(RequirementRecord{ID: "r", Type: model.RequirementOther, Priority: "urgent",
		Value: mustValue(t, model.OpEqual, 1, model.UnitCount)}); !errors.Is(err, model.ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum for bad priority, got %v", err)
	}
}

func TestRequirement_BetweenSemantics(t *testing.T) {
	v, err := model.Between(500, 800, model.UnitKilometer)
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	r, err := NewRequirement(RequirementRecord{ID: "alt", Type: model.RequirementOther, Value: v})
	if err != nil {
		t.Fatalf("NewRequirement: %v", err)
	}
	for x, want := range map[float64]bool{499.9: false, 500: true, 650: true, 800: true, 800.1: false} {
		if got := r.Verify(x); got != want {
			t.Fatalf("Verify(%v)=%v, want %v", x, got, want)
		}
	}
	if _, err := model.Between(800, 800, model.UnitKilometer); !errors.Is(err, model.ErrInvalidConstraintShape) {
		t.Fatalf("min == max should be rejected, got %v", err)
	}
}

func TestNewConstraint_Defaults(t *testing.T) {
	cases := []struct {
		rec   ConstraintRecord
		check func(*Constraint) bool
	}{
		{ConstraintRecord{ID: "b", Type: model.ConstraintBudget, Value: mustValue(t, model.OpLessOrEqual, 1e6, model.UnitEUR)},
			func(c *Constraint) bool { return c.Phase == "total" }},
		{ConstraintRecord{ID: "m", Type: model.ConstraintMass, Value: mustValue(t, model.OpLessOrEqual, 1, model.UnitTonne)},
			func(c *Constraint) bool { return c.Component == "total" }},
		{ConstraintRecord{ID: "p", Type: model.ConstraintPower, Value: mustValue(t, model.OpLessOrEqual, 500, model.UnitWatt)},
			func(c *Constraint) bool { return c.Mode == "nominal" }},
		{ConstraintRecord{ID: "o", Type: model.ConstraintOrbital, Parameter: "altitude", Value: mustValue(t, model.OpLessOrEqual, 800, model.UnitKilometer)},
			func(c *Constraint) bool { return c.Parameter == "altitude" }},
	}
	for _, tc := range cases {
		c, err := NewConstraint(tc.rec)
		if err != nil {
			t.Fatalf("%s: %v", tc.rec.ID, err)
		}
		if !tc.check(c) {
			t.Fatalf("%s: variant default not applied: %+v", tc.rec.ID, c)
		}
	}

	_, err := NewConstraint(ConstraintRecord{ID: "m", Type: model.ConstraintMass, Value: mustValue(t, model.OpLessOrEqual, 1, model.UnitWatt)})
	if !errors.Is(err, ErrUnitMismatch) || !IsConstructionError(err) {
		t.Fatalf("expected ErrUnitMismatch, got %v", err)
	}
}

func TestConstructorsRejectMalformedValues(t *testing.T) {
	five := 5.0
	cases := []struct {
		name  string
		value model.NumericConstraintValue
		want  error
	}{
		{"zero value", model.NumericConstraintValue{}, model.ErrInvalidEnum},
		{"between with value only", model.NumericConstraintValue{Operator: model.OpBetween, Value: &five, Unit: model.UnitKilometer}, model.ErrInvalidConstraintShape},
		{"between with equal bounds", model.NumericConstraintValue{Operator: model.OpBetween, MinValue: &five, MaxValue: &five, Unit: model.UnitKilometer}, model.ErrInvalidConstraintShape},
		{"comparison without value", model.NumericConstraintValue{Operator: model.OpLessOrEqual, Unit: model.UnitKilometer}, model.ErrInvalidConstraintShape},
	}
	for _, tc := range cases {
		r, err := NewRequirement(RequirementRecord{ID: "r", Type: model.RequirementOther, Value: tc.value})
		if !errors.Is(err, tc.want) || r != nil {
			t.Fatalf("requirement %s: got %v / %v, want %v", tc.name, r, err, tc.want)
		}
		if !IsConstructionError(err) {
			t.Fatalf("requirement %s: %v is not a construction error", tc.name, err)
		}
		c, err := NewConstraint(ConstraintRecord{ID: "c", Type: model.ConstraintOrbital, Parameter: "altitude", Value: tc.value})
		if !errors.Is(err, tc.want) || c != nil {
			t.Fatalf("constraint %s: got %v / %v, want %v", tc.name, c, err, tc.want)
		}
	}
}
