package model

import (
	"errors"
	"testing"
)

func TestParseUnit(t *testing.T) {
	cases := []struct {
		in   string
		want Unit
		kind UnitKind
	}{
		{"km", UnitKilometer, KindDistance},
		{"μm", UnitMicrometer, KindDistance},
		{"um", UnitMicrometer, KindDistance},
		{"days", UnitDay, KindTime},
		{"USD", UnitUSD, KindCurrency},
		{"%", UnitPercent, KindDimensionless},
		{"", UnitNone, KindDimensionless},
	}
	for _, tc := range cases {
		got, err := ParseUnit(tc.in)
		if err != nil {
			t.Fatalf("ParseUnit(%q) error: %v", tc.in, err)
		}
		if got != tc.want || got.Kind() != tc.kind {
			t.Fatalf("ParseUnit(%q) = %q/%s, want %q/%s", tc.in, got, got.Kind(), tc.want, tc.kind)
		}
	}

	if _, err := ParseUnit("furlongs"); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("ParseUnit(furlongs) err=%v, want ErrInvalidEnum", err)
	}
}

func TestParseEnumsCaseInsensitive(t *testing.T) {
	if lvl, err := ParseThresholdLevel("Target"); err != nil || lvl != LevelTarget {
		t.Fatalf("ParseThresholdLevel(Target) = %q, %v", lvl, err)
	}
	if p, err := ParsePriority("CRITICAL"); err != nil || p != PriorityCritical {
		t.Fatalf("ParsePriority(CRITICAL) = %q, %v", p, err)
	}
	if _, err := ParseRequirementType("resolution"); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum for unknown requirement type, got %v", err)
	}
	if _, err := ParseConstraintType("mass"); err != nil {
		t.Fatalf("ParseConstraintType(mass) error: %v", err)
	}
}

func TestObjectiveStatusRank(t *testing.T) {
	order := []ObjectiveStatus{
		StatusNotEvaluated, StatusBelowThreshold, StatusThresholdMet,
		StatusBaselineMet, StatusTargetMet, StatusExceeded,
	}
	for i, s := range order {
		if s.Rank() != i {
			t.Fatalf("%s rank=%d, want %d", s, s.Rank(), i)
		}
	}
	if StatusBelowThreshold.MeetsThreshold() || !StatusBaselineMet.MeetsThreshold() {
		t.Fatalf("MeetsThreshold boundary wrong")
	}
}

func TestNumericConstraintValueBetween(t *testing.T) {
	c, err := Between(1, 2, UnitKilometer)
	if err != nil {
		t.Fatalf("Between error: %v", err)
	}
	for _, x := range []float64{1, 1.5, 2} {
		if !c.Evaluate(x) {
			t.Fatalf("Evaluate(%g) = false, want true", x)
		}
	}
	for _, x := range []float64{0.999, 2.001} {
		if c.Evaluate(x) {
			t.Fatalf("Evaluate(%g) = true, want false", x)
		}
	}
	if c.Value != nil {
		t.Fatalf("between value should not carry a single operand")
	}

	if _, err := Between(2, 1, UnitKilometer); !errors.Is(err, ErrInvalidConstraintShape) {
		t.Fatalf("Between(2,1) err=%v, want ErrInvalidConstraintShape", err)
	}
	if _, err := Between(1, 1, UnitKilometer); !errors.Is(err, ErrInvalidConstraintShape) {
		t.Fatalf("Between(1,1) err=%v, want ErrInvalidConstraintShape", err)
	}
	lo := 1.0
	if _, err := NewNumericConstraintValue(OpBetween, nil, &lo, nil, UnitKilometer); err == nil {
		t.Fatalf("expected missing max to fail")
	}
}

func TestNumericConstraintValueOperators(t *testing.T) {
	cases := []struct {
		op   ComparisonOperator
		x    float64
		want bool
	}{
		{OpLessThan, 9.99, true},
		{OpLessThan, 10, false},
		{OpLessOrEqual, 10, true},
		{OpEqual, 10, true},
		{OpEqual, 10.0000001, false},
		{OpGreaterOrEqual, 10, true},
		{OpGreaterThan, 10, false},
		{OpNotEqual, 10, false},
		{OpNotEqual, 11, true},
	}
	for _, tc := range cases {
		c, err := Compare(tc.op, 10, UnitMeter)
		if err != nil {
			t.Fatalf("Compare(%s) error: %v", tc.op, err)
		}
		if got := c.Evaluate(tc.x); got != tc.want {
			t.Fatalf("%s 10 Evaluate(%g) = %v, want %v", tc.op, tc.x, got, tc.want)
		}
	}

	if _, err := NewNumericConstraintValue(OpLessOrEqual, nil, nil, nil, UnitMeter); !errors.Is(err, ErrInvalidConstraintShape) {
		t.Fatalf("missing value err=%v", err)
	}
}

func TestNumericConstraintValueMarginAndString(t *testing.T) {
	c, _ := Compare(OpLessOrEqual, 15, UnitMeter)
	if m := c.Margin(12); m != 3 {
		t.Fatalf("Margin(12)=%g, want 3", m)
	}
	if m := c.Margin(20); m != -5 {
		t.Fatalf("Margin(20)=%g, want -5", m)
	}
	if s := c.String(); s != "<= 15 m" {
		t.Fatalf("String()=%q", s)
	}
	b, _ := Between(1, 2.5, UnitKilometer)
	if s := b.String(); s != "between 1 and 2.5 km" {
		t.Fatalf("String()=%q", s)
	}
	if m := b.Margin(2); m != 0.5 {
		t.Fatalf("between Margin(2)=%g, want 0.5", m)
	}
}

func TestGeoPointAndPolygon(t *testing.T) {
	if _, err := NewGeoPoint(91, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("lat 91 err=%v", err)
	}
	if _, err := NewGeoPoint(0, -181); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("lon -181 err=%v", err)
	}

	a, _ := NewGeoPoint(0, 0)
	b, _ := NewGeoPoint(0, 10)
	if _, err := NewGeoPolygon(a, b); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("two-point polygon err=%v", err)
	}
	if p, err := NewGeoPolygon(); err != nil || p.Len() != 0 {
		t.Fatalf("empty polygon = %v, %v", p.Len(), err)
	}

	var poly GeoPolygon
	for i := 0; i < MaxPolygonPoints; i++ {
		if err := poly.AddPoint(GeoPoint{Latitude: float64(i), Longitude: float64(-i)}); err != nil {
			t.Fatalf("AddPoint %d error: %v", i, err)
		}
	}
	if err := poly.AddPoint(a); err == nil {
		t.Fatalf("expected 21st point to be rejected")
	}

	minLat, minLon, maxLat, maxLon := poly.BoundingBox()
	if minLat != 0 || maxLat != 19 || minLon != -19 || maxLon != 0 {
		t.Fatalf("BoundingBox = %g %g %g %g", minLat, minLon, maxLat, maxLon)
	}
	if c := poly.Center(); c.Latitude != 9.5 || c.Longitude != -9.5 {
		t.Fatalf("Center = %+v", c)
	}
}

func TestRegions(t *testing.T) {
	g := GlobalRegion()
	if !g.IsGlobal || g.Polygon.Len() != 4 {
		t.Fatalf("GlobalRegion = %+v", g)
	}
	poi, err := PointOfInterest(45, 7, "Turin")
	if err != nil {
		t.Fatalf("PointOfInterest error: %v", err)
	}
	minLat, _, maxLat, _ := poi.Polygon.BoundingBox()
	if maxLat-minLat < 0.19 || maxLat-minLat > 0.21 {
		t.Fatalf("point of interest span = %g", maxLat-minLat)
	}
	if _, err := PointOfInterest(100, 0, "bad"); err == nil {
		t.Fatalf("expected invalid point of interest to fail")
	}
}

func TestNumericConstraintValueValidate(t *testing.T) {
	v, lo, hi := 3.0, 1.0, 2.0
	cases := []struct {
		c    NumericConstraintValue
		want error
	}{
		{NumericConstraintValue{Operator: OpGreaterThan, Value: &v, Unit: UnitCount}, nil},
		{NumericConstraintValue{Operator: OpBetween, MinValue: &lo, MaxValue: &hi, Unit: UnitKilometer}, nil},
		{NumericConstraintValue{}, ErrInvalidEnum},
		{NumericConstraintValue{Operator: OpLessOrEqual, Value: &v, Unit: "furlongs"}, ErrInvalidEnum},
		{NumericConstraintValue{Operator: OpBetween, Value: &v, Unit: UnitKilometer}, ErrInvalidConstraintShape},
		{NumericConstraintValue{Operator: OpBetween, MinValue: &hi, MaxValue: &lo, Unit: UnitKilometer}, ErrInvalidConstraintShape},
		{NumericConstraintValue{Operator: OpEqual, MinValue: &lo, MaxValue: &hi, Unit: UnitKilometer}, ErrInvalidConstraintShape},
	}
	for i, tc := range cases {
		err := tc.c.Validate()
		if tc.want == nil && err != nil {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d: err=%v, want %v", i, err, tc.want)
		}
	}

	c, err := NewNumericConstraintValue(OpLessOrEqual, &v, &lo, &hi, UnitMeter)
	if err != nil {
		t.Fatalf("NewNumericConstraintValue: %v", err)
	}
	if c.MinValue != nil || c.MaxValue != nil || c.Value == &v {
		t.Fatalf("unused operands should be dropped and value copied: %+v", c)
	}
}
