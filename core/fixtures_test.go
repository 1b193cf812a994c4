package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/mission-designer/model"
	"github.com/signalsfoundry/mission-designer/timectrl"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() *timectrl.ManualClock {
	return timectrl.NewManualClock(testEpoch, time.Second)
}

func mustValue(t *testing.T, op model.ComparisonOperator, v float64, unit model.Unit) model.NumericConstraintValue {
	t.Helper()
	cv, err := model.Compare(op, v, unit)
	if err != nil {
		t.Fatalf("Compare(%s, %v, %s): %v", op, v, unit, err)
	}
	return cv
}

func mustThreshold(t *testing.T, level string, v float64) PerformanceThreshold {
	t.Helper()
	th, err := NewPerformanceThreshold(level, model.OpLessOrEqual, v, model.UnitMeter, "")
	if err != nil {
		t.Fatalf("NewPerformanceThreshold(%s): %v", level, err)
	}
	return th
}

// gsdKPI has the tiers target<=10, baseline<=15, threshold<=30 metres.
func gsdKPI(t *testing.T) *KeyPerformanceIndicator {
	t.Helper()
	k, err := NewKPI(KPIRecord{
		ID:   "KPI-GSD",
		Name: "Ground Sample Distance",
		Unit: model.UnitMeter,
		Thresholds: []PerformanceThreshold{
			mustThreshold(t, "threshold", 30),
			mustThreshold(t, "baseline", 15),
			mustThreshold(t, "target", 10),
		},
	})
	if err != nil {
		t.Fatalf("NewKPI: %v", err)
	}
	return k
}

// imagerSpacecraft carries the 285/185/95 kg component set with the
// 1.85 m focal length, 13 µm pitch imager.
func imagerSpacecraft(t *testing.T, id string) *Spacecraft {
	t.Helper()
	sc, err := NewSpacecraft(SpacecraftRecord{
		ID:   id,
		Name: "Imager " + id,
		Components: []ComponentRecord{
			{
				ID: id + "-PL", Name: "Multispectral imager", Type: model.ComponentPayloadInstrument,
				Mass: 285, ActivePower: 180, PassivePower: 20, Cost: 12_000_000,
				Payload: &PayloadRecord{
					FocalLength:        1.85,
					ApertureDiameter:   0.37,
					PixelPitch:         13.0,
					ArraySizeAcross:    12000,
					IntegrationTime:    1.5,
					SignalToNoiseRatio: 120,
					SpectralBands: []SpectralBand{
						{Name: "Blue", CenterWavelength: 490, Bandwidth: 65},
						{Name: "Green", CenterWavelength: 560, Bandwidth: 35},
						{Name: "Red", CenterWavelength: 665, Bandwidth: 30},
						{Name: "NIR", CenterWavelength: 842, Bandwidth: 115},
					},
				},
			},
			{ID: id + "-EPS", Name: "Power", Type: model.ComponentEPS, Mass: 185, ActivePower: 40, PassivePower: 25, Cost: 4_000_000},
			{ID: id + "-ADCS", Name: "Attitude control", Type: model.ComponentADCS, Mass: 95, ActivePower: 60, PassivePower: 30, Cost: 1_600_000},
		},
	})
	if err != nil {
		t.Fatalf("NewSpacecraft: %v", err)
	}
	return sc
}

func ssoOrbit(t *testing.T, id string, altitudeKm float64) *Orbit {
	t.Helper()
	o, err := NewCircularOrbit(id, "SSO "+id, id, altitudeKm, 98.2)
	if err != nil {
		t.Fatalf("NewCircularOrbit: %v", err)
	}
	o.IsSunSynchronous = true
	o.RevisitTimeGlobal = Float(5)
	o.CoveragePerDay = Float(12)
	return o
}

func testSolution(t *testing.T, id string, altitudeKm float64) *DesignSolution {
	t.Helper()
	s, err := NewDesignSolution(id, "Solution "+id, id, imagerSpacecraft(t, "SC-"+id), ssoOrbit(t, "ORB-"+id, altitudeKm))
	if err != nil {
		t.Fatalf("NewDesignSolution: %v", err)
	}
	return s
}

// testMission has one objective with the GSD KPI, a GSD and a revisit
// requirement, a non-negotiable mass cap and a negotiable cost cap.
func testMission(t *testing.T) *Mission {
	t.Helper()
	m, err := NewMission("M-1", "GlobalWatch", "Global land monitoring", WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewMission: %v", err)
	}

	obj, err := NewMissionObjective("OBJ-1", "Monitor land cover", "", model.PriorityHigh)
	if err != nil {
		t.Fatalf("NewMissionObjective: %v", err)
	}
	q := &QuantitativeObjective{ID: "QO-1", Title: "Imaging performance"}
	q.AddKPI(gsdKPI(t))
	q.AddFigureOfMerit(&FigureOfMerit{ID: "FOM-1", Name: "Imaging", KPIs: []string{"KPI-GSD"}, TargetValue: Float(10)})
	obj.AddQuantitativeObjective(q)
	if err := m.AddObjective(obj); err != nil {
		t.Fatalf("AddObjective: %v", err)
	}

	reqs := []RequirementRecord{
		{ID: "REQ-GSD", Title: "Spatial resolution", Type: model.RequirementSpatialResolution,
			Value: mustValue(t, model.OpLessOrEqual, 10, model.UnitMeter)},
		{ID: "REQ-REV", Title: "Revisit", Type: model.RequirementTemporalResolution,
			Value: mustValue(t, model.OpLessOrEqual, 7, model.UnitDay)},
	}
	for _, rec := range reqs {
		r, err := NewRequirement(rec)
		if err != nil {
			t.Fatalf("NewRequirement(%s): %v", rec.ID, err)
		}
		if err := m.AddRequirement(r); err != nil {
			t.Fatalf("AddRequirement: %v", err)
		}
	}

	cons := []ConstraintRecord{
		{ID: "CON-MASS", Title: "Launch mass", Type: model.ConstraintMass,
			Value: mustValue(t, model.OpLessOrEqual, 1000, model.UnitKilogram)},
		{ID: "CON-COST", Title: "Spacecraft cost", Type: model.ConstraintBudget, IsNegotiable: true,
			Value: mustValue(t, model.OpLessOrEqual, 20_000_000, model.UnitUSD)},
	}
	for _, rec := range cons {
		c, err := NewConstraint(rec)
		if err != nil {
			t.Fatalf("NewConstraint(%s): %v", rec.ID, err)
		}
		if err := m.AddConstraint(c); err != nil {
			t.Fatalf("AddConstraint: %v", err)
		}
	}
	return m
}
