package core

import (
	"strings"
	"testing"

	"github.com/signalsfoundry/mission-designer/model"
)

func constraintFixture(t *testing.T, id string, negotiable bool, limit float64) *Constraint {
	t.Helper()
	c, err := NewConstraint(ConstraintRecord{
		ID: id, Title: id, Type: model.ConstraintMass, IsNegotiable: negotiable,
		Value: mustValue(t, model.OpLessOrEqual, limit, model.UnitKilogram),
	})
	if err != nil {
		t.Fatalf("NewConstraint: %v", err)
	}
	return c
}

func TestSolutionEvaluation_NegotiableFailureDoesNotGate(t *testing.T) {
	ev := NewSolutionEvaluation("E", "S", "S", testEpoch)
	ev.AddConstraintVerification(VerifyConstraint(constraintFixture(t, "hard", false, 1000), 800, ""))
	ev.AddConstraintVerification(VerifyConstraint(constraintFixture(t, "soft", true, 700), 800, ""))

	if !ev.AllCriticalConstraintsMet() {
		t.Fatalf("negotiable failure should not clear AllCriticalConstraintsMet")
	}
	if rate := ev.ConstraintSuccessRate(); rate != 50 {
		t.Fatalf("constraint success rate=%v, want 50", rate)
	}

	ev.AddConstraintVerification(VerifyConstraint(constraintFixture(t, "hard2", false, 500), 800, ""))
	if ev.AllCriticalConstraintsMet() {
		t.Fatalf("non-negotiable failure should clear AllCriticalConstraintsMet")
	}
}

func TestSolutionEvaluation_DetermineOverallStatusIsIdempotent(t *testing.T) {
	m := testMission(t)
	ev := NewSolutionEvaluation("E", "S", "S", testEpoch)
	ev.AddKPIEvaluation(EvaluateKPI(m.KPI("KPI-GSD"), 13, ""))
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-GSD"), 4.95, ""))
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-REV"), 9, ""))
	ev.AddConstraintVerification(VerifyConstraint(m.Constraint("CON-MASS"), 678, ""))

	first := ev.DetermineOverallStatus()
	rates := [3]float64{ev.KPISuccessRate(), ev.RequirementSuccessRate(), ev.ConstraintSuccessRate()}
	second := ev.DetermineOverallStatus()
	again := [3]float64{ev.KPISuccessRate(), ev.RequirementSuccessRate(), ev.ConstraintSuccessRate()}

	if first != second || rates != again {
		t.Fatalf("not idempotent: %s/%v then %s/%v", first, rates, second, again)
	}
	if first != model.SolutionRequirementsNotMet {
		t.Fatalf("status=%s, want requirements_not_met (revisit fails)", first)
	}
	if rates != [3]float64{100, 50, 100} {
		t.Fatalf("rates=%v", rates)
	}
}

func TestSolutionEvaluation_ReAddReplacesInPlace(t *testing.T) {
	m := testMission(t)
	ev := NewSolutionEvaluation("E", "S", "S", testEpoch)
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-GSD"), 20, "first"))
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-REV"), 3, ""))
	if ev.AllRequirementsMet() {
		t.Fatalf("failing GSD should clear AllRequirementsMet")
	}

	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-GSD"), 5, "second"))
	got := ev.RequirementVerifications()
	if len(got) != 2 || got[0].RequirementID != "REQ-GSD" || got[0].Notes != "second" {
		t.Fatalf("re-add should replace in place: %+v", got)
	}
	if !ev.AllRequirementsMet() || ev.RequirementSuccessRate() != 100 {
		t.Fatalf("flags not recomputed after replacement")
	}
}

func TestSolutionEvaluation_EmptyRequirementsAreNotMet(t *testing.T) {
	ev := NewSolutionEvaluation("E", "S", "S", testEpoch)
	if ev.AllRequirementsMet() {
		t.Fatalf("an evaluation with no requirement verifications should not meet requirements")
	}
	if ev.AllCriticalConstraintsMet() {
		t.Fatalf("no non-negotiable constraint verifications should not meet critical constraints")
	}
	if got := ev.DetermineOverallStatus(); got != model.SolutionRequirementsNotMet {
		t.Fatalf("status=%s", got)
	}
	if ev.KPISuccessRate() != 0 || ev.ConstraintSuccessRate() != 0 {
		t.Fatalf("empty rates should be 0")
	}
}

func TestSolutionEvaluation_NeedsCriticalConstraint(t *testing.T) {
	m := testMission(t)
	ev := NewSolutionEvaluation("E", "S", "S", testEpoch)
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-GSD"), 5, ""))
	if got := ev.DetermineOverallStatus(); got != model.SolutionRequirementsNotMet || ev.AllCriticalConstraintsMet() {
		t.Fatalf("no constraints: status=%s critical=%v", got, ev.AllCriticalConstraintsMet())
	}

	ev.AddConstraintVerification(VerifyConstraint(m.Constraint("CON-COST"), 1, ""))
	if got := ev.DetermineOverallStatus(); got != model.SolutionRequirementsNotMet {
		t.Fatalf("only negotiable constraints: status=%s", got)
	}

	ev.AddConstraintVerification(VerifyConstraint(m.Constraint("CON-MASS"), 678, ""))
	if got := ev.DetermineOverallStatus(); got != model.SolutionRequirementsMet || !ev.AllCriticalConstraintsMet() {
		t.Fatalf("passing critical constraint: status=%s", got)
	}
}

func TestEvaluateKPI_Flags(t *testing.T) {
	ke := EvaluateKPI(gsdKPI(t), 13, "")
	if ke.Status != model.StatusBaselineMet || !ke.ThresholdMet || !ke.BaselineMet || ke.TargetMet {
		t.Fatalf("unexpected flags: %+v", ke)
	}
	below := EvaluateKPI(gsdKPI(t), 40, "")
	if below.ThresholdMet {
		t.Fatalf("below threshold should not meet threshold")
	}
}

func TestEvaluateFigureOfMerit(t *testing.T) {
	f := &FigureOfMerit{ID: "f", KPIs: []string{"a", "b"}, TargetValue: Float(5)}
	fe := EvaluateFigureOfMerit(f, map[string]float64{"a": 4, "b": 8})
	if fe.CalculatedValue != 6 || !fe.MeetsTarget || len(fe.ContributingKPIs) != 2 {
		t.Fatalf("unexpected FOM evaluation: %+v", fe)
	}
	noTarget := EvaluateFigureOfMerit(&FigureOfMerit{ID: "g", KPIs: []string{"a"}}, map[string]float64{"a": 4})
	if noTarget.MeetsTarget {
		t.Fatalf("no target value should never meet target")
	}
}

func TestSolutionEvaluation_CloneAndSummary(t *testing.T) {
	m := testMission(t)
	ev := NewSolutionEvaluation("E", "S", "Option A", testEpoch)
	ev.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-GSD"), 5, ""))
	ev.AddConstraintVerification(VerifyConstraint(m.Constraint("CON-MASS"), 678, ""))
	ev.Strengths = []string{"sharp imagery"}
	ev.DetermineOverallStatus()

	cp := ev.Clone()
	cp.AddRequirementVerification(VerifyRequirement(m.Requirement("REQ-REV"), 30, ""))
	cp.Strengths[0] = "changed"
	if len(ev.RequirementVerifications()) != 1 || ev.Strengths[0] != "sharp imagery" {
		t.Fatalf("clone shares state with original")
	}

	s := ev.GenerateSummary()
	for _, want := range []string{"Option A", "requirements_met", "Requirement Verification: 100.0%", "sharp imagery"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}
