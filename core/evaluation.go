package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/mission-designer/model"
)

// KPIEvaluation is the measured outcome of one KPI for a solution.
type KPIEvaluation struct {
	KPIID           string
	KPIName         string
	CalculatedValue float64
	Unit            model.Unit
	Status          model.ObjectiveStatus
	ThresholdMet    bool
	BaselineMet     bool
	TargetMet       bool
	Notes           string
}

// EvaluateKPI records value on k and returns the tiered outcome.
func EvaluateKPI(k *KeyPerformanceIndicator, value float64, notes string) KPIEvaluation {
	k.EvaluatePerformance(value)
	return ClassifyKPI(k, value, notes)
}

// ClassifyKPI builds the KPI evaluation for value without recording it on k.
func ClassifyKPI(k *KeyPerformanceIndicator, value float64, notes string) KPIEvaluation {
	status := k.Classify(value)
	return KPIEvaluation{
		KPIID:           k.ID,
		KPIName:         k.Name,
		CalculatedValue: value,
		Unit:            k.Unit,
		Status:          status,
		ThresholdMet:    status.Rank() >= model.StatusThresholdMet.Rank(),
		BaselineMet:     status.Rank() >= model.StatusBaselineMet.Rank(),
		TargetMet:       status.Rank() >= model.StatusTargetMet.Rank(),
		Notes:           notes,
	}
}

// RequirementVerification is the outcome of checking one requirement.
type RequirementVerification struct {
	RequirementID    string
	RequirementTitle string
	RequiredValue    string
	CalculatedValue  float64
	Unit             model.Unit
	Verified         bool
	Margin           float64
	Notes            string
}

// VerifyRequirement checks value against r.
func VerifyRequirement(r *Requirement, value float64, notes string) RequirementVerification {
	return RequirementVerification{
		RequirementID:    r.ID,
		RequirementTitle: r.Title,
		RequiredValue:    r.Value.String(),
		CalculatedValue:  value,
		Unit:             r.Value.Unit,
		Verified:         r.Verify(value),
		Margin:           r.Margin(value),
		Notes:            notes,
	}
}

// ConstraintVerification is the outcome of checking one constraint.
type ConstraintVerification struct {
	ConstraintID    string
	ConstraintTitle string
	ConstraintValue string
	CalculatedValue float64
	Unit            model.Unit
	Verified        bool
	Margin          float64
	IsNegotiable    bool
	Notes           string
}

// VerifyConstraint checks value against c through the general-purpose path.
func VerifyConstraint(c *Constraint, value float64, notes string) ConstraintVerification {
	return ConstraintVerification{
		ConstraintID:    c.ID,
		ConstraintTitle: c.Title,
		ConstraintValue: c.Value.String(),
		CalculatedValue: value,
		Unit:            c.Value.Unit,
		Verified:        c.Verify(value),
		Margin:          c.Margin(value),
		IsNegotiable:    c.IsNegotiable,
		Notes:           notes,
	}
}

// FOMEvaluation is the computed value of one figure of merit.
type FOMEvaluation struct {
	FOMID            string
	FOMName          string
	CalculatedValue  float64
	TargetValue      *float64
	MeetsTarget      bool
	ContributingKPIs map[string]float64
	Notes            string
}

// EvaluateFigureOfMerit computes f over the KPI values. Without a target
// value MeetsTarget is false.
func EvaluateFigureOfMerit(f *FigureOfMerit, kpiValues map[string]float64) FOMEvaluation {
	value := f.Calculate(kpiValues)
	contributing := make(map[string]float64)
	for _, id := range f.KPIs {
		if v, ok := kpiValues[id]; ok {
			contributing[id] = v
		}
	}
	ev := FOMEvaluation{
		FOMID:            f.ID,
		FOMName:          f.Name,
		CalculatedValue:  value,
		TargetValue:      copyFloat(f.TargetValue),
		ContributingKPIs: contributing,
	}
	if f.TargetValue != nil {
		ev.MeetsTarget = value >= *f.TargetValue
	}
	return ev
}

// orderedMap keeps insertion order; putting an existing key replaces the
// value in place.
type orderedMap[V any] struct {
	keys []string
	vals map[string]V
}

func (m *orderedMap[V]) put(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *orderedMap[V]) values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

func (m *orderedMap[V]) len() int { return len(m.keys) }

func (m *orderedMap[V]) clone(copyFn func(V) V) orderedMap[V] {
	out := orderedMap[V]{keys: append([]string(nil), m.keys...), vals: make(map[string]V, len(m.vals))}
	for k, v := range m.vals {
		if copyFn != nil {
			v = copyFn(v)
		}
		out.vals[k] = v
	}
	return out
}

// SolutionEvaluation collects the verification results for one solution.
// Entries are keyed by subject id; re-adding an id replaces the earlier
// entry. Success rates and met-flags are recomputed on every add.
type SolutionEvaluation struct {
	ID            string
	SolutionID    string
	SolutionLabel string
	EvaluatedAt   time.Time

	kpis         orderedMap[KPIEvaluation]
	foms         orderedMap[FOMEvaluation]
	requirements orderedMap[RequirementVerification]
	constraints  orderedMap[ConstraintVerification]

	allRequirementsMet        bool
	allCriticalConstraintsMet bool
	kpiSuccessRate            float64
	requirementSuccessRate    float64
	constraintSuccessRate     float64

	OverallStatus model.SolutionStatus

	SummaryNotes    string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

// NewSolutionEvaluation starts an empty evaluation in the under_evaluation state.
func NewSolutionEvaluation(id, solutionID, solutionLabel string, at time.Time) *SolutionEvaluation {
	e := &SolutionEvaluation{
		ID:            id,
		SolutionID:    solutionID,
		SolutionLabel: solutionLabel,
		EvaluatedAt:   at,
		OverallStatus: model.SolutionUnderEvaluation,
	}
	e.recompute()
	return e
}

// AddKPIEvaluation stores ev under its KPI id.
func (e *SolutionEvaluation) AddKPIEvaluation(ev KPIEvaluation) {
	e.kpis.put(ev.KPIID, ev)
	e.recompute()
}

// AddFOMEvaluation stores ev under its figure-of-merit id.
func (e *SolutionEvaluation) AddFOMEvaluation(ev FOMEvaluation) {
	e.foms.put(ev.FOMID, ev)
	e.recompute()
}

// AddRequirementVerification stores v under its requirement id.
func (e *SolutionEvaluation) AddRequirementVerification(v RequirementVerification) {
	e.requirements.put(v.RequirementID, v)
	e.recompute()
}

// AddConstraintVerification stores v under its constraint id.
func (e *SolutionEvaluation) AddConstraintVerification(v ConstraintVerification) {
	e.constraints.put(v.ConstraintID, v)
	e.recompute()
}

// KPIEvaluations returns the KPI entries in insertion order.
func (e *SolutionEvaluation) KPIEvaluations() []KPIEvaluation { return e.kpis.values() }

// FOMEvaluations returns the figure-of-merit entries in insertion order.
func (e *SolutionEvaluation) FOMEvaluations() []FOMEvaluation { return e.foms.values() }

// RequirementVerifications returns the requirement entries in insertion order.
func (e *SolutionEvaluation) RequirementVerifications() []RequirementVerification {
	return e.requirements.values()
}

// ConstraintVerifications returns the constraint entries in insertion order.
func (e *SolutionEvaluation) ConstraintVerifications() []ConstraintVerification {
	return e.constraints.values()
}

// KPIEvaluation looks up one KPI entry.
func (e *SolutionEvaluation) KPIEvaluation(id string) (KPIEvaluation, bool) { return e.kpis.get(id) }

// RequirementVerification looks up one requirement entry.
func (e *SolutionEvaluation) RequirementVerification(id string) (RequirementVerification, bool) {
	return e.requirements.get(id)
}

// ConstraintVerification looks up one constraint entry.
func (e *SolutionEvaluation) ConstraintVerification(id string) (ConstraintVerification, bool) {
	return e.constraints.get(id)
}

// AllRequirementsMet is true when at least one requirement was verified and
// every requirement verification passed.
func (e *SolutionEvaluation) AllRequirementsMet() bool { return e.allRequirementsMet }

// AllCriticalConstraintsMet is true when at least one non-negotiable
// constraint was verified and all of them passed. Negotiable failures never
// clear it.
func (e *SolutionEvaluation) AllCriticalConstraintsMet() bool { return e.allCriticalConstraintsMet }

// KPISuccessRate is the percentage of KPI entries meeting at least threshold.
func (e *SolutionEvaluation) KPISuccessRate() float64 { return e.kpiSuccessRate }

// RequirementSuccessRate is the percentage of requirement entries verified.
func (e *SolutionEvaluation) RequirementSuccessRate() float64 { return e.requirementSuccessRate }

// ConstraintSuccessRate is the percentage of constraint entries satisfied.
func (e *SolutionEvaluation) ConstraintSuccessRate() float64 { return e.constraintSuccessRate }

func percent(pass, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(pass) / float64(total) * 100
}

func (e *SolutionEvaluation) recompute() {
	kpiPass := 0
	for _, k := range e.kpis.values() {
		if k.ThresholdMet {
			kpiPass++
		}
	}
	e.kpiSuccessRate = percent(kpiPass, e.kpis.len())

	reqPass := 0
	for _, r := range e.requirements.values() {
		if r.Verified {
			reqPass++
		}
	}
	e.requirementSuccessRate = percent(reqPass, e.requirements.len())
	e.allRequirementsMet = e.requirements.len() > 0 && reqPass == e.requirements.len()

	conPass, critical, criticalPass := 0, 0, 0
	for _, c := range e.constraints.values() {
		if c.Verified {
			conPass++
		}
		if !c.IsNegotiable {
			critical++
			if c.Verified {
				criticalPass++
			}
		}
	}
	e.constraintSuccessRate = percent(conPass, e.constraints.len())
	e.allCriticalConstraintsMet = critical > 0 && criticalPass == critical
}

// DetermineOverallStatus recomputes the rates and flags and sets the overall
// status. Calling it again with unchanged entries yields the same result.
func (e *SolutionEvaluation) DetermineOverallStatus() model.SolutionStatus {
	e.recompute()
	if e.allRequirementsMet && e.allCriticalConstraintsMet {
		e.OverallStatus = model.SolutionRequirementsMet
	} else {
		e.OverallStatus = model.SolutionRequirementsNotMet
	}
	return e.OverallStatus
}

// GenerateSummary renders the evaluation as a text report.
func (e *SolutionEvaluation) GenerateSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nEvaluation Summary: %s\n", e.SolutionLabel)
	b.WriteString(strings.Repeat("=", 70) + "\n")
	fmt.Fprintf(&b, "Evaluation Date: %s\n", e.EvaluatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Overall Status: %s\n\n", e.OverallStatus)

	b.WriteString("Performance Scores:\n")
	fmt.Fprintf(&b, "  KPI Success Rate: %.1f%%\n", e.kpiSuccessRate)
	fmt.Fprintf(&b, "  Requirement Verification: %.1f%%\n", e.requirementSuccessRate)
	fmt.Fprintf(&b, "  Constraint Satisfaction: %.1f%%\n\n", e.constraintSuccessRate)

	if reqs := e.requirements.values(); len(reqs) > 0 {
		b.WriteString("Requirements:\n")
		for _, r := range reqs {
			fmt.Fprintf(&b, "  [%s] %s: %.3f %s (required %s, margin %+.3f)\n",
				passMark(r.Verified), r.RequirementTitle, r.CalculatedValue, r.Unit, r.RequiredValue, r.Margin)
		}
		b.WriteString("\n")
	}
	if cons := e.constraints.values(); len(cons) > 0 {
		b.WriteString("Constraints:\n")
		for _, c := range cons {
			tag := ""
			if c.IsNegotiable {
				tag = " (negotiable)"
			}
			fmt.Fprintf(&b, "  [%s] %s%s: %.3f %s (limit %s, margin %+.3f)\n",
				passMark(c.Verified), c.ConstraintTitle, tag, c.CalculatedValue, c.Unit, c.ConstraintValue, c.Margin)
		}
		b.WriteString("\n")
	}
	if kpis := e.kpis.values(); len(kpis) > 0 {
		b.WriteString("KPIs:\n")
		for _, k := range kpis {
			fmt.Fprintf(&b, "  %s: %.3f %s [%s]\n", k.KPIName, k.CalculatedValue, k.Unit, k.Status)
		}
		b.WriteString("\n")
	}

	writeList(&b, "Strengths", "+", e.Strengths)
	writeList(&b, "Weaknesses", "-", e.Weaknesses)
	writeList(&b, "Recommendations", "→", e.Recommendations)
	if e.SummaryNotes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", e.SummaryNotes)
	}
	return b.String()
}

func passMark(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func writeList(b *strings.Builder, title, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  %s %s\n", bullet, it)
	}
	b.WriteString("\n")
}

// Clone returns a deep copy.
func (e *SolutionEvaluation) Clone() *SolutionEvaluation {
	if e == nil {
		return nil
	}
	cp := *e
	cp.kpis = e.kpis.clone(nil)
	cp.foms = e.foms.clone(func(f FOMEvaluation) FOMEvaluation {
		f.TargetValue = copyFloat(f.TargetValue)
		contrib := make(map[string]float64, len(f.ContributingKPIs))
		for k, v := range f.ContributingKPIs {
			contrib[k] = v
		}
		f.ContributingKPIs = contrib
		return f
	})
	cp.requirements = e.requirements.clone(nil)
	cp.constraints = e.constraints.clone(nil)
	cp.Strengths = append([]string(nil), e.Strengths...)
	cp.Weaknesses = append([]string(nil), e.Weaknesses...)
	cp.Recommendations = append([]string(nil), e.Recommendations...)
	return &cp
}
