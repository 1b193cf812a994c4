package scenario

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/kb"
	"github.com/signalsfoundry/mission-designer/model"
)

// MissionSummary is the headline view of a mission.
type MissionSummary struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	MissionType           string    `json:"mission_type"`
	ObjectivesCount       int       `json:"objectives_count"`
	RequirementsCount     int       `json:"requirements_count"`
	ConstraintsCount      int       `json:"constraints_count"`
	DesignSolutionsCount  int       `json:"design_solutions_count"`
	DesignIterationsCount int       `json:"design_iterations_count"`
	BaselineSolutionID    string    `json:"baseline_solution_id,omitempty"`
	SelectedSolutionID    string    `json:"selected_solution_id,omitempty"`
	CreatedDate           time.Time `json:"created_date"`
	LastModified          time.Time `json:"last_modified"`
}

// FromInfo converts a store snapshot.
func FromInfo(info kb.MissionInfo) MissionSummary {
	return MissionSummary{
		ID:                    info.ID,
		Name:                  info.Name,
		Description:           info.Description,
		MissionType:           info.MissionType,
		ObjectivesCount:       info.Objectives,
		RequirementsCount:     info.Requirements,
		ConstraintsCount:      info.Constraints,
		DesignSolutionsCount:  info.Solutions,
		DesignIterationsCount: info.Iterations,
		BaselineSolutionID:    info.BaselineSolutionID,
		SelectedSolutionID:    info.SelectedSolutionID,
		CreatedDate:           info.CreatedAt,
		LastModified:          info.LastModified,
	}
}

// SolutionItem is the list view of a design solution.
type SolutionItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Label        string `json:"label"`
	Status       string `json:"status"`
	SpacecraftID string `json:"spacecraft_id"`
	OrbitID      string `json:"orbit_id"`
}

// FromSolutionItem converts s for a listing.
func FromSolutionItem(s *core.DesignSolution) SolutionItem {
	item := SolutionItem{ID: s.ID, Name: s.Name, Label: s.Label, Status: string(s.Status)}
	if s.Spacecraft != nil {
		item.SpacecraftID = s.Spacecraft.ID
	}
	if s.Orbit != nil {
		item.OrbitID = s.Orbit.ID
	}
	return item
}

// KPIEntry is one KPI outcome.
type KPIEntry struct {
	KPIID           string  `json:"kpi_id"`
	KPIName         string  `json:"kpi_name,omitempty"`
	CalculatedValue float64 `json:"calculated_value"`
	Unit            string  `json:"unit,omitempty"`
	Status          string  `json:"status,omitempty"`
	ThresholdMet    bool    `json:"threshold_met"`
	BaselineMet     bool    `json:"baseline_met"`
	TargetMet       bool    `json:"target_met"`
	Notes           string  `json:"notes,omitempty"`
}

// RequirementEntry is one requirement verification.
type RequirementEntry struct {
	RequirementID    string  `json:"requirement_id"`
	RequirementTitle string  `json:"requirement_title,omitempty"`
	RequiredValue    string  `json:"required_value,omitempty"`
	CalculatedValue  float64 `json:"calculated_value"`
	Unit             string  `json:"unit,omitempty"`
	Verified         bool    `json:"verified"`
	Margin           float64 `json:"margin"`
	Notes            string  `json:"notes,omitempty"`
}

// ConstraintEntry is one constraint verification.
type ConstraintEntry struct {
	ConstraintID    string  `json:"constraint_id"`
	ConstraintTitle string  `json:"constraint_title,omitempty"`
	ConstraintValue string  `json:"constraint_value,omitempty"`
	CalculatedValue float64 `json:"calculated_value"`
	Unit            string  `json:"unit,omitempty"`
	Verified        bool    `json:"verified"`
	Margin          float64 `json:"margin"`
	IsNegotiable    bool    `json:"is_negotiable"`
	Notes           string  `json:"notes,omitempty"`
}

// FOMEntry is one computed figure of merit.
type FOMEntry struct {
	FOMID            string             `json:"fom_id"`
	FOMName          string             `json:"fom_name,omitempty"`
	CalculatedValue  float64            `json:"calculated_value"`
	TargetValue      *float64           `json:"target_value,omitempty"`
	MeetsTarget      bool               `json:"meets_target"`
	ContributingKPIs map[string]float64 `json:"contributing_kpis,omitempty"`
	Notes            string             `json:"notes,omitempty"`
}

// EvaluationInput is a manual evaluation of a solution. With Auto set, or
// with no entries at all, the caller should run the automatic evaluator
// and only apply the narrative fields.
type EvaluationInput struct {
	Auto                     bool               `json:"auto,omitempty"`
	KPIEvaluations           []KPIEntry         `json:"kpi_evaluations,omitempty"`
	RequirementVerifications []RequirementEntry `json:"requirement_verifications,omitempty"`
	ConstraintVerifications  []ConstraintEntry  `json:"constraint_verifications,omitempty"`
	SummaryNotes             string             `json:"summary_notes,omitempty"`
	Strengths                []string           `json:"strengths,omitempty"`
	Weaknesses               []string           `json:"weaknesses,omitempty"`
	Recommendations          []string           `json:"recommendations,omitempty"`
}

// IsAuto reports whether the automatic evaluator should fill the entries.
func (in EvaluationInput) IsAuto() bool {
	return in.Auto || len(in.KPIEvaluations)+len(in.RequirementVerifications)+len(in.ConstraintVerifications) == 0
}

// Annotate copies the narrative fields onto ev.
func (in EvaluationInput) Annotate(ev *core.SolutionEvaluation) {
	if in.SummaryNotes != "" {
		ev.SummaryNotes = in.SummaryNotes
	}
	ev.Strengths = append(ev.Strengths, in.Strengths...)
	ev.Weaknesses = append(ev.Weaknesses, in.Weaknesses...)
	ev.Recommendations = append(ev.Recommendations, in.Recommendations...)
}

// Apply starts a fresh evaluation of the solution from the manual entries
// and resolves its status. Entries naming a KPI, requirement or constraint
// of m are re-derived from calculated_value; entries for unknown ids are
// stored as given. Nothing on m changes when an entry is malformed.
func (in EvaluationInput) Apply(m *core.Mission, solutionID string) (*core.SolutionEvaluation, error) {
	if m.DesignSolution(solutionID) == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrSolutionNotFound, solutionID)
	}
	kpis := make([]core.KPIEvaluation, 0, len(in.KPIEvaluations))
	var measured []KPIEntry
	for _, e := range in.KPIEvaluations {
		if k := m.KPI(e.KPIID); k != nil {
			kpis = append(kpis, core.ClassifyKPI(k, e.CalculatedValue, e.Notes))
			measured = append(measured, e)
			continue
		}
		unit, err := model.ParseUnit(e.Unit)
		if err != nil {
			return nil, fmt.Errorf("kpi evaluation %s: %w", e.KPIID, err)
		}
		status := model.StatusNotEvaluated
		if e.Status != "" {
			if status, err = model.ParseObjectiveStatus(e.Status); err != nil {
				return nil, fmt.Errorf("kpi evaluation %s: %w", e.KPIID, err)
			}
		}
		kpis = append(kpis, core.KPIEvaluation{
			KPIID:           e.KPIID,
			KPIName:         e.KPIName,
			CalculatedValue: e.CalculatedValue,
			Unit:            unit,
			Status:          status,
			ThresholdMet:    e.ThresholdMet,
			BaselineMet:     e.BaselineMet,
			TargetMet:       e.TargetMet,
			Notes:           e.Notes,
		})
	}
	reqs := make([]core.RequirementVerification, 0, len(in.RequirementVerifications))
	for _, e := range in.RequirementVerifications {
		if r := m.Requirement(e.RequirementID); r != nil {
			reqs = append(reqs, core.VerifyRequirement(r, e.CalculatedValue, e.Notes))
			continue
		}
		unit, err := model.ParseUnit(e.Unit)
		if err != nil {
			return nil, fmt.Errorf("requirement verification %s: %w", e.RequirementID, err)
		}
		reqs = append(reqs, core.RequirementVerification{
			RequirementID:    e.RequirementID,
			RequirementTitle: e.RequirementTitle,
			RequiredValue:    e.RequiredValue,
			CalculatedValue:  e.CalculatedValue,
			Unit:             unit,
			Verified:         e.Verified,
			Margin:           e.Margin,
			Notes:            e.Notes,
		})
	}
	cons := make([]core.ConstraintVerification, 0, len(in.ConstraintVerifications))
	for _, e := range in.ConstraintVerifications {
		if c := m.Constraint(e.ConstraintID); c != nil {
			cons = append(cons, core.VerifyConstraint(c, e.CalculatedValue, e.Notes))
			continue
		}
		unit, err := model.ParseUnit(e.Unit)
		if err != nil {
			return nil, fmt.Errorf("constraint verification %s: %w", e.ConstraintID, err)
		}
		cons = append(cons, core.ConstraintVerification{
			ConstraintID:    e.ConstraintID,
			ConstraintTitle: e.ConstraintTitle,
			ConstraintValue: e.ConstraintValue,
			CalculatedValue: e.CalculatedValue,
			Unit:            unit,
			Verified:        e.Verified,
			Margin:          e.Margin,
			IsNegotiable:    e.IsNegotiable,
			Notes:           e.Notes,
		})
	}

	ev, err := m.EvaluateSolution(solutionID)
	if err != nil {
		return nil, err
	}
	for _, e := range measured {
		m.KPI(e.KPIID).EvaluatePerformance(e.CalculatedValue)
	}
	for _, k := range kpis {
		ev.AddKPIEvaluation(k)
	}
	for _, r := range reqs {
		ev.AddRequirementVerification(r)
	}
	for _, c := range cons {
		ev.AddConstraintVerification(c)
	}
	in.Annotate(ev)
	if _, err := m.ResolveSolutionStatus(solutionID); err != nil {
		return nil, err
	}
	return ev, nil
}

// Evaluation is the full view of a solution evaluation.
type Evaluation struct {
	EvaluationID                  string             `json:"evaluation_id"`
	SolutionID                    string             `json:"solution_id"`
	SolutionLabel                 string             `json:"solution_label"`
	EvaluationDate                time.Time          `json:"evaluation_date"`
	OverallStatus                 string             `json:"overall_status"`
	KPISuccessRate                float64            `json:"kpi_success_rate"`
	RequirementSuccessRate        float64            `json:"requirement_success_rate"`
	ConstraintSuccessRate         float64            `json:"constraint_success_rate"`
	AllRequirementsMet            bool               `json:"all_requirements_met"`
	AllCriticalConstraintsMet     bool               `json:"all_critical_constraints_met"`
	KPIEvaluationsCount           int                `json:"kpi_evaluations_count"`
	RequirementVerificationsCount int                `json:"requirement_verifications_count"`
	ConstraintVerificationsCount  int                `json:"constraint_verifications_count"`
	KPIEvaluations                []KPIEntry         `json:"kpi_evaluations"`
	FOMEvaluations                []FOMEntry         `json:"fom_evaluations,omitempty"`
	RequirementVerifications      []RequirementEntry `json:"requirement_verifications"`
	ConstraintVerifications       []ConstraintEntry  `json:"constraint_verifications"`
	SummaryNotes                  string             `json:"summary_notes,omitempty"`
	Strengths                     []string           `json:"strengths"`
	Weaknesses                    []string           `json:"weaknesses"`
	Recommendations               []string           `json:"recommendations"`
}

// FromEvaluation converts ev for output.
func FromEvaluation(ev *core.SolutionEvaluation) Evaluation {
	out := Evaluation{
		EvaluationID:              ev.ID,
		SolutionID:                ev.SolutionID,
		SolutionLabel:             ev.SolutionLabel,
		EvaluationDate:            ev.EvaluatedAt,
		OverallStatus:             string(ev.OverallStatus),
		KPISuccessRate:            ev.KPISuccessRate(),
		RequirementSuccessRate:    ev.RequirementSuccessRate(),
		ConstraintSuccessRate:     ev.ConstraintSuccessRate(),
		AllRequirementsMet:        ev.AllRequirementsMet(),
		AllCriticalConstraintsMet: ev.AllCriticalConstraintsMet(),
		KPIEvaluations:            []KPIEntry{},
		RequirementVerifications:  []RequirementEntry{},
		ConstraintVerifications:   []ConstraintEntry{},
		SummaryNotes:              ev.SummaryNotes,
		Strengths:                 append([]string{}, ev.Strengths...),
		Weaknesses:                append([]string{}, ev.Weaknesses...),
		Recommendations:           append([]string{}, ev.Recommendations...),
	}
	for _, k := range ev.KPIEvaluations() {
		out.KPIEvaluations = append(out.KPIEvaluations, KPIEntry{
			KPIID:           k.KPIID,
			KPIName:         k.KPIName,
			CalculatedValue: k.CalculatedValue,
			Unit:            string(k.Unit),
			Status:          string(k.Status),
			ThresholdMet:    k.ThresholdMet,
			BaselineMet:     k.BaselineMet,
			TargetMet:       k.TargetMet,
			Notes:           k.Notes,
		})
	}
	for _, f := range ev.FOMEvaluations() {
		out.FOMEvaluations = append(out.FOMEvaluations, FOMEntry{
			FOMID:            f.FOMID,
			FOMName:          f.FOMName,
			CalculatedValue:  f.CalculatedValue,
			TargetValue:      copyFloat(f.TargetValue),
			MeetsTarget:      f.MeetsTarget,
			ContributingKPIs: f.ContributingKPIs,
			Notes:            f.Notes,
		})
	}
	for _, r := range ev.RequirementVerifications() {
		out.RequirementVerifications = append(out.RequirementVerifications, RequirementEntry{
			RequirementID:    r.RequirementID,
			RequirementTitle: r.RequirementTitle,
			RequiredValue:    r.RequiredValue,
			CalculatedValue:  r.CalculatedValue,
			Unit:             string(r.Unit),
			Verified:         r.Verified,
			Margin:           r.Margin,
			Notes:            r.Notes,
		})
	}
	for _, c := range ev.ConstraintVerifications() {
		out.ConstraintVerifications = append(out.ConstraintVerifications, ConstraintEntry{
			ConstraintID:    c.ConstraintID,
			ConstraintTitle: c.ConstraintTitle,
			ConstraintValue: c.ConstraintValue,
			CalculatedValue: c.CalculatedValue,
			Unit:            string(c.Unit),
			Verified:        c.Verified,
			Margin:          c.Margin,
			IsNegotiable:    c.IsNegotiable,
			Notes:           c.Notes,
		})
	}
	out.KPIEvaluationsCount = len(out.KPIEvaluations)
	out.RequirementVerificationsCount = len(out.RequirementVerifications)
	out.ConstraintVerificationsCount = len(out.ConstraintVerifications)
	return out
}

// IterationView is one entry of the design history.
type IterationView struct {
	IterationNumber     int         `json:"iteration_number"`
	SolutionID          string      `json:"solution_id"`
	SolutionLabel       string      `json:"solution_label"`
	ChangesFromPrevious string      `json:"changes_from_previous"`
	IterationNotes      string      `json:"iteration_notes"`
	CreatedDate         time.Time   `json:"created_date"`
	Evaluation          *Evaluation `json:"evaluation,omitempty"`
}

// FromIteration converts it for output.
func FromIteration(it *core.DesignIteration) IterationView {
	v := IterationView{
		IterationNumber:     it.Number,
		ChangesFromPrevious: it.ChangesFromPrevious,
		IterationNotes:      it.Notes,
		CreatedDate:         it.CreatedAt,
	}
	if it.Solution != nil {
		v.SolutionID = it.Solution.ID
		v.SolutionLabel = it.Solution.Label
	}
	if it.Evaluation != nil {
		ev := FromEvaluation(it.Evaluation)
		v.Evaluation = &ev
	}
	return v
}

// Ranking is one row of a solution comparison.
type Ranking struct {
	Rank                   int     `json:"rank"`
	SolutionID             string  `json:"solution_id"`
	Label                  string  `json:"label"`
	Status                 string  `json:"status"`
	Evaluated              bool    `json:"evaluated"`
	RequirementSuccessRate float64 `json:"requirement_success_rate"`
	ConstraintSuccessRate  float64 `json:"constraint_success_rate"`
	KPISuccessRate         float64 `json:"kpi_success_rate"`
}

// Comparison is the rendered report plus the ranking behind it.
type Comparison struct {
	Report  string    `json:"report"`
	Ranking []Ranking `json:"ranking"`
}

// Compare renders the comparison report and ranking for ids on m.
func Compare(m *core.Mission, ids []string) Comparison {
	out := Comparison{Report: m.CompareSolutions(ids), Ranking: []Ranking{}}
	for _, r := range m.RankSolutions(ids) {
		out.Ranking = append(out.Ranking, Ranking{
			Rank:                   r.Rank,
			SolutionID:             r.SolutionID,
			Label:                  r.Label,
			Status:                 string(r.Status),
			Evaluated:              r.Evaluated,
			RequirementSuccessRate: r.RequirementSuccessRate,
			ConstraintSuccessRate:  r.ConstraintSuccessRate,
			KPISuccessRate:         r.KPISuccessRate,
		})
	}
	return out
}
