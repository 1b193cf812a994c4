package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signalsfoundry/mission-designer/model"
)

// CompareSolutions renders a side-by-side report of the given solutions.
// Unknown ids are dropped; solutions without an evaluation are listed but
// contribute no scores.
func (m *Mission) CompareSolutions(ids []string) string {
	sols := m.resolveSolutions(ids)
	if len(sols) == 0 {
		return "No solutions found for comparison."
	}

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(&b, "\n%s\nDESIGN SOLUTION COMPARISON\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Comparing %d solutions:\n", len(sols))
	for _, s := range sols {
		fmt.Fprintf(&b, "  - %s\n", s.Label)
	}
	b.WriteString("\n")

	for _, s := range sols {
		ev := m.evaluations[s.ID]
		if ev == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", s.Label)
		fmt.Fprintf(&b, "  Status: %s\n", ev.OverallStatus)
		fmt.Fprintf(&b, "  KPI Success: %.1f%%\n", ev.KPISuccessRate())
		fmt.Fprintf(&b, "  Requirements Met: %.1f%%\n", ev.RequirementSuccessRate())
		fmt.Fprintf(&b, "  Constraints Satisfied: %.1f%%\n", ev.ConstraintSuccessRate())
		if s.Spacecraft != nil {
			fmt.Fprintf(&b, "  Mass (with margin): %.1f kg\n", s.Spacecraft.TotalMass(true))
			fmt.Fprintf(&b, "  Cost (with margin): %s\n", FormatMoney(s.Spacecraft.TotalCost(true)))
		}
	}
	return b.String()
}

// SolutionRanking is one row of RankSolutions.
type SolutionRanking struct {
	Rank                   int
	SolutionID             string
	Label                  string
	Status                 model.SolutionStatus
	Evaluated              bool
	RequirementSuccessRate float64
	ConstraintSuccessRate  float64
	KPISuccessRate         float64
}

// RankSolutions orders the given solutions best first: evaluated before
// unevaluated, requirements_met before anything else, then by requirement,
// constraint and KPI success rate. Ties keep the order of ids. Unknown ids
// are dropped. An empty ids slice ranks every solution.
func (m *Mission) RankSolutions(ids []string) []SolutionRanking {
	sols := m.resolveSolutions(ids)
	if len(ids) == 0 {
		sols = m.DesignSolutions()
	}
	rows := make([]SolutionRanking, 0, len(sols))
	for _, s := range sols {
		row := SolutionRanking{SolutionID: s.ID, Label: s.Label, Status: s.Status}
		if ev := m.evaluations[s.ID]; ev != nil {
			row.Evaluated = true
			row.Status = ev.OverallStatus
			row.RequirementSuccessRate = ev.RequirementSuccessRate()
			row.ConstraintSuccessRate = ev.ConstraintSuccessRate()
			row.KPISuccessRate = ev.KPISuccessRate()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Evaluated != b.Evaluated {
			return a.Evaluated
		}
		am, bm := a.Status == model.SolutionRequirementsMet, b.Status == model.SolutionRequirementsMet
		if am != bm {
			return am
		}
		if a.RequirementSuccessRate != b.RequirementSuccessRate {
			return a.RequirementSuccessRate > b.RequirementSuccessRate
		}
		if a.ConstraintSuccessRate != b.ConstraintSuccessRate {
			return a.ConstraintSuccessRate > b.ConstraintSuccessRate
		}
		return a.KPISuccessRate > b.KPISuccessRate
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func (m *Mission) resolveSolutions(ids []string) []*DesignSolution {
	var out []*DesignSolution
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s := m.DesignSolution(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Summary lists the mission contents by title.
func (m *Mission) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mission: %s\n%s\n", m.Name, m.Description)

	fmt.Fprintf(&b, "\nObjectives (%d):\n", len(m.objectives))
	for _, o := range m.objectives {
		fmt.Fprintf(&b, "  - %s\n", o.Title)
	}
	fmt.Fprintf(&b, "\nRequirements (%d):\n", len(m.requirements))
	for _, r := range m.requirements {
		fmt.Fprintf(&b, "  - %s\n", r.Title)
	}
	fmt.Fprintf(&b, "\nConstraints (%d):\n", len(m.constraints))
	for _, c := range m.constraints {
		fmt.Fprintf(&b, "  - %s\n", c.Title)
	}
	fmt.Fprintf(&b, "\nDesign Solutions (%d):\n", len(m.solutions))
	for _, s := range m.solutions {
		fmt.Fprintf(&b, "  - %s (%s)\n", s.Label, s.Status)
	}
	fmt.Fprintf(&b, "\nDesign Iterations: %d\n", len(m.iterations))
	if m.BaselineSolutionID != "" {
		if s := m.DesignSolution(m.BaselineSolutionID); s != nil {
			fmt.Fprintf(&b, "Baseline Solution: %s\n", s.Label)
		}
	}
	if m.SelectedSolutionID != "" {
		label := "None"
		if s := m.DesignSolution(m.SelectedSolutionID); s != nil {
			label = s.Label
		}
		fmt.Fprintf(&b, "Selected Solution: %s\n", label)
	}
	return b.String()
}
