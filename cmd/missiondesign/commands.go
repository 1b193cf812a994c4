package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

var rule = strings.Repeat("=", 70)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func (o *rootOptions) evaluator(cmd *cobra.Command) *core.Evaluator {
	log := logging.New(logging.Config{Level: o.logLevel, Format: o.logFormat, Output: cmd.ErrOrStderr()})
	return core.NewEvaluator(core.WithEvaluatorLogger(log))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "missiondesign",
		Short:         "Spacecraft mission design evaluation",
		Long:          `Evaluate candidate spacecraft and orbit designs against mission objectives, requirements and constraints.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(
		newDemoCmd(opts),
		newEvaluateCmd(opts),
		newCompareCmd(opts),
		newScenarioCmd(),
	)
	return root
}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the GlobalWatch design iterations",
		Long: `
Builds the bundled GlobalWatch land monitoring mission and replays its three
design iterations, printing the budgets, orbit and evaluation of each
candidate, then compares the candidates and selects the best ranked one.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), opts.evaluator(cmd))
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, ev *core.Evaluator) error {
	doc, err := scenario.GlobalWatch()
	if err != nil {
		return err
	}
	steps := doc.Iterations
	doc.Iterations = nil
	m, err := doc.Build(ctx, ev)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n%s", rule, m.Summary())

	for i, step := range steps {
		sol := m.DesignSolution(step.SolutionID)
		if sol == nil {
			return fmt.Errorf("%w: %s", core.ErrSolutionNotFound, step.SolutionID)
		}
		fmt.Fprintf(out, "\n%s\nITERATION %d: %s (%s)\n%s\n", rule, i+1, sol.Label, sol.Name, rule)
		if step.ChangesFromPrevious != "" {
			fmt.Fprintf(out, "Changes: %s\n", step.ChangesFromPrevious)
		}
		fmt.Fprintln(out, sol.Spacecraft.BudgetSummary())
		fmt.Fprintln(out, sol.Orbit.Summary())

		res, err := ev.Evaluate(ctx, m, step.SolutionID)
		if err != nil {
			return err
		}
		fmt.Fprint(out, res.Evaluation.GenerateSummary())
		m.AddDesignIteration(sol, res.Evaluation, step.ChangesFromPrevious, step.IterationNotes)
	}

	ids := solutionIDs(m)
	fmt.Fprint(out, m.CompareSolutions(ids))
	ranking := m.RankSolutions(ids)
	writeRanking(out, ranking)

	if len(ranking) > 0 {
		best := ranking[0]
		m.SetSelectedSolution(best.SolutionID)
		fmt.Fprintf(out, "\nSelected solution: %s (%s) after %d iterations\n", best.Label, best.SolutionID, len(m.Iterations()))
	}
	return nil
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate every solution of a scenario file",
		Long: `
Loads a YAML or JSON scenario, replays its iterations, evaluates every design
solution and prints the evaluation summaries followed by the ranking.

Examples:
  missiondesign evaluate --file mission.yaml
  missiondesign evaluate --file mission.json --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev := opts.evaluator(cmd)
			m, err := loadAndEvaluate(cmd.Context(), file, ev)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ids := solutionIDs(m)
			if asJSON {
				report := struct {
					Mission     scenario.MissionHeader `json:"mission"`
					Evaluations []scenario.Evaluation  `json:"evaluations"`
					Ranking     []scenario.Ranking     `json:"ranking"`
				}{
					Mission: scenario.FromMission(m).Mission,
					Ranking: scenario.Compare(m, ids).Ranking,
				}
				for _, id := range ids {
					report.Evaluations = append(report.Evaluations, scenario.FromEvaluation(m.Evaluation(id)))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			for _, id := range ids {
				fmt.Fprint(out, m.Evaluation(id).GenerateSummary())
			}
			fmt.Fprintln(out)
			writeRanking(out, m.RankSolutions(ids))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Scenario file (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print evaluations and ranking as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		file string
		ids  []string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare solutions of a scenario file",
		Long: `
Evaluates every solution of the scenario and prints the comparison report for
the selected ids (all solutions when --ids is omitted).

Examples:
  missiondesign compare --file mission.yaml --ids SOL-A,SOL-B
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadAndEvaluate(cmd.Context(), file, opts.evaluator(cmd))
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				ids = solutionIDs(m)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, m.CompareSolutions(ids))
			writeRanking(out, m.RankSolutions(ids))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Scenario file (.yaml, .yml or .json)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Comma separated solution ids")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Print the bundled GlobalWatch scenario",
		Long:  `Print the bundled GlobalWatch scenario, a starting point for new scenario files.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := scenario.GlobalWatch()
			if err != nil {
				return err
			}
			switch f := scenario.Format(strings.ToLower(format)); f {
			case scenario.FormatYAML, scenario.FormatJSON:
				return scenario.Encode(cmd.OutOrStdout(), doc, f)
			default:
				return fmt.Errorf("%w: %q", scenario.ErrUnknownFormat, format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	return cmd
}

// loadAndEvaluate builds the scenario at path and evaluates every solution.
func loadAndEvaluate(ctx context.Context, path string, ev *core.Evaluator) (*core.Mission, error) {
	doc, err := scenario.LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := doc.Build(ctx, ev)
	if err != nil {
		return nil, err
	}
	for _, id := range solutionIDs(m) {
		if _, err := ev.Evaluate(ctx, m, id); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func solutionIDs(m *core.Mission) []string {
	sols := m.DesignSolutions()
	ids := make([]string, 0, len(sols))
	for _, s := range sols {
		ids = append(ids, s.ID)
	}
	return ids
}

func writeRanking(out io.Writer, ranking []core.SolutionRanking) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSOLUTION\tLABEL\tSTATUS\tREQ %\tCON %\tKPI %")
	for _, r := range ranking {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\n",
			r.Rank, r.SolutionID, r.Label, r.Status,
			r.RequirementSuccessRate, r.ConstraintSuccessRate, r.KPISuccessRate)
	}
	_ = tw.Flush()
}
