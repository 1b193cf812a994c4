package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/mission-designer/model"
)

// PerformanceThreshold is one tier (threshold, baseline or target) of a KPI.
type PerformanceThreshold struct {
	Level       model.ThresholdLevel
	Value       float64
	Unit        model.Unit
	Operator    model.ComparisonOperator
	Description string
}

// NewPerformanceThreshold validates the level and operator. Between is not
// a valid tier operator since a tier carries a single value.
func NewPerformanceThreshold(level string, op model.ComparisonOperator, value float64, unit model.Unit, description string) (PerformanceThreshold, error) {
	lvl, err := model.ParseThresholdLevel(level)
	if err != nil {
		return PerformanceThreshold{}, err
	}
	t := PerformanceThreshold{Level: lvl, Value: value, Unit: unit, Operator: op, Description: description}
	if err := t.Validate(); err != nil {
		return PerformanceThreshold{}, err
	}
	return t, nil
}

// Validate checks the level, unit and a single-operand operator.
func (t PerformanceThreshold) Validate() error {
	if _, err := model.ParseThresholdLevel(string(t.Level)); err != nil {
		return err
	}
	if t.Operator == model.OpBetween {
		return fmt.Errorf("%w: threshold %s cannot use between", model.ErrInvalidConstraintShape, t.Level)
	}
	_, err := model.Compare(t.Operator, t.Value, t.Unit)
	return err
}

// Evaluate reports whether actual satisfies this tier.
func (t PerformanceThreshold) Evaluate(actual float64) bool {
	v := t.Value
	c := model.NumericConstraintValue{Operator: t.Operator, Value: &v, Unit: t.Unit}
	return c.Evaluate(actual)
}

func (t PerformanceThreshold) String() string {
	return fmt.Sprintf("%s: %s %g %s", t.Level, t.Operator, t.Value, t.Unit)
}

// KPIRecord is the plain input used to build a KeyPerformanceIndicator.
type KPIRecord struct {
	ID                string
	Name              string
	Description       string
	Unit              model.Unit
	Thresholds        []PerformanceThreshold
	MeasurementMethod string
	// Metric names the measured quantity the evaluator feeds this KPI, e.g.
	// "ground_sample_distance"; empty lets the evaluator infer it.
	Metric      string
	DataSources []string
	Aggregation model.AggregationMethod
	Weight      *float64
	Region      *model.GeographicRegion
	Notes       string
}

// KeyPerformanceIndicator is a measurable metric with tiered thresholds.
type KeyPerformanceIndicator struct {
	ID                string
	Name              string
	Description       string
	Unit              model.Unit
	Thresholds        []PerformanceThreshold
	MeasurementMethod string
	Metric            string
	DataSources       []string
	Aggregation       model.AggregationMethod
	Weight            float64
	CurrentValue      *float64
	Status            model.ObjectiveStatus
	Region            *model.GeographicRegion
	Notes             string
}

// NewKPI validates rec. Aggregation defaults to average, weight to 1.
func NewKPI(rec KPIRecord) (*KeyPerformanceIndicator, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: kpi id is required", ErrInvalidRecord)
	}
	if !rec.Unit.Valid() {
		return nil, fmt.Errorf("kpi %s: %w: unit %q", rec.ID, model.ErrInvalidEnum, rec.Unit)
	}
	agg := rec.Aggregation
	if agg == "" {
		agg = model.AggregationAverage
	}
	if _, err := model.ParseAggregationMethod(string(agg)); err != nil {
		return nil, fmt.Errorf("kpi %s: %w", rec.ID, err)
	}
	for _, t := range rec.Thresholds {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("kpi %s: %w", rec.ID, err)
		}
	}
	return &KeyPerformanceIndicator{
		ID:                rec.ID,
		Name:              rec.Name,
		Description:       rec.Description,
		Unit:              rec.Unit,
		Thresholds:        append([]PerformanceThreshold(nil), rec.Thresholds...),
		MeasurementMethod: rec.MeasurementMethod,
		Metric:            rec.Metric,
		DataSources:       append([]string(nil), rec.DataSources...),
		Aggregation:       agg,
		Weight:            floatOr(rec.Weight, 1),
		Status:            model.StatusNotEvaluated,
		Region:            rec.Region,
		Notes:             rec.Notes,
	}, nil
}

// AddThreshold appends a tier.
func (k *KeyPerformanceIndicator) AddThreshold(t PerformanceThreshold) {
	k.Thresholds = append(k.Thresholds, t)
}

// Threshold returns the first tier whose level matches, case-insensitively.
func (k *KeyPerformanceIndicator) Threshold(level string) (PerformanceThreshold, bool) {
	for _, t := range k.Thresholds {
		if strings.EqualFold(string(t.Level), level) {
			return t, true
		}
	}
	return PerformanceThreshold{}, false
}

// EvaluatePerformance records actual and resolves the status by checking
// target, then baseline, then threshold. Absent tiers are skipped.
func (k *KeyPerformanceIndicator) EvaluatePerformance(actual float64) model.ObjectiveStatus {
	k.CurrentValue = &actual
	k.Status = k.Classify(actual)
	return k.Status
}

// Classify resolves the tier for actual without recording it.
func (k *KeyPerformanceIndicator) Classify(actual float64) model.ObjectiveStatus {
	tiers := []struct {
		level  model.ThresholdLevel
		status model.ObjectiveStatus
	}{
		{model.LevelTarget, model.StatusTargetMet},
		{model.LevelBaseline, model.StatusBaselineMet},
		{model.LevelThreshold, model.StatusThresholdMet},
	}
	for _, tier := range tiers {
		if t, ok := k.Threshold(string(tier.level)); ok && t.Evaluate(actual) {
			return tier.status
		}
	}
	return model.StatusBelowThreshold
}

func (k *KeyPerformanceIndicator) String() string {
	var b strings.Builder
	b.WriteString(k.Name)
	if k.CurrentValue != nil {
		fmt.Fprintf(&b, " = %g %s", *k.CurrentValue, k.Unit)
	}
	if k.Status != model.StatusNotEvaluated && k.Status != "" {
		fmt.Fprintf(&b, " [%s]", k.Status)
	}
	return b.String()
}

// FigureOfMerit combines several KPIs into one score.
type FigureOfMerit struct {
	ID                string
	Name              string
	Description       string
	KPIs              []string
	CalculationMethod string
	Unit              model.Unit
	Weight            float64
	TargetValue       *float64
	CurrentValue      *float64
	Notes             string
}

// Calculate averages the values of the referenced KPIs that are present in
// values. It returns 0 when none are present.
func (f *FigureOfMerit) Calculate(values map[string]float64) float64 {
	var total float64
	var count int
	for _, id := range f.KPIs {
		if v, ok := values[id]; ok {
			total += v
			count++
		}
	}
	result := 0.0
	if count > 0 {
		result = total / float64(count)
	}
	f.CurrentValue = &result
	return result
}

// QuantitativeObjective groups the KPIs that make a qualitative objective
// measurable.
type QuantitativeObjective struct {
	ID                     string
	QualitativeObjectiveID string
	Title                  string
	Description            string
	KPIs                   []*KeyPerformanceIndicator
	FiguresOfMerit         []*FigureOfMerit
	SuccessCriteria        string
	MinimumThreshold       string
	DerivedRequirements    []string
	Priority               model.Priority
	CreatedAt              time.Time
	Notes                  string
}

// AddKPI appends a KPI.
func (q *QuantitativeObjective) AddKPI(k *KeyPerformanceIndicator) { q.KPIs = append(q.KPIs, k) }

// AddFigureOfMerit appends a figure of merit.
func (q *QuantitativeObjective) AddFigureOfMerit(f *FigureOfMerit) {
	q.FiguresOfMerit = append(q.FiguresOfMerit, f)
}

// EvaluateObjective is the lowest-ranked status across the KPIs.
func (q *QuantitativeObjective) EvaluateObjective() model.ObjectiveStatus {
	statuses := make([]model.ObjectiveStatus, 0, len(q.KPIs))
	for _, k := range q.KPIs {
		statuses = append(statuses, k.Status)
	}
	return AggregateStatus(statuses...)
}

// MissionObjective is a qualitative objective refined by quantitative ones.
type MissionObjective struct {
	ID                     string
	Title                  string
	Description            string
	Priority               model.Priority
	Category               string
	Stakeholders           []string
	QuantitativeObjectives []*QuantitativeObjective
	CreatedAt              time.Time
	Notes                  string
}

// NewMissionObjective validates the priority, defaulting it to medium.
func NewMissionObjective(id, title, description string, priority model.Priority) (*MissionObjective, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: objective id is required", ErrInvalidRecord)
	}
	if priority == "" {
		priority = model.PriorityMedium
	}
	if _, err := model.ParsePriority(string(priority)); err != nil {
		return nil, fmt.Errorf("objective %s: %w", id, err)
	}
	return &MissionObjective{ID: id, Title: title, Description: description, Priority: priority}, nil
}

// AddQuantitativeObjective appends a quantitative objective and links it back.
func (m *MissionObjective) AddQuantitativeObjective(q *QuantitativeObjective) {
	if q.QualitativeObjectiveID == "" {
		q.QualitativeObjectiveID = m.ID
	}
	m.QuantitativeObjectives = append(m.QuantitativeObjectives, q)
}

// AllKPIs flattens the KPIs of every quantitative objective.
func (m *MissionObjective) AllKPIs() []*KeyPerformanceIndicator {
	var out []*KeyPerformanceIndicator
	for _, q := range m.QuantitativeObjectives {
		out = append(out, q.KPIs...)
	}
	return out
}

// EvaluateObjective is the lowest-ranked status across the quantitative
// objectives.
func (m *MissionObjective) EvaluateObjective() model.ObjectiveStatus {
	statuses := make([]model.ObjectiveStatus, 0, len(m.QuantitativeObjectives))
	for _, q := range m.QuantitativeObjectives {
		statuses = append(statuses, q.EvaluateObjective())
	}
	return AggregateStatus(statuses...)
}

// AggregateStatus returns the minimum-rank status, or not_evaluated when
// there is nothing to aggregate.
func AggregateStatus(statuses ...model.ObjectiveStatus) model.ObjectiveStatus {
	if len(statuses) == 0 {
		return model.StatusNotEvaluated
	}
	lowest := statuses[0]
	for _, s := range statuses[1:] {
		if s.Rank() < lowest.Rank() {
			lowest = s
		}
	}
	if lowest == "" {
		return model.StatusNotEvaluated
	}
	return lowest
}
