package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/model"
)

// Metric names a quantity the Evaluator can measure on a design solution.
type Metric string

const (
	MetricAltitude            Metric = "altitude"
	MetricSemiMajorAxis       Metric = "semi_major_axis"
	MetricEccentricity        Metric = "eccentricity"
	MetricInclination         Metric = "inclination"
	MetricOrbitalPeriod       Metric = "orbital_period"
	MetricMeanMotion          Metric = "mean_motion"
	MetricGroundTrackVelocity Metric = "ground_track_velocity"
	MetricRevisitTime         Metric = "revisit_time"
	MetricCoveragePerDay      Metric = "coverage_per_day"
	MetricOrbitalLifetime     Metric = "orbital_lifetime"

	MetricGroundSampleDistance  Metric = "ground_sample_distance"
	MetricSwathWidth            Metric = "swath_width"
	MetricSpectralBands         Metric = "spectral_bands"
	MetricSpectralBandwidth     Metric = "spectral_bandwidth"
	MetricRadiometricResolution Metric = "radiometric_resolution"
	MetricSignalToNoise         Metric = "signal_to_noise_ratio"
	MetricDataRate              Metric = "data_rate"
	MetricFNumber               Metric = "f_number"

	MetricTotalMass   Metric = "total_mass"
	MetricTotalPower  Metric = "total_power"
	MetricTotalCost   Metric = "total_cost"
	MetricDesignLife  Metric = "design_life"
	MetricMissionLife Metric = "mission_lifetime"
)

// Measurement is one measured quantity with its unit.
type Measurement struct {
	Value float64
	Unit  model.Unit
}

// Measurements maps metrics onto measured values. A metric is absent when
// the solution does not carry the inputs needed to compute it.
type Measurements map[Metric]Measurement

// In returns metric converted into unit. It reports false when the metric
// is absent or the units do not convert. Radiometric resolution may be
// stated as a bit count in either bits or count.
func (m Measurements) In(metric Metric, unit model.Unit) (float64, bool) {
	v, ok := m[metric]
	if !ok {
		return 0, false
	}
	if unit == model.UnitNone || v.Unit == model.UnitNone {
		return v.Value, true
	}
	if metric == MetricRadiometricResolution && unit == model.UnitCount && v.Unit == model.UnitBit {
		return v.Value, true
	}
	return model.Convert(v.Value, v.Unit, unit)
}

// MeasureSolution computes every quantity the solution's orbit, payloads and
// bus define. Payload quantities use the best instrument on board: smallest
// GSD and narrowest band, widest swath, most bands and bits, highest SNR.
// Data rates are summed.
func MeasureSolution(s *DesignSolution) Measurements {
	out := make(Measurements)
	if s == nil {
		return out
	}
	set := func(k Metric, v float64, u model.Unit) { out[k] = Measurement{Value: v, Unit: u} }

	altitude := 0.0
	if o := s.Orbit; o != nil {
		altitude = o.AltitudeKm()
		if o.Altitude != nil {
			set(MetricAltitude, altitude, model.UnitKilometer)
		}
		set(MetricSemiMajorAxis, o.SemiMajorAxis, model.UnitKilometer)
		set(MetricEccentricity, o.Eccentricity, model.UnitNone)
		set(MetricInclination, o.Inclination, model.UnitDegree)
		set(MetricOrbitalPeriod, o.OrbitalPeriod, model.UnitMinute)
		set(MetricMeanMotion, o.MeanMotion, model.UnitNone)
		if v := o.GroundTrackVelocity(); v != 0 {
			set(MetricGroundTrackVelocity, v, model.UnitNone)
		}
		if o.RevisitTimeGlobal != nil {
			set(MetricRevisitTime, *o.RevisitTimeGlobal, model.UnitDay)
		}
		if o.CoveragePerDay != nil {
			set(MetricCoveragePerDay, *o.CoveragePerDay, model.UnitPercent)
		}
		if o.OrbitalLifetime != nil {
			set(MetricOrbitalLifetime, *o.OrbitalLifetime, model.UnitYear)
		}
	}

	if sc := s.Spacecraft; sc != nil {
		measurePayloads(sc.PayloadInstruments(), altitude, set)

		set(MetricTotalMass, sc.TotalMass(true), model.UnitKilogram)
		set(MetricTotalPower, sc.TotalPower(PowerActive, true), model.UnitWatt)
		set(MetricTotalCost, sc.TotalCost(true), model.UnitUSD)
		set(MetricDesignLife, sc.DesignLife, model.UnitYear)

		life := sc.DesignLife
		if s.Orbit != nil && s.Orbit.OrbitalLifetime != nil {
			life = math.Min(life, *s.Orbit.OrbitalLifetime)
		}
		set(MetricMissionLife, life, model.UnitYear)
	}
	return out
}

func measurePayloads(payloads []*PayloadInstrument, altitudeKm float64, set func(Metric, float64, model.Unit)) {
	if len(payloads) == 0 {
		return
	}
	gsd, bandwidth := math.Inf(1), math.Inf(1)
	var swath, snr, rate, fnum float64
	var bands, bits int
	for _, p := range payloads {
		if v := p.GroundSampleDistance(altitudeKm); v > 0 {
			gsd = math.Min(gsd, v)
		}
		swath = math.Max(swath, p.SwathWidthAt(altitudeKm))
		snr = math.Max(snr, p.SignalToNoiseRatio)
		rate += p.DataRateMbps()
		if bands < p.BandCount() {
			bands = p.BandCount()
		}
		if bits < p.RadiometricResolution {
			bits = p.RadiometricResolution
		}
		for _, b := range p.SpectralBands {
			if b.Bandwidth > 0 {
				bandwidth = math.Min(bandwidth, b.Bandwidth)
			}
		}
		if f := p.ComputeFNumber(); f > 0 && (fnum == 0 || f < fnum) {
			fnum = f
		}
	}
	if !math.IsInf(gsd, 1) {
		set(MetricGroundSampleDistance, gsd, model.UnitMeter)
	}
	if swath > 0 {
		set(MetricSwathWidth, swath, model.UnitKilometer)
	}
	if bands > 0 {
		set(MetricSpectralBands, float64(bands), model.UnitCount)
	}
	if !math.IsInf(bandwidth, 1) {
		set(MetricSpectralBandwidth, bandwidth, model.UnitNanometer)
	}
	set(MetricRadiometricResolution, float64(bits), model.UnitBit)
	if snr > 0 {
		set(MetricSignalToNoise, snr, model.UnitNone)
	}
	if rate > 0 {
		set(MetricDataRate, rate, model.UnitMbps)
	}
	if fnum > 0 {
		set(MetricFNumber, fnum, model.UnitNone)
	}
}

// kpiMetricHints maps name fragments onto metrics for KPIs that do not name
// their metric.
var kpiMetricHints = []struct {
	fragment string
	metric   Metric
}{
	{"ground sample", MetricGroundSampleDistance},
	{"gsd", MetricGroundSampleDistance},
	{"spatial resolution", MetricGroundSampleDistance},
	{"revisit", MetricRevisitTime},
	{"swath", MetricSwathWidth},
	{"coverage", MetricCoveragePerDay},
	{"data rate", MetricDataRate},
	{"snr", MetricSignalToNoise},
	{"signal to noise", MetricSignalToNoise},
	{"signal-to-noise", MetricSignalToNoise},
	{"band", MetricSpectralBands},
	{"radiometric", MetricRadiometricResolution},
	{"mass", MetricTotalMass},
	{"power", MetricTotalPower},
	{"cost", MetricTotalCost},
	{"lifetime", MetricMissionLife},
	{"altitude", MetricAltitude},
}

// KPIMetric resolves the metric a KPI is measured by: its Metric field when
// set, otherwise the first name hint that matches.
func KPIMetric(k *KeyPerformanceIndicator) (Metric, bool) {
	if k.Metric != "" {
		return Metric(k.Metric), true
	}
	name := strings.ToLower(k.Name)
	for _, h := range kpiMetricHints {
		if strings.Contains(name, h.fragment) {
			return h.metric, true
		}
	}
	return "", false
}

// RequirementMetric resolves the metric that verifies a requirement. Types
// with no measurable counterpart (data latency, geolocation, other) report
// false.
func RequirementMetric(r *Requirement) (Metric, bool) {
	switch r.Type {
	case model.RequirementSpatialResolution:
		return MetricGroundSampleDistance, true
	case model.RequirementTemporalResolution:
		return MetricRevisitTime, true
	case model.RequirementSpectralResolution:
		if r.Value.Unit == model.UnitCount {
			return MetricSpectralBands, true
		}
		return MetricSpectralBandwidth, true
	case model.RequirementRadiometricResolution:
		return MetricRadiometricResolution, true
	case model.RequirementSwathWidth:
		return MetricSwathWidth, true
	case model.RequirementCoverageArea:
		if r.Value.Unit == model.UnitPercent {
			return MetricCoveragePerDay, true
		}
	case model.RequirementSignalToNoise:
		return MetricSignalToNoise, true
	case model.RequirementMissionLifetime:
		return MetricMissionLife, true
	}
	return "", false
}

// orbitalParameters maps the Parameter of an orbital constraint onto a metric.
var orbitalParameters = map[string]Metric{
	"altitude":        MetricAltitude,
	"semi_major_axis": MetricSemiMajorAxis,
	"eccentricity":    MetricEccentricity,
	"inclination":     MetricInclination,
	"period":          MetricOrbitalPeriod,
	"orbital_period":  MetricOrbitalPeriod,
	"mean_motion":     MetricMeanMotion,
	"lifetime":        MetricOrbitalLifetime,
	"revisit_time":    MetricRevisitTime,
}

// EvaluationResult is what Evaluator.Evaluate produced for one solution.
type EvaluationResult struct {
	Evaluation   *SolutionEvaluation
	Measurements Measurements
	Status       model.SolutionStatus
	// Unmeasured lists the KPI, requirement and constraint ids that no
	// measurement could be derived for.
	Unmeasured []string
}

// Evaluator derives measurements from a design solution and fills a fresh
// SolutionEvaluation with them.
type Evaluator struct {
	log     logging.Logger
	metrics EvaluationRecorder
}

// EvaluationRecorder receives one observation per completed evaluation.
type EvaluationRecorder interface {
	ObserveEvaluation(status model.SolutionStatus, d time.Duration)
}

// EvaluatorOption customises an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEvaluatorLogger sets the logger used for per-item diagnostics.
func WithEvaluatorLogger(l logging.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithEvaluationRecorder reports evaluation outcomes to r.
func WithEvaluationRecorder(r EvaluationRecorder) EvaluatorOption {
	return func(e *Evaluator) {
		e.metrics = r
	}
}

// NewEvaluator returns an Evaluator that logs nowhere unless configured.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{log: logging.Noop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const tracerName = "github.com/signalsfoundry/mission-designer/core"

// Evaluate starts a new evaluation of the solution on m, fills every KPI,
// requirement and constraint that can be measured, and resolves the
// solution status.
func (e *Evaluator) Evaluate(ctx context.Context, m *Mission, solutionID string) (*EvaluationResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Evaluator.Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("mission.id", m.ID),
		attribute.String("solution.id", solutionID),
	)

	sol := m.DesignSolution(solutionID)
	if sol == nil {
		err := fmt.Errorf("%w: %s", ErrSolutionNotFound, solutionID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ev, err := m.EvaluateSolution(solutionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	meas := MeasureSolution(sol)
	res := &EvaluationResult{Evaluation: ev, Measurements: meas}
	log := e.log.With(logging.String("mission_id", m.ID), logging.String("solution_id", solutionID))

	kpiValues := make(map[string]float64)
	for _, k := range m.AllKPIs() {
		metric, ok := KPIMetric(k)
		var v float64
		if ok {
			v, ok = meas.In(metric, k.Unit)
		}
		if !ok {
			res.Unmeasured = append(res.Unmeasured, k.ID)
			log.Debug(ctx, "kpi not measurable", logging.String("kpi_id", k.ID))
			continue
		}
		kpiValues[k.ID] = v
		ev.AddKPIEvaluation(EvaluateKPI(k, v, "measured "+string(metric)))
	}
	for _, o := range m.Objectives() {
		for _, q := range o.QuantitativeObjectives {
			for _, f := range q.FiguresOfMerit {
				ev.AddFOMEvaluation(EvaluateFigureOfMerit(f, kpiValues))
			}
		}
	}

	for _, r := range m.Requirements() {
		metric, ok := RequirementMetric(r)
		var v float64
		if ok {
			v, ok = meas.In(metric, r.Value.Unit)
		}
		if !ok {
			res.Unmeasured = append(res.Unmeasured, r.ID)
			log.Debug(ctx, "requirement not measurable", logging.String("requirement_id", r.ID))
			continue
		}
		ev.AddRequirementVerification(VerifyRequirement(r, v, "measured "+string(metric)))
	}

	for _, c := range m.Constraints() {
		cv, ok := e.verifyConstraint(sol, c, meas)
		if !ok {
			res.Unmeasured = append(res.Unmeasured, c.ID)
			log.Debug(ctx, "constraint not measurable", logging.String("constraint_id", c.ID))
			continue
		}
		ev.AddConstraintVerification(cv)
	}

	status, err := m.ResolveSolutionStatus(solutionID)
	if err != nil {
		return nil, err
	}
	res.Status = status
	span.SetAttributes(attribute.String("evaluation.status", string(status)))
	if e.metrics != nil {
		e.metrics.ObserveEvaluation(status, time.Since(start))
	}

	log.Info(ctx, "solution evaluated",
		logging.String("status", string(status)),
		logging.Float("requirement_success_rate", ev.RequirementSuccessRate()),
		logging.Float("constraint_success_rate", ev.ConstraintSuccessRate()),
		logging.Float("kpi_success_rate", ev.KPISuccessRate()),
		logging.Int("unmeasured", len(res.Unmeasured)),
	)
	return res, nil
}

// verifyConstraint checks mass, power and budget constraints with the
// spacecraft budget checks (always total <= limit) and orbital constraints
// through the constraint's own operator.
func (e *Evaluator) verifyConstraint(sol *DesignSolution, c *Constraint, meas Measurements) (ConstraintVerification, bool) {
	sc := sol.Spacecraft
	switch c.Type {
	case model.ConstraintMass, model.ConstraintPower, model.ConstraintBudget:
		if sc == nil {
			return ConstraintVerification{}, false
		}
		limit, ok := upperLimit(c.Value)
		if !ok {
			return ConstraintVerification{}, false
		}
		var (
			pass  bool
			total float64
			base  model.Unit
			note  string
		)
		switch c.Type {
		case model.ConstraintMass:
			base = model.UnitKilogram
			if limit, ok = model.Convert(limit, c.Value.Unit, base); !ok {
				return ConstraintVerification{}, false
			}
			pass, total = sc.VerifyMassConstraint(limit)
			note = fmt.Sprintf("total mass with %.0f%% margin", sc.DryMassMargin)
		case model.ConstraintPower:
			base = model.UnitWatt
			if limit, ok = model.Convert(limit, c.Value.Unit, base); !ok {
				return ConstraintVerification{}, false
			}
			mode := powerModeFor(c.Mode)
			pass, total = sc.VerifyPowerConstraint(limit, mode)
			note = fmt.Sprintf("%s power with %.0f%% margin", mode, sc.PowerMargin)
		default:
			base = c.Value.Unit
			pass, total = sc.VerifyCostConstraint(limit)
			note = fmt.Sprintf("total cost with %.0f%% margin", sc.CostMargin)
		}
		actual, _ := model.Convert(total, base, c.Value.Unit)
		limitIn, _ := model.Convert(limit, base, c.Value.Unit)
		return ConstraintVerification{
			ConstraintID:    c.ID,
			ConstraintTitle: c.Title,
			ConstraintValue: c.Value.String(),
			CalculatedValue: actual,
			Unit:            c.Value.Unit,
			Verified:        pass,
			Margin:          limitIn - actual,
			IsNegotiable:    c.IsNegotiable,
			Notes:           note,
		}, true

	case model.ConstraintOrbital:
		metric, ok := orbitalParameters[strings.ToLower(c.Parameter)]
		if !ok {
			return ConstraintVerification{}, false
		}
		v, ok := meas.In(metric, c.Value.Unit)
		if !ok {
			return ConstraintVerification{}, false
		}
		return VerifyConstraint(c, v, "measured "+string(metric)), true
	}
	return ConstraintVerification{}, false
}

// upperLimit is the operand of a single-sided constraint, or the upper bound
// of a between constraint.
func upperLimit(v model.NumericConstraintValue) (float64, bool) {
	if v.Operator == model.OpBetween {
		if v.MaxValue == nil {
			return 0, false
		}
		return *v.MaxValue, true
	}
	if v.Value == nil {
		return 0, false
	}
	return *v.Value, true
}

func powerModeFor(mode string) PowerMode {
	switch strings.ToLower(mode) {
	case "passive", "standby", "safe", "eclipse":
		return PowerPassive
	default:
		return PowerActive
	}
}
