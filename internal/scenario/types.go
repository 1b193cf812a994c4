package scenario

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/model"
)

// ConstraintValue is the wire form of model.NumericConstraintValue.
type ConstraintValue struct {
	Operator string   `json:"operator" yaml:"operator"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	Unit     string   `json:"unit" yaml:"unit"`
}

// Model validates the operator, unit and operand shape.
func (c ConstraintValue) Model() (model.NumericConstraintValue, error) {
	op, err := model.ParseComparisonOperator(c.Operator)
	if err != nil {
		return model.NumericConstraintValue{}, err
	}
	unit, err := model.ParseUnit(c.Unit)
	if err != nil {
		return model.NumericConstraintValue{}, err
	}
	return model.NewNumericConstraintValue(op, c.Value, c.MinValue, c.MaxValue, unit)
}

// FromConstraintValue converts v for output.
func FromConstraintValue(v model.NumericConstraintValue) ConstraintValue {
	return ConstraintValue{
		Operator: string(v.Operator),
		Value:    copyFloat(v.Value),
		MinValue: copyFloat(v.MinValue),
		MaxValue: copyFloat(v.MaxValue),
		Unit:     string(v.Unit),
	}
}

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Region is a named area of interest. A global region needs no points.
type Region struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	IsGlobal    bool    `json:"is_global,omitempty" yaml:"is_global,omitempty"`
	Points      []Point `json:"points,omitempty" yaml:"points,omitempty"`
}

// Model validates the polygon.
func (r *Region) Model() (*model.GeographicRegion, error) {
	if r == nil {
		return nil, nil
	}
	if r.IsGlobal && len(r.Points) == 0 {
		g := model.GlobalRegion()
		if r.Name != "" {
			g.Name = r.Name
		}
		if r.Description != "" {
			g.Description = r.Description
		}
		return g, nil
	}
	pts := make([]model.GeoPoint, 0, len(r.Points))
	for _, p := range r.Points {
		gp, err := model.NewGeoPoint(p.Latitude, p.Longitude)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", r.Name, err)
		}
		pts = append(pts, gp)
	}
	poly, err := model.NewGeoPolygon(pts...)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", r.Name, err)
	}
	return &model.GeographicRegion{Name: r.Name, Description: r.Description, Polygon: poly, IsGlobal: r.IsGlobal}, nil
}

// FromRegion converts g for output.
func FromRegion(g *model.GeographicRegion) *Region {
	if g == nil {
		return nil
	}
	r := &Region{Name: g.Name, Description: g.Description, IsGlobal: g.IsGlobal}
	for _, p := range g.Polygon.Points() {
		r.Points = append(r.Points, Point{Latitude: p.Latitude, Longitude: p.Longitude})
	}
	return r
}

// SpectralBand is one instrument band.
type SpectralBand struct {
	Name             string  `json:"name" yaml:"name"`
	CenterWavelength float64 `json:"center_wavelength" yaml:"center_wavelength"`
	Bandwidth        float64 `json:"bandwidth" yaml:"bandwidth"`
	Purpose          string  `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

func bandsToCore(in []SpectralBand) []core.SpectralBand {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.SpectralBand, 0, len(in))
	for _, b := range in {
		out = append(out, core.SpectralBand{Name: b.Name, CenterWavelength: b.CenterWavelength, Bandwidth: b.Bandwidth, Purpose: b.Purpose})
	}
	return out
}

func bandsFromCore(in []core.SpectralBand) []SpectralBand {
	if len(in) == 0 {
		return nil
	}
	out := make([]SpectralBand, 0, len(in))
	for _, b := range in {
		out = append(out, SpectralBand{Name: b.Name, CenterWavelength: b.CenterWavelength, Bandwidth: b.Bandwidth, Purpose: b.Purpose})
	}
	return out
}

// Payload carries the instrument fields of a payload_instrument component.
type Payload struct {
	FocalLength           float64        `json:"focal_length" yaml:"focal_length"`
	ApertureDiameter      float64        `json:"aperture_diameter" yaml:"aperture_diameter"`
	FNumber               float64        `json:"f_number,omitempty" yaml:"f_number,omitempty"`
	DetectorType          string         `json:"detector_type,omitempty" yaml:"detector_type,omitempty"`
	ArraySizeAlong        int            `json:"detector_array_size_along_track,omitempty" yaml:"detector_array_size_along_track,omitempty"`
	ArraySizeAcross       int            `json:"detector_array_size_across_track,omitempty" yaml:"detector_array_size_across_track,omitempty"`
	PixelPitch            float64        `json:"pixel_pitch" yaml:"pixel_pitch"`
	SpectralBands         []SpectralBand `json:"spectral_bands,omitempty" yaml:"spectral_bands,omitempty"`
	GroundSampleDistance  float64        `json:"ground_sample_distance,omitempty" yaml:"ground_sample_distance,omitempty"`
	SwathWidth            float64        `json:"swath_width,omitempty" yaml:"swath_width,omitempty"`
	SignalToNoiseRatio    float64        `json:"signal_to_noise_ratio,omitempty" yaml:"signal_to_noise_ratio,omitempty"`
	RadiometricResolution int            `json:"radiometric_resolution,omitempty" yaml:"radiometric_resolution,omitempty"`
	MTFNyquist            float64        `json:"mtf_nyquist,omitempty" yaml:"mtf_nyquist,omitempty"`
	IntegrationTime       float64        `json:"integration_time,omitempty" yaml:"integration_time,omitempty"`
	DutyCycle             float64        `json:"duty_cycle,omitempty" yaml:"duty_cycle,omitempty"`
	DataRate              float64        `json:"data_rate,omitempty" yaml:"data_rate,omitempty"`
	Quantization          int            `json:"quantization,omitempty" yaml:"quantization,omitempty"`
	OpticalTransmission   float64        `json:"optical_transmission,omitempty" yaml:"optical_transmission,omitempty"`
	QuantumEfficiency     float64        `json:"quantum_efficiency,omitempty" yaml:"quantum_efficiency,omitempty"`
	FieldOfView           float64        `json:"field_of_view,omitempty" yaml:"field_of_view,omitempty"`
	InstrumentTemperature float64        `json:"instrument_temperature,omitempty" yaml:"instrument_temperature,omitempty"`
	TemperatureStability  float64        `json:"temperature_stability,omitempty" yaml:"temperature_stability,omitempty"`
}

// Component is the wire form of a spacecraft component.
type Component struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	ComponentType string         `json:"component_type" yaml:"component_type"`
	ActivePower   float64        `json:"active_power" yaml:"active_power"`
	PassivePower  float64        `json:"passive_power" yaml:"passive_power"`
	Mass          float64        `json:"mass" yaml:"mass"`
	Cost          float64        `json:"cost" yaml:"cost"`
	Manufacturer  string         `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	TRL           int            `json:"technology_readiness_level,omitempty" yaml:"technology_readiness_level,omitempty"`
	Heritage      string         `json:"heritage,omitempty" yaml:"heritage,omitempty"`
	Properties    map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Notes         string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	PayloadData   *Payload       `json:"payload_data,omitempty" yaml:"payload_data,omitempty"`
}

// Record maps c onto the core constructor input.
func (c Component) Record() core.ComponentRecord {
	rec := core.ComponentRecord{
		ID:           c.ID,
		Name:         c.Name,
		Type:         model.ComponentType(c.ComponentType),
		ActivePower:  c.ActivePower,
		PassivePower: c.PassivePower,
		Mass:         c.Mass,
		Cost:         c.Cost,
		Manufacturer: c.Manufacturer,
		TRL:          c.TRL,
		Heritage:     c.Heritage,
		Properties:   c.Properties,
		Notes:        c.Notes,
	}
	if p := c.PayloadData; p != nil {
		rec.Payload = &core.PayloadRecord{
			FocalLength:           p.FocalLength,
			ApertureDiameter:      p.ApertureDiameter,
			FNumber:               p.FNumber,
			DetectorType:          p.DetectorType,
			ArraySizeAlong:        p.ArraySizeAlong,
			ArraySizeAcross:       p.ArraySizeAcross,
			PixelPitch:            p.PixelPitch,
			SpectralBands:         bandsToCore(p.SpectralBands),
			GroundSampleDist:      p.GroundSampleDistance,
			SwathWidth:            p.SwathWidth,
			SignalToNoiseRatio:    p.SignalToNoiseRatio,
			RadiometricResolution: p.RadiometricResolution,
			MTFNyquist:            p.MTFNyquist,
			IntegrationTime:       p.IntegrationTime,
			DutyCycle:             p.DutyCycle,
			DataRate:              p.DataRate,
			Quantization:          p.Quantization,
			OpticalTransmission:   p.OpticalTransmission,
			QuantumEfficiency:     p.QuantumEfficiency,
			FieldOfView:           p.FieldOfView,
			InstrumentTemperature: p.InstrumentTemperature,
			TemperatureStability:  p.TemperatureStability,
		}
	}
	return rec
}

// FromComponent converts c for output.
func FromComponent(c *core.Component) Component {
	out := Component{
		ID:            c.ID,
		Name:          c.Name,
		ComponentType: string(c.Type),
		ActivePower:   c.ActivePower,
		PassivePower:  c.PassivePower,
		Mass:          c.Mass,
		Cost:          c.Cost,
		Manufacturer:  c.Manufacturer,
		TRL:           c.TRL,
		Heritage:      c.Heritage,
		Properties:    c.Properties,
		Notes:         c.Notes,
	}
	if p := c.Payload; p != nil {
		out.PayloadData = &Payload{
			FocalLength:           p.FocalLength,
			ApertureDiameter:      p.ApertureDiameter,
			FNumber:               p.FNumber,
			DetectorType:          p.DetectorType,
			ArraySizeAlong:        p.ArraySizeAlong,
			ArraySizeAcross:       p.ArraySizeAcross,
			PixelPitch:            p.PixelPitch,
			SpectralBands:         bandsFromCore(p.SpectralBands),
			GroundSampleDistance:  p.GroundSampleDist,
			SwathWidth:            p.SwathWidth,
			SignalToNoiseRatio:    p.SignalToNoiseRatio,
			RadiometricResolution: p.RadiometricResolution,
			MTFNyquist:            p.MTFNyquist,
			IntegrationTime:       p.IntegrationTime,
			DutyCycle:             p.DutyCycle,
			DataRate:              p.DataRate,
			Quantization:          p.Quantization,
			OpticalTransmission:   p.OpticalTransmission,
			QuantumEfficiency:     p.QuantumEfficiency,
			FieldOfView:           p.FieldOfView,
			InstrumentTemperature: p.InstrumentTemperature,
			TemperatureStability:  p.TemperatureStability,
		}
	}
	return out
}

// Spacecraft is the wire form of a spacecraft. Nil margins select defaults.
type Spacecraft struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Components    []Component `json:"components" yaml:"components"`
	DryMassMargin *float64    `json:"dry_mass_margin,omitempty" yaml:"dry_mass_margin,omitempty"`
	PowerMargin   *float64    `json:"power_margin,omitempty" yaml:"power_margin,omitempty"`
	CostMargin    *float64    `json:"cost_margin,omitempty" yaml:"cost_margin,omitempty"`
	DesignLife    *float64    `json:"design_life,omitempty" yaml:"design_life,omitempty"`
}

// Build constructs the spacecraft.
func (s Spacecraft) Build() (*core.Spacecraft, error) {
	rec := core.SpacecraftRecord{
		ID:            s.ID,
		Name:          s.Name,
		DryMassMargin: s.DryMassMargin,
		PowerMargin:   s.PowerMargin,
		CostMargin:    s.CostMargin,
		DesignLife:    s.DesignLife,
	}
	for _, c := range s.Components {
		rec.Components = append(rec.Components, c.Record())
	}
	return core.NewSpacecraft(rec)
}

// FromSpacecraft converts s for output.
func FromSpacecraft(s *core.Spacecraft) Spacecraft {
	out := Spacecraft{
		ID:            s.ID,
		Name:          s.Name,
		Components:    make([]Component, 0, len(s.Components)),
		DryMassMargin: core.Float(s.DryMassMargin),
		PowerMargin:   core.Float(s.PowerMargin),
		CostMargin:    core.Float(s.CostMargin),
		DesignLife:    core.Float(s.DesignLife),
	}
	for _, c := range s.Components {
		out.Components = append(out.Components, FromComponent(c))
	}
	return out
}

// Orbit is the wire form of an orbit. A circular orbit may give only
// altitude; the semi-major axis is then derived from it. Derived fields are
// output only.
type Orbit struct {
	ID                     string         `json:"id" yaml:"id"`
	Name                   string         `json:"name" yaml:"name"`
	Label                  string         `json:"label" yaml:"label"`
	SemiMajorAxis          float64        `json:"semi_major_axis" yaml:"semi_major_axis"`
	Eccentricity           float64        `json:"eccentricity" yaml:"eccentricity"`
	Inclination            float64        `json:"inclination" yaml:"inclination"`
	RAAN                   float64        `json:"raan" yaml:"raan"`
	ArgumentOfPerigee      float64        `json:"argument_of_perigee" yaml:"argument_of_perigee"`
	TrueAnomaly            float64        `json:"true_anomaly" yaml:"true_anomaly"`
	Epoch                  *time.Time     `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Altitude               *float64       `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	PerigeeAltitude        *float64       `json:"perigee_altitude,omitempty" yaml:"perigee_altitude,omitempty"`
	ApogeeAltitude         *float64       `json:"apogee_altitude,omitempty" yaml:"apogee_altitude,omitempty"`
	OrbitalPeriod          float64        `json:"orbital_period,omitempty" yaml:"orbital_period,omitempty"`
	MeanMotion             float64        `json:"mean_motion,omitempty" yaml:"mean_motion,omitempty"`
	LocalTimeAscendingNode string         `json:"local_time_ascending_node,omitempty" yaml:"local_time_ascending_node,omitempty"`
	IsSunSynchronous       bool           `json:"is_sun_synchronous" yaml:"is_sun_synchronous"`
	RevisitTimeGlobal      *float64       `json:"revisit_time_global,omitempty" yaml:"revisit_time_global,omitempty"`
	CoveragePerDay         *float64       `json:"coverage_per_day,omitempty" yaml:"coverage_per_day,omitempty"`
	GroundTrackRepeatCycle *int           `json:"ground_track_repeat_cycle,omitempty" yaml:"ground_track_repeat_cycle,omitempty"`
	OrbitalLifetime        *float64       `json:"orbital_lifetime,omitempty" yaml:"orbital_lifetime,omitempty"`
	DeltaVDeorbit          *float64       `json:"delta_v_deorbit,omitempty" yaml:"delta_v_deorbit,omitempty"`
	Properties             map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Notes                  string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Build constructs the orbit.
func (o Orbit) Build() (*core.Orbit, error) {
	sma := o.SemiMajorAxis
	if sma == 0 && o.Altitude != nil {
		sma = core.EarthRadiusKm + *o.Altitude
	}
	if sma <= 0 {
		return nil, fmt.Errorf("%w: orbit %s needs semi_major_axis or altitude", core.ErrInvalidRecord, o.ID)
	}
	rec := core.OrbitRecord{
		ID:                     o.ID,
		Name:                   o.Name,
		Label:                  o.Label,
		SemiMajorAxis:          sma,
		Eccentricity:           o.Eccentricity,
		Inclination:            o.Inclination,
		RAAN:                   o.RAAN,
		ArgumentOfPerigee:      o.ArgumentOfPerigee,
		TrueAnomaly:            o.TrueAnomaly,
		Altitude:               o.Altitude,
		LocalTimeAscendingNode: o.LocalTimeAscendingNode,
		IsSunSynchronous:       o.IsSunSynchronous,
		RevisitTimeGlobal:      o.RevisitTimeGlobal,
		CoveragePerDay:         o.CoveragePerDay,
		GroundTrackRepeatCycle: o.GroundTrackRepeatCycle,
		OrbitalLifetime:        o.OrbitalLifetime,
		DeltaVDeorbit:          o.DeltaVDeorbit,
		Properties:             o.Properties,
		Notes:                  o.Notes,
	}
	if o.Epoch != nil {
		rec.Epoch = *o.Epoch
	}
	return core.NewOrbit(rec)
}

// FromOrbit converts o for output, including the derived parameters.
func FromOrbit(o *core.Orbit) Orbit {
	out := Orbit{
		ID:                     o.ID,
		Name:                   o.Name,
		Label:                  o.Label,
		SemiMajorAxis:          o.SemiMajorAxis,
		Eccentricity:           o.Eccentricity,
		Inclination:            o.Inclination,
		RAAN:                   o.RAAN,
		ArgumentOfPerigee:      o.ArgumentOfPerigee,
		TrueAnomaly:            o.TrueAnomaly,
		Altitude:               copyFloat(o.Altitude),
		PerigeeAltitude:        copyFloat(o.PerigeeAltitude),
		ApogeeAltitude:         copyFloat(o.ApogeeAltitude),
		OrbitalPeriod:          o.OrbitalPeriod,
		MeanMotion:             o.MeanMotion,
		LocalTimeAscendingNode: o.LocalTimeAscendingNode,
		IsSunSynchronous:       o.IsSunSynchronous,
		RevisitTimeGlobal:      copyFloat(o.RevisitTimeGlobal),
		CoveragePerDay:         copyFloat(o.CoveragePerDay),
		OrbitalLifetime:        copyFloat(o.OrbitalLifetime),
		DeltaVDeorbit:          copyFloat(o.DeltaVDeorbit),
		Properties:             o.Properties,
		Notes:                  o.Notes,
	}
	if !o.Epoch.IsZero() {
		epoch := o.Epoch
		out.Epoch = &epoch
	}
	if o.GroundTrackRepeatCycle != nil {
		v := *o.GroundTrackRepeatCycle
		out.GroundTrackRepeatCycle = &v
	}
	return out
}

// Threshold is one KPI tier.
type Threshold struct {
	Level       string  `json:"level" yaml:"level"`
	Operator    string  `json:"operator" yaml:"operator"`
	Value       float64 `json:"value" yaml:"value"`
	Unit        string  `json:"unit" yaml:"unit"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// KPI is the wire form of a key performance indicator. Status and
// current_value are output only.
type KPI struct {
	ID                string      `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	Description       string      `json:"description,omitempty" yaml:"description,omitempty"`
	Unit              string      `json:"unit" yaml:"unit"`
	Metric            string      `json:"metric,omitempty" yaml:"metric,omitempty"`
	Thresholds        []Threshold `json:"thresholds" yaml:"thresholds"`
	MeasurementMethod string      `json:"measurement_method,omitempty" yaml:"measurement_method,omitempty"`
	DataSources       []string    `json:"data_sources,omitempty" yaml:"data_sources,omitempty"`
	Aggregation       string      `json:"aggregation_method,omitempty" yaml:"aggregation_method,omitempty"`
	Weight            *float64    `json:"weight,omitempty" yaml:"weight,omitempty"`
	GeographicRegion  *Region     `json:"geographic_region,omitempty" yaml:"geographic_region,omitempty"`
	CurrentValue      *float64    `json:"current_value,omitempty" yaml:"current_value,omitempty"`
	Status            string      `json:"status,omitempty" yaml:"status,omitempty"`
	Notes             string      `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Build constructs the KPI and its tiers.
func (k KPI) Build() (*core.KeyPerformanceIndicator, error) {
	unit, err := model.ParseUnit(k.Unit)
	if err != nil {
		return nil, fmt.Errorf("kpi %s: %w", k.ID, err)
	}
	region, err := k.GeographicRegion.Model()
	if err != nil {
		return nil, fmt.Errorf("kpi %s: %w", k.ID, err)
	}
	rec := core.KPIRecord{
		ID:                k.ID,
		Name:              k.Name,
		Description:       k.Description,
		Unit:              unit,
		MeasurementMethod: k.MeasurementMethod,
		Metric:            k.Metric,
		DataSources:       k.DataSources,
		Aggregation:       model.AggregationMethod(k.Aggregation),
		Weight:            k.Weight,
		Region:            region,
		Notes:             k.Notes,
	}
	for _, t := range k.Thresholds {
		op, err := model.ParseComparisonOperator(t.Operator)
		if err != nil {
			return nil, fmt.Errorf("kpi %s: %w", k.ID, err)
		}
		tu := unit
		if t.Unit != "" {
			if tu, err = model.ParseUnit(t.Unit); err != nil {
				return nil, fmt.Errorf("kpi %s: %w", k.ID, err)
			}
		}
		th, err := core.NewPerformanceThreshold(t.Level, op, t.Value, tu, t.Description)
		if err != nil {
			return nil, fmt.Errorf("kpi %s: %w", k.ID, err)
		}
		rec.Thresholds = append(rec.Thresholds, th)
	}
	return core.NewKPI(rec)
}

// FromKPI converts k for output.
func FromKPI(k *core.KeyPerformanceIndicator) KPI {
	out := KPI{
		ID:                k.ID,
		Name:              k.Name,
		Description:       k.Description,
		Unit:              string(k.Unit),
		Metric:            k.Metric,
		Thresholds:        make([]Threshold, 0, len(k.Thresholds)),
		MeasurementMethod: k.MeasurementMethod,
		DataSources:       k.DataSources,
		Aggregation:       string(k.Aggregation),
		Weight:            core.Float(k.Weight),
		GeographicRegion:  FromRegion(k.Region),
		CurrentValue:      copyFloat(k.CurrentValue),
		Status:            string(k.Status),
		Notes:             k.Notes,
	}
	for _, t := range k.Thresholds {
		out.Thresholds = append(out.Thresholds, Threshold{
			Level:       string(t.Level),
			Operator:    string(t.Operator),
			Value:       t.Value,
			Unit:        string(t.Unit),
			Description: t.Description,
		})
	}
	return out
}

// FigureOfMerit combines KPIs into one score.
type FigureOfMerit struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	KPIs              []string `json:"kpis" yaml:"kpis"`
	CalculationMethod string   `json:"calculation_method,omitempty" yaml:"calculation_method,omitempty"`
	Unit              string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Weight            *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	TargetValue       *float64 `json:"target_value,omitempty" yaml:"target_value,omitempty"`
	CurrentValue      *float64 `json:"current_value,omitempty" yaml:"current_value,omitempty"`
	Notes             string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// QuantitativeObjective groups KPIs and figures of merit under an objective.
type QuantitativeObjective struct {
	ID                  string          `json:"id" yaml:"id"`
	Title               string          `json:"title" yaml:"title"`
	Description         string          `json:"description,omitempty" yaml:"description,omitempty"`
	KPIs                []KPI           `json:"kpis,omitempty" yaml:"kpis,omitempty"`
	FiguresOfMerit      []FigureOfMerit `json:"figures_of_merit,omitempty" yaml:"figures_of_merit,omitempty"`
	SuccessCriteria     string          `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
	MinimumThreshold    string          `json:"minimum_threshold,omitempty" yaml:"minimum_threshold,omitempty"`
	DerivedRequirements []string        `json:"derived_requirements,omitempty" yaml:"derived_requirements,omitempty"`
	Priority            string          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Notes               string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Objective is the wire form of a mission objective.
type Objective struct {
	ID                     string                  `json:"id" yaml:"id"`
	Title                  string                  `json:"title" yaml:"title"`
	Description            string                  `json:"description" yaml:"description"`
	Priority               string                  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Category               string                  `json:"category,omitempty" yaml:"category,omitempty"`
	Stakeholders           []string                `json:"stakeholders,omitempty" yaml:"stakeholders,omitempty"`
	QuantitativeObjectives []QuantitativeObjective `json:"quantitative_objectives,omitempty" yaml:"quantitative_objectives,omitempty"`
	Status                 string                  `json:"status,omitempty" yaml:"status,omitempty"`
	Notes                  string                  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Build constructs the objective with its quantitative objectives.
func (o Objective) Build() (*core.MissionObjective, error) {
	obj, err := core.NewMissionObjective(o.ID, o.Title, o.Description, model.Priority(o.Priority))
	if err != nil {
		return nil, err
	}
	obj.Category = o.Category
	obj.Stakeholders = append([]string(nil), o.Stakeholders...)
	obj.Notes = o.Notes
	for _, q := range o.QuantitativeObjectives {
		qo := &core.QuantitativeObjective{
			ID:                  q.ID,
			Title:               q.Title,
			Description:         q.Description,
			SuccessCriteria:     q.SuccessCriteria,
			MinimumThreshold:    q.MinimumThreshold,
			DerivedRequirements: append([]string(nil), q.DerivedRequirements...),
			Priority:            model.Priority(q.Priority),
			Notes:               q.Notes,
		}
		if qo.Priority == "" {
			qo.Priority = model.PriorityMedium
		} else if _, err := model.ParsePriority(q.Priority); err != nil {
			return nil, fmt.Errorf("objective %s: %w", o.ID, err)
		}
		for _, k := range q.KPIs {
			kpi, err := k.Build()
			if err != nil {
				return nil, fmt.Errorf("objective %s: %w", o.ID, err)
			}
			qo.AddKPI(kpi)
		}
		for _, f := range q.FiguresOfMerit {
			unit, err := model.ParseUnit(f.Unit)
			if err != nil {
				return nil, fmt.Errorf("objective %s: figure of merit %s: %w", o.ID, f.ID, err)
			}
			weight := 1.0
			if f.Weight != nil {
				weight = *f.Weight
			}
			qo.AddFigureOfMerit(&core.FigureOfMerit{
				ID:                f.ID,
				Name:              f.Name,
				Description:       f.Description,
				KPIs:              append([]string(nil), f.KPIs...),
				CalculationMethod: f.CalculationMethod,
				Unit:              unit,
				Weight:            weight,
				TargetValue:       copyFloat(f.TargetValue),
				Notes:             f.Notes,
			})
		}
		obj.AddQuantitativeObjective(qo)
	}
	return obj, nil
}

// FromObjective converts o for output, including its aggregated status.
func FromObjective(o *core.MissionObjective) Objective {
	out := Objective{
		ID:           o.ID,
		Title:        o.Title,
		Description:  o.Description,
		Priority:     string(o.Priority),
		Category:     o.Category,
		Stakeholders: o.Stakeholders,
		Status:       string(o.EvaluateObjective()),
		Notes:        o.Notes,
	}
	for _, q := range o.QuantitativeObjectives {
		wq := QuantitativeObjective{
			ID:                  q.ID,
			Title:               q.Title,
			Description:         q.Description,
			SuccessCriteria:     q.SuccessCriteria,
			MinimumThreshold:    q.MinimumThreshold,
			DerivedRequirements: q.DerivedRequirements,
			Priority:            string(q.Priority),
			Notes:               q.Notes,
		}
		for _, k := range q.KPIs {
			wq.KPIs = append(wq.KPIs, FromKPI(k))
		}
		for _, f := range q.FiguresOfMerit {
			wq.FiguresOfMerit = append(wq.FiguresOfMerit, FigureOfMerit{
				ID:                f.ID,
				Name:              f.Name,
				Description:       f.Description,
				KPIs:              f.KPIs,
				CalculationMethod: f.CalculationMethod,
				Unit:              string(f.Unit),
				Weight:            core.Float(f.Weight),
				TargetValue:       copyFloat(f.TargetValue),
				CurrentValue:      copyFloat(f.CurrentValue),
				Notes:             f.Notes,
			})
		}
		out.QuantitativeObjectives = append(out.QuantitativeObjectives, wq)
	}
	return out
}

// Requirement is the wire form of a requirement.
type Requirement struct {
	ID                    string          `json:"id" yaml:"id"`
	Title                 string          `json:"title" yaml:"title"`
	RequirementType       string          `json:"requirement_type" yaml:"requirement_type"`
	Constraint            ConstraintValue `json:"constraint" yaml:"constraint"`
	Priority              string          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Rationale             string          `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	DerivedFromObjectives []string        `json:"derived_from_objectives,omitempty" yaml:"derived_from_objectives,omitempty"`
	VerificationMethod    string          `json:"verification_method,omitempty" yaml:"verification_method,omitempty"`
	Notes                 string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	GeographicRegion      *Region         `json:"geographic_region,omitempty" yaml:"geographic_region,omitempty"`
	CoveragePercentage    *float64        `json:"coverage_percentage,omitempty" yaml:"coverage_percentage,omitempty"`
	SpectralBands         []SpectralBand  `json:"spectral_bands,omitempty" yaml:"spectral_bands,omitempty"`
}

// Build constructs the requirement.
func (r Requirement) Build() (*core.Requirement, error) {
	v, err := r.Constraint.Model()
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", r.ID, err)
	}
	region, err := r.GeographicRegion.Model()
	if err != nil {
		return nil, fmt.Errorf("requirement %s: %w", r.ID, err)
	}
	return core.NewRequirement(core.RequirementRecord{
		ID:                    r.ID,
		Title:                 r.Title,
		Type:                  model.RequirementType(r.RequirementType),
		Value:                 v,
		Priority:              model.Priority(r.Priority),
		Rationale:             r.Rationale,
		DerivedFromObjectives: r.DerivedFromObjectives,
		VerificationMethod:    r.VerificationMethod,
		Notes:                 r.Notes,
		Region:                region,
		CoveragePercentage:    r.CoveragePercentage,
		SpectralBands:         bandsToCore(r.SpectralBands),
	})
}

// FromRequirement converts r for output.
func FromRequirement(r *core.Requirement) Requirement {
	return Requirement{
		ID:                    r.ID,
		Title:                 r.Title,
		RequirementType:       string(r.Type),
		Constraint:            FromConstraintValue(r.Value),
		Priority:              string(r.Priority),
		Rationale:             r.Rationale,
		DerivedFromObjectives: r.DerivedFromObjectives,
		VerificationMethod:    r.VerificationMethod,
		Notes:                 r.Notes,
		GeographicRegion:      FromRegion(r.Region),
		CoveragePercentage:    copyFloat(r.CoveragePercentage),
		SpectralBands:         bandsFromCore(r.SpectralBands),
	}
}

// Constraint is the wire form of a constraint.
type Constraint struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	ConstraintType string          `json:"constraint_type" yaml:"constraint_type"`
	Constraint     ConstraintValue `json:"constraint" yaml:"constraint"`
	Priority       string          `json:"priority,omitempty" yaml:"priority,omitempty"`
	Rationale      string          `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	IsNegotiable   bool            `json:"is_negotiable" yaml:"is_negotiable"`
	Impacts        []string        `json:"impacts,omitempty" yaml:"impacts,omitempty"`
	Notes          string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Phase          string          `json:"phase,omitempty" yaml:"phase,omitempty"`
	Parameter      string          `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Component      string          `json:"component,omitempty" yaml:"component,omitempty"`
	Mode           string          `json:"mode,omitempty" yaml:"mode,omitempty"`
	Milestone      string          `json:"milestone,omitempty" yaml:"milestone,omitempty"`
}

// Build constructs the constraint.
func (c Constraint) Build() (*core.Constraint, error) {
	v, err := c.Constraint.Model()
	if err != nil {
		return nil, fmt.Errorf("constraint %s: %w", c.ID, err)
	}
	return core.NewConstraint(core.ConstraintRecord{
		ID:           c.ID,
		Title:        c.Title,
		Type:         model.ConstraintType(c.ConstraintType),
		Value:        v,
		Priority:     model.Priority(c.Priority),
		Rationale:    c.Rationale,
		IsNegotiable: c.IsNegotiable,
		Impacts:      c.Impacts,
		Notes:        c.Notes,
		Phase:        c.Phase,
		Parameter:    c.Parameter,
		Component:    c.Component,
		Mode:         c.Mode,
		Milestone:    c.Milestone,
	})
}

// FromConstraint converts c for output.
func FromConstraint(c *core.Constraint) Constraint {
	return Constraint{
		ID:             c.ID,
		Title:          c.Title,
		ConstraintType: string(c.Type),
		Constraint:     FromConstraintValue(c.Value),
		Priority:       string(c.Priority),
		Rationale:      c.Rationale,
		IsNegotiable:   c.IsNegotiable,
		Impacts:        c.Impacts,
		Notes:          c.Notes,
		Phase:          c.Phase,
		Parameter:      c.Parameter,
		Component:      c.Component,
		Mode:           c.Mode,
		Milestone:      c.Milestone,
	}
}

// Solution is the wire form of a design solution.
type Solution struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Label      string      `json:"label" yaml:"label"`
	Status     string      `json:"status,omitempty" yaml:"status,omitempty"`
	Spacecraft *Spacecraft `json:"spacecraft,omitempty" yaml:"spacecraft,omitempty"`
	Orbit      *Orbit      `json:"orbit,omitempty" yaml:"orbit,omitempty"`
	Notes      string      `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Build constructs the solution. An empty status means proposed.
func (s Solution) Build() (*core.DesignSolution, error) {
	if s.Spacecraft == nil || s.Orbit == nil {
		return nil, fmt.Errorf("%w: solution %s needs a spacecraft and an orbit", core.ErrInvalidRecord, s.ID)
	}
	sc, err := s.Spacecraft.Build()
	if err != nil {
		return nil, fmt.Errorf("solution %s: %w", s.ID, err)
	}
	orb, err := s.Orbit.Build()
	if err != nil {
		return nil, fmt.Errorf("solution %s: %w", s.ID, err)
	}
	sol, err := core.NewDesignSolution(s.ID, s.Name, s.Label, sc, orb)
	if err != nil {
		return nil, err
	}
	if s.Status != "" {
		status, err := model.ParseSolutionStatus(s.Status)
		if err != nil {
			return nil, fmt.Errorf("solution %s: %w", s.ID, err)
		}
		sol.Status = status
	}
	sol.Notes = s.Notes
	return sol, nil
}

// FromSolution converts s for output.
func FromSolution(s *core.DesignSolution) Solution {
	out := Solution{ID: s.ID, Name: s.Name, Label: s.Label, Status: string(s.Status), Notes: s.Notes}
	if s.Spacecraft != nil {
		sc := FromSpacecraft(s.Spacecraft)
		out.Spacecraft = &sc
	}
	if s.Orbit != nil {
		o := FromOrbit(s.Orbit)
		out.Orbit = &o
	}
	return out
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
