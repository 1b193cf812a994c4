package core

import (
	"fmt"

	"github.com/signalsfoundry/mission-designer/model"
)

// DefaultTRL is the technology readiness level assumed when none is given.
const DefaultTRL = 9

// SpectralBand is one band of a multispectral or hyperspectral instrument.
type SpectralBand struct {
	Name             string
	CenterWavelength float64 // nm
	Bandwidth        float64 // nm
	Purpose          string
}

func (b SpectralBand) String() string {
	return fmt.Sprintf("%s: %gnm ±%gnm", b.Name, b.CenterWavelength, b.Bandwidth/2)
}

// PayloadRecord carries the optical and detector parameters of a payload
// instrument. Zero values select the documented defaults.
type PayloadRecord struct {
	FocalLength      float64 // m
	ApertureDiameter float64 // m
	FNumber          float64

	DetectorType       string
	ArraySizeAlong     int     // px
	ArraySizeAcross    int     // px
	PixelPitch         float64 // µm
	SpectralBands      []SpectralBand
	GroundSampleDist   float64 // m
	SwathWidth         float64 // km
	SignalToNoiseRatio float64

	RadiometricResolution int // bits, default 12
	MTFNyquist            float64
	IntegrationTime       float64 // ms
	DutyCycle             float64 // %
	DataRate              float64 // Mbps
	Quantization          int     // bits per pixel, default 12

	OpticalTransmission   float64
	QuantumEfficiency     float64
	FieldOfView           float64 // deg
	InstrumentTemperature float64 // K, default 293
	TemperatureStability  float64 // K
}

// PayloadInstrument is the payload variant of a Component. Its derived
// quantities are pure functions of instrument geometry and altitude.
type PayloadInstrument struct {
	FocalLength      float64
	ApertureDiameter float64
	FNumber          float64

	DetectorType       string
	ArraySizeAlong     int
	ArraySizeAcross    int
	PixelPitch         float64
	SpectralBands      []SpectralBand
	GroundSampleDist   float64
	SwathWidth         float64
	SignalToNoiseRatio float64

	RadiometricResolution int
	MTFNyquist            float64
	IntegrationTime       float64
	DutyCycle             float64
	DataRate              float64
	Quantization          int

	OpticalTransmission   float64
	QuantumEfficiency     float64
	FieldOfView           float64
	InstrumentTemperature float64
	TemperatureStability  float64
}

func newPayloadInstrument(rec PayloadRecord) *PayloadInstrument {
	p := &PayloadInstrument{
		FocalLength:           rec.FocalLength,
		ApertureDiameter:      rec.ApertureDiameter,
		FNumber:               rec.FNumber,
		DetectorType:          rec.DetectorType,
		ArraySizeAlong:        rec.ArraySizeAlong,
		ArraySizeAcross:       rec.ArraySizeAcross,
		PixelPitch:            rec.PixelPitch,
		SpectralBands:         append([]SpectralBand(nil), rec.SpectralBands...),
		GroundSampleDist:      rec.GroundSampleDist,
		SwathWidth:            rec.SwathWidth,
		SignalToNoiseRatio:    rec.SignalToNoiseRatio,
		RadiometricResolution: rec.RadiometricResolution,
		MTFNyquist:            rec.MTFNyquist,
		IntegrationTime:       rec.IntegrationTime,
		DutyCycle:             rec.DutyCycle,
		DataRate:              rec.DataRate,
		Quantization:          rec.Quantization,
		OpticalTransmission:   rec.OpticalTransmission,
		QuantumEfficiency:     rec.QuantumEfficiency,
		FieldOfView:           rec.FieldOfView,
		InstrumentTemperature: rec.InstrumentTemperature,
		TemperatureStability:  rec.TemperatureStability,
	}
	if p.DetectorType == "" {
		p.DetectorType = "CCD"
	}
	if p.RadiometricResolution == 0 {
		p.RadiometricResolution = 12
	}
	if p.Quantization == 0 {
		p.Quantization = 12
	}
	if p.InstrumentTemperature == 0 {
		p.InstrumentTemperature = 293
	}
	return p
}

// BandCount is the number of spectral bands.
func (p *PayloadInstrument) BandCount() int { return len(p.SpectralBands) }

// AddSpectralBand appends a band.
func (p *PayloadInstrument) AddSpectralBand(b SpectralBand) {
	p.SpectralBands = append(p.SpectralBands, b)
}

// ComputeFNumber returns focal length over aperture, or the stored value
// when the aperture is not positive.
func (p *PayloadInstrument) ComputeFNumber() float64 {
	if p.ApertureDiameter > 0 {
		return p.FocalLength / p.ApertureDiameter
	}
	return p.FNumber
}

// GroundSampleDistance is the nadir GSD in metres at altitudeKm. It falls
// back to the stored value when focal length or pixel pitch is unset.
func (p *PayloadInstrument) GroundSampleDistance(altitudeKm float64) float64 {
	if p.FocalLength > 0 && p.PixelPitch > 0 {
		altitudeM := altitudeKm * 1000
		return altitudeM * p.PixelPitch * 1e-6 / p.FocalLength
	}
	return p.GroundSampleDist
}

// SwathWidthAt is the cross-track swath in km at altitudeKm.
func (p *PayloadInstrument) SwathWidthAt(altitudeKm float64) float64 {
	if p.FocalLength > 0 && p.ArraySizeAcross > 0 && p.PixelPitch > 0 {
		altitudeM := altitudeKm * 1000
		arrayWidthM := float64(p.ArraySizeAcross) * p.PixelPitch * 1e-6
		return altitudeM * arrayWidthM / p.FocalLength / 1000
	}
	return p.SwathWidth
}

// DataRateMbps is the raw imaging data rate.
func (p *PayloadInstrument) DataRateMbps() float64 {
	if p.ArraySizeAcross > 0 && p.IntegrationTime > 0 {
		pixelsPerSecond := float64(p.ArraySizeAcross*p.BandCount()) / (p.IntegrationTime / 1000)
		return pixelsPerSecond * float64(p.Quantization) / 1e6
	}
	return p.DataRate
}

// ApplyAltitude stores GSD, swath, f-number and data rate derived for the
// given altitude on the instrument.
func (p *PayloadInstrument) ApplyAltitude(altitudeKm float64) {
	p.GroundSampleDist = p.GroundSampleDistance(altitudeKm)
	p.SwathWidth = p.SwathWidthAt(altitudeKm)
	p.FNumber = p.ComputeFNumber()
	p.DataRate = p.DataRateMbps()
}

func (p *PayloadInstrument) clone() *PayloadInstrument {
	if p == nil {
		return nil
	}
	cp := *p
	cp.SpectralBands = append([]SpectralBand(nil), p.SpectralBands...)
	return &cp
}

// ComponentRecord is the plain input used to build a Component. Payload is
// only read when Type is payload_instrument.
type ComponentRecord struct {
	ID           string
	Name         string
	Type         model.ComponentType
	ActivePower  float64 // W
	PassivePower float64 // W
	Mass         float64 // kg
	Cost         float64
	Manufacturer string
	TRL          int
	Heritage     string
	Properties   map[string]any
	Notes        string

	Payload *PayloadRecord
}

// Component is a spacecraft part. The Type tag selects the variant; the
// payload variant carries its instrument parameters in Payload.
type Component struct {
	ID           string
	Name         string
	Type         model.ComponentType
	ActivePower  float64
	PassivePower float64
	Mass         float64
	Cost         float64
	Manufacturer string
	TRL          int
	Heritage     string
	Properties   map[string]any
	Notes        string

	Payload *PayloadInstrument
}

// variantDefaults lists the properties each subsystem variant starts with.
var variantDefaults = map[model.ComponentType]map[string]any{
	model.ComponentEPS: {
		"solar_array_area":      0.0,
		"solar_cell_efficiency": 0.0,
		"battery_capacity":      0.0,
		"battery_dod":           0.0,
		"power_generation_bol":  0.0,
		"power_generation_eol":  0.0,
	},
	model.ComponentADCS: {
		"pointing_accuracy":     0.0,
		"pointing_stability":    0.0,
		"slew_rate":             0.0,
		"momentum_storage":      0.0,
		"reaction_wheel_count":  4,
		"star_tracker_accuracy": 0.0,
	},
	model.ComponentCommunications: {
		"downlink_data_rate": 0.0,
		"uplink_data_rate":   0.0,
		"frequency_band":     "",
		"antenna_gain":       0.0,
		"transmitter_power":  0.0,
		"onboard_storage":    0.0,
	},
	model.ComponentPlatformAvionics: avionicsDefaults(),
	model.ComponentPayloadAvionics:  avionicsDefaults(),
}

func avionicsDefaults() map[string]any {
	return map[string]any{
		"processor_speed":     0.0,
		"memory_capacity":     0.0,
		"storage_capacity":    0.0,
		"radiation_tolerance": "",
	}
}

// NewComponent validates rec and applies the variant defaults.
func NewComponent(rec ComponentRecord) (*Component, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: component id is required", ErrInvalidComponent)
	}
	if _, err := model.ParseComponentType(string(rec.Type)); err != nil {
		return nil, fmt.Errorf("component %s: %w", rec.ID, err)
	}
	trl := rec.TRL
	if trl == 0 {
		trl = DefaultTRL
	}
	if trl < 1 || trl > 9 {
		return nil, fmt.Errorf("%w: component %s TRL %d outside 1..9", ErrInvalidComponent, rec.ID, trl)
	}
	if rec.Mass < 0 || rec.ActivePower < 0 || rec.PassivePower < 0 || rec.Cost < 0 {
		return nil, fmt.Errorf("%w: component %s has negative mass, power or cost", ErrInvalidComponent, rec.ID)
	}

	c := &Component{
		ID:           rec.ID,
		Name:         rec.Name,
		Type:         rec.Type,
		ActivePower:  rec.ActivePower,
		PassivePower: rec.PassivePower,
		Mass:         rec.Mass,
		Cost:         rec.Cost,
		Manufacturer: rec.Manufacturer,
		TRL:          trl,
		Heritage:     rec.Heritage,
		Properties:   copyProps(rec.Properties),
		Notes:        rec.Notes,
	}
	if c.Properties == nil {
		c.Properties = make(map[string]any)
	}
	for k, v := range variantDefaults[c.Type] {
		if _, ok := c.Properties[k]; !ok {
			c.Properties[k] = v
		}
	}

	if c.Type == model.ComponentPayloadInstrument {
		payload := PayloadRecord{}
		if rec.Payload != nil {
			payload = *rec.Payload
		}
		c.Payload = newPayloadInstrument(payload)
	}
	return c, nil
}

// NewAvionicsComponent builds an avionics part; any type other than the two
// avionics variants folds to platform avionics.
func NewAvionicsComponent(rec ComponentRecord) (*Component, error) {
	if rec.Type != model.ComponentPlatformAvionics && rec.Type != model.ComponentPayloadAvionics {
		rec.Type = model.ComponentPlatformAvionics
	}
	return NewComponent(rec)
}

// Property returns a free-form property and whether it was set.
func (c *Component) Property(key string) (any, bool) {
	v, ok := c.Properties[key]
	return v, ok
}

// SetProperty stores a free-form property.
func (c *Component) SetProperty(key string, value any) {
	if c.Properties == nil {
		c.Properties = make(map[string]any)
	}
	c.Properties[key] = value
}

// Power returns the draw for the given mode.
func (c *Component) Power(mode PowerMode) float64 {
	if mode == PowerActive {
		return c.ActivePower
	}
	return c.PassivePower
}

func (c *Component) String() string {
	return fmt.Sprintf("%s (%s): %.1fkg, %.1fW, %s", c.Name, c.Type, c.Mass, c.ActivePower, FormatMoney(c.Cost))
}

func (c *Component) clone() *Component {
	cp := *c
	cp.Properties = copyProps(c.Properties)
	cp.Payload = c.Payload.clone()
	return &cp
}
