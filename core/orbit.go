package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

const (
	// EarthRadiusKm is the WGS84 equatorial radius.
	EarthRadiusKm = 6378.137
	// EarthMu is Earth's gravitational parameter in km^3/s^2.
	EarthMu = 398600.4418
	// CircularEccentricity is the tolerance below which an orbit counts as circular.
	CircularEccentricity = 0.001

	minutesPerDay = 1440.0
	secondsPerDay = 86400.0
	degToRad      = math.Pi / 180
)

// OrbitRecord is the plain input used to build an Orbit.
type OrbitRecord struct {
	ID    string
	Name  string
	Label string

	SemiMajorAxis     float64 // km
	Eccentricity      float64
	Inclination       float64 // deg
	RAAN              float64 // deg
	ArgumentOfPerigee float64 // deg
	TrueAnomaly       float64 // deg
	Epoch             time.Time

	// Altitude overrides the value derived for circular orbits.
	Altitude *float64

	LocalTimeAscendingNode string
	IsSunSynchronous       bool
	RevisitTimeGlobal      *float64 // days
	CoveragePerDay         *float64 // percent of Earth
	GroundTrackRepeatCycle *int     // days
	OrbitalLifetime        *float64 // years
	DeltaVDeorbit          *float64 // m/s

	Properties map[string]any
	Notes      string
}

// Orbit holds Keplerian elements plus the parameters derived from them.
// All derived fields are populated by NewOrbit.
type Orbit struct {
	ID    string
	Name  string
	Label string

	SemiMajorAxis     float64
	Eccentricity      float64
	Inclination       float64
	RAAN              float64
	ArgumentOfPerigee float64
	TrueAnomaly       float64
	Epoch             time.Time

	Altitude        *float64
	PerigeeAltitude *float64
	ApogeeAltitude  *float64
	OrbitalPeriod   float64 // minutes
	MeanMotion      float64 // rev/day

	// EpochJulianDate and EpochGMST (radians) locate the epoch for ground
	// track work.
	EpochJulianDate float64
	EpochGMST       float64

	LocalTimeAscendingNode string
	IsSunSynchronous       bool
	RevisitTimeGlobal      *float64
	CoveragePerDay         *float64
	GroundTrackRepeatCycle *int
	OrbitalLifetime        *float64
	DeltaVDeorbit          *float64

	Properties map[string]any
	Notes      string
}

// NewOrbit derives altitude, perigee/apogee, period and mean motion from the
// elements. Elements are trusted; physically implausible values are not
// rejected. A zero Epoch is left to the caller to fill.
func NewOrbit(rec OrbitRecord) (*Orbit, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: orbit id is required", ErrInvalidRecord)
	}

	o := &Orbit{
		ID:                     rec.ID,
		Name:                   rec.Name,
		Label:                  rec.Label,
		SemiMajorAxis:          rec.SemiMajorAxis,
		Eccentricity:           rec.Eccentricity,
		Inclination:            rec.Inclination,
		RAAN:                   rec.RAAN,
		ArgumentOfPerigee:      rec.ArgumentOfPerigee,
		TrueAnomaly:            rec.TrueAnomaly,
		Epoch:                  rec.Epoch,
		Altitude:               copyFloat(rec.Altitude),
		LocalTimeAscendingNode: rec.LocalTimeAscendingNode,
		IsSunSynchronous:       rec.IsSunSynchronous,
		RevisitTimeGlobal:      copyFloat(rec.RevisitTimeGlobal),
		CoveragePerDay:         copyFloat(rec.CoveragePerDay),
		OrbitalLifetime:        copyFloat(rec.OrbitalLifetime),
		DeltaVDeorbit:          copyFloat(rec.DeltaVDeorbit),
		Properties:             copyProps(rec.Properties),
		Notes:                  rec.Notes,
	}
	if rec.GroundTrackRepeatCycle != nil {
		v := *rec.GroundTrackRepeatCycle
		o.GroundTrackRepeatCycle = &v
	}
	o.derive()
	return o, nil
}

// NewCircularOrbit is a convenience for the common case of a circular orbit
// specified by altitude.
func NewCircularOrbit(id, name, label string, altitudeKm, inclinationDeg float64) (*Orbit, error) {
	return NewOrbit(OrbitRecord{
		ID:            id,
		Name:          name,
		Label:         label,
		SemiMajorAxis: EarthRadiusKm + altitudeKm,
		Inclination:   inclinationDeg,
		Altitude:      &altitudeKm,
	})
}

func (o *Orbit) derive() {
	a := o.SemiMajorAxis

	if o.Eccentricity < CircularEccentricity && o.Altitude == nil {
		alt := a - EarthRadiusKm
		o.Altitude = &alt
	}
	if o.Eccentricity > 0 {
		perigee := a*(1-o.Eccentricity) - EarthRadiusKm
		apogee := a*(1+o.Eccentricity) - EarthRadiusKm
		o.PerigeeAltitude = &perigee
		o.ApogeeAltitude = &apogee
	}

	o.OrbitalPeriod = 2 * math.Pi * math.Sqrt(a*a*a/EarthMu) / 60
	o.MeanMotion = minutesPerDay / o.OrbitalPeriod

	if !o.Epoch.IsZero() {
		o.SetEpoch(o.Epoch)
	}
}

// SetEpoch records the epoch together with its Julian date and Greenwich
// mean sidereal time.
func (o *Orbit) SetEpoch(t time.Time) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	o.Epoch = t
	o.EpochJulianDate = satellite.JDay(year, int(month), day, hour, minute, sec)
	o.EpochGMST = satellite.ThetaG_JD(o.EpochJulianDate)
}

// AltitudeKm returns the altitude, or zero when unset.
func (o *Orbit) AltitudeKm() float64 {
	if o == nil || o.Altitude == nil {
		return 0
	}
	return *o.Altitude
}

// GroundTrackVelocity is the orbital speed less the Earth-rotation component,
// in km/s. It is zero when the altitude is unknown.
func (o *Orbit) GroundTrackVelocity() float64 {
	if o.Altitude == nil || *o.Altitude == 0 {
		return 0
	}
	orbital := math.Sqrt(EarthMu / (EarthRadiusKm + *o.Altitude))
	rotation := 2 * math.Pi * EarthRadiusKm * math.Cos(o.Inclination*degToRad) / secondsPerDay
	return orbital - rotation
}

// SetProperty stores a free-form property.
func (o *Orbit) SetProperty(key string, value any) {
	if o.Properties == nil {
		o.Properties = make(map[string]any)
	}
	o.Properties[key] = value
}

func (o *Orbit) String() string {
	if o.Altitude != nil && *o.Altitude != 0 {
		return fmt.Sprintf("%s: %.1fkm, i=%.2f°, e=%.4f", o.Label, *o.Altitude, o.Inclination, o.Eccentricity)
	}
	return fmt.Sprintf("%s: a=%.1fkm, i=%.2f°, e=%.4f", o.Label, o.SemiMajorAxis, o.Inclination, o.Eccentricity)
}

// Summary renders the elements and derived parameters as a text block.
func (o *Orbit) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nOrbit: %s (%s)\n", o.Name, o.Label)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Keplerian Elements:\n")
	fmt.Fprintf(&b, "  Semi-major Axis: %.3f km\n", o.SemiMajorAxis)
	fmt.Fprintf(&b, "  Eccentricity: %.6f\n", o.Eccentricity)
	fmt.Fprintf(&b, "  Inclination: %.4f°\n", o.Inclination)
	fmt.Fprintf(&b, "  RAAN: %.4f°\n", o.RAAN)
	fmt.Fprintf(&b, "  Argument of Perigee: %.4f°\n", o.ArgumentOfPerigee)
	fmt.Fprintf(&b, "  True Anomaly: %.4f°\n", o.TrueAnomaly)

	b.WriteString("\nDerived Parameters:\n")
	if o.Altitude != nil {
		fmt.Fprintf(&b, "  Altitude (circular): %.2f km\n", *o.Altitude)
	}
	if o.PerigeeAltitude != nil && o.ApogeeAltitude != nil {
		fmt.Fprintf(&b, "  Perigee Altitude: %.2f km\n", *o.PerigeeAltitude)
		fmt.Fprintf(&b, "  Apogee Altitude: %.2f km\n", *o.ApogeeAltitude)
	}
	fmt.Fprintf(&b, "  Orbital Period: %.2f minutes\n", o.OrbitalPeriod)
	fmt.Fprintf(&b, "  Mean Motion: %.4f rev/day\n", o.MeanMotion)
	if v := o.GroundTrackVelocity(); v != 0 {
		fmt.Fprintf(&b, "  Ground Track Velocity: %.3f km/s\n", v)
	}
	if !o.Epoch.IsZero() {
		fmt.Fprintf(&b, "  Epoch: %s (JD %.5f)\n", o.Epoch.Format(time.RFC3339), o.EpochJulianDate)
	}

	if o.IsSunSynchronous {
		b.WriteString("  Sun-Synchronous: Yes\n")
		if o.LocalTimeAscendingNode != "" {
			fmt.Fprintf(&b, "  LTAN: %s\n", o.LocalTimeAscendingNode)
		}
	}

	b.WriteString("\nMission Performance:\n")
	if o.RevisitTimeGlobal != nil {
		fmt.Fprintf(&b, "  Global Revisit Time: %.2f days\n", *o.RevisitTimeGlobal)
	}
	if o.CoveragePerDay != nil {
		fmt.Fprintf(&b, "  Daily Coverage: %.1f%%\n", *o.CoveragePerDay)
	}
	if o.GroundTrackRepeatCycle != nil {
		fmt.Fprintf(&b, "  Ground Track Repeat: %d days\n", *o.GroundTrackRepeatCycle)
	}
	if o.OrbitalLifetime != nil {
		fmt.Fprintf(&b, "  Orbital Lifetime: %.1f years\n", *o.OrbitalLifetime)
	}
	return b.String()
}

func (o *Orbit) clone() *Orbit {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Altitude = copyFloat(o.Altitude)
	cp.PerigeeAltitude = copyFloat(o.PerigeeAltitude)
	cp.ApogeeAltitude = copyFloat(o.ApogeeAltitude)
	cp.RevisitTimeGlobal = copyFloat(o.RevisitTimeGlobal)
	cp.CoveragePerDay = copyFloat(o.CoveragePerDay)
	cp.OrbitalLifetime = copyFloat(o.OrbitalLifetime)
	cp.DeltaVDeorbit = copyFloat(o.DeltaVDeorbit)
	if o.GroundTrackRepeatCycle != nil {
		v := *o.GroundTrackRepeatCycle
		cp.GroundTrackRepeatCycle = &v
	}
	cp.Properties = copyProps(o.Properties)
	return &cp
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Float returns a pointer to v, for populating optional record fields.
func Float(v float64) *float64 { return &v }
