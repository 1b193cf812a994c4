package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidEnum indicates a string did not name a member of a closed enumeration.
	ErrInvalidEnum = errors.New("invalid enumeration value")
	// ErrInvalidConstraintShape indicates a numeric constraint value is missing
	// the fields its operator requires or has inconsistent bounds.
	ErrInvalidConstraintShape = errors.New("invalid constraint value")
	// ErrInvalidGeometry indicates a geographic point or polygon is out of range.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Unit is a unit of measure attached to a numeric quantity.
type Unit string

const (
	UnitMeter      Unit = "m"
	UnitKilometer  Unit = "km"
	UnitCentimeter Unit = "cm"
	UnitMillimeter Unit = "mm"
	UnitMicrometer Unit = "μm"
	UnitNanometer  Unit = "nm"

	UnitSecond Unit = "s"
	UnitMinute Unit = "min"
	UnitHour   Unit = "hr"
	UnitDay    Unit = "days"
	UnitYear   Unit = "years"

	UnitBit      Unit = "bits"
	UnitByte     Unit = "bytes"
	UnitMegabyte Unit = "MB"
	UnitGigabyte Unit = "GB"
	UnitTerabyte Unit = "TB"
	UnitMbps     Unit = "Mbps"
	UnitGbps     Unit = "Gbps"

	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitTonne    Unit = "tonnes"

	UnitWatt     Unit = "W"
	UnitKilowatt Unit = "kW"

	UnitUSD Unit = "USD"
	UnitEUR Unit = "EUR"

	UnitDegree  Unit = "deg"
	UnitRadian  Unit = "rad"
	UnitDecibel Unit = "dB"
	UnitPercent Unit = "%"
	UnitCount   Unit = "count"
	UnitNone    Unit = ""
)

// UnitKind groups units by the physical dimension they measure.
type UnitKind string

const (
	KindDistance      UnitKind = "distance"
	KindTime          UnitKind = "time"
	KindData          UnitKind = "data"
	KindMass          UnitKind = "mass"
	KindPower         UnitKind = "power"
	KindCurrency      UnitKind = "currency"
	KindAngle         UnitKind = "angle"
	KindDimensionless UnitKind = "dimensionless"
)

var unitKinds = map[Unit]UnitKind{
	UnitMeter: KindDistance, UnitKilometer: KindDistance, UnitCentimeter: KindDistance,
	UnitMillimeter: KindDistance, UnitMicrometer: KindDistance, UnitNanometer: KindDistance,
	UnitSecond: KindTime, UnitMinute: KindTime, UnitHour: KindTime, UnitDay: KindTime, UnitYear: KindTime,
	UnitBit: KindData, UnitByte: KindData, UnitMegabyte: KindData, UnitGigabyte: KindData,
	UnitTerabyte: KindData, UnitMbps: KindData, UnitGbps: KindData,
	UnitKilogram: KindMass, UnitGram: KindMass, UnitTonne: KindMass,
	UnitWatt: KindPower, UnitKilowatt: KindPower,
	UnitUSD: KindCurrency, UnitEUR: KindCurrency,
	UnitDegree: KindAngle, UnitRadian: KindAngle,
	UnitDecibel: KindDimensionless, UnitPercent: KindDimensionless,
	UnitCount: KindDimensionless, UnitNone: KindDimensionless,
}

// ParseUnit maps a unit symbol onto a Unit. "um" and "micron" are accepted
// as ASCII spellings of μm.
func ParseUnit(s string) (Unit, error) {
	v := strings.TrimSpace(s)
	switch v {
	case "um", "micron", "microns", "µm":
		return UnitMicrometer, nil
	}
	u := Unit(v)
	if _, ok := unitKinds[u]; !ok {
		return "", fmt.Errorf("%w: unit %q", ErrInvalidEnum, s)
	}
	return u, nil
}

// Valid reports whether u is a member of the closed unit set.
func (u Unit) Valid() bool {
	_, ok := unitKinds[u]
	return ok
}

// Kind returns the dimension u measures.
func (u Unit) Kind() UnitKind {
	if k, ok := unitKinds[u]; ok {
		return k
	}
	return KindDimensionless
}

func (u Unit) String() string { return string(u) }

// unitScale expresses each convertible unit as a factor on its family's base
// unit. Units in different families never convert into each other.
var unitScale = map[Unit]struct {
	family string
	factor float64
}{
	UnitMeter: {"length", 1}, UnitKilometer: {"length", 1e3}, UnitCentimeter: {"length", 1e-2},
	UnitMillimeter: {"length", 1e-3}, UnitMicrometer: {"length", 1e-6}, UnitNanometer: {"length", 1e-9},
	UnitSecond: {"time", 1}, UnitMinute: {"time", 60}, UnitHour: {"time", 3600},
	UnitDay: {"time", 86400}, UnitYear: {"time", 365.25 * 86400},
	UnitBit: {"size", 1}, UnitByte: {"size", 8}, UnitMegabyte: {"size", 8e6},
	UnitGigabyte: {"size", 8e9}, UnitTerabyte: {"size", 8e12},
	UnitMbps: {"rate", 1}, UnitGbps: {"rate", 1e3},
	UnitKilogram: {"mass", 1}, UnitGram: {"mass", 1e-3}, UnitTonne: {"mass", 1e3},
	UnitWatt: {"power", 1}, UnitKilowatt: {"power", 1e3},
	UnitDegree: {"angle", 1}, UnitRadian: {"angle", 180 / math.Pi},
}

// Convert rescales v from one unit to another. It reports false when the
// units are not of the same convertible family; identical units always
// convert.
func Convert(v float64, from, to Unit) (float64, bool) {
	if from == to {
		return v, true
	}
	f, ok1 := unitScale[from]
	t, ok2 := unitScale[to]
	if !ok1 || !ok2 || f.family != t.family {
		return 0, false
	}
	return v * f.factor / t.factor, true
}
