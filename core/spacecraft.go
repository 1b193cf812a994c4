package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/signalsfoundry/mission-designer/model"
)

// Default spacecraft margins (percent) and design life (years).
const (
	DefaultDryMassMargin = 20.0
	DefaultPowerMargin   = 30.0
	DefaultCostMargin    = 25.0
	DefaultDesignLife    = 5.0
)

// PowerMode selects which component power draw a rollup uses.
type PowerMode string

const (
	PowerActive  PowerMode = "active"
	PowerPassive PowerMode = "passive"
)

// ParsePowerMode accepts "active" or "passive"; empty means active.
func ParsePowerMode(s string) (PowerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return PowerActive, nil
	case "passive":
		return PowerPassive, nil
	default:
		return "", fmt.Errorf("%w: power mode %q", model.ErrInvalidEnum, s)
	}
}

// SpacecraftRecord is the plain input used to build a Spacecraft. Nil
// margins and design life select the defaults.
type SpacecraftRecord struct {
	ID            string
	Name          string
	Components    []ComponentRecord
	DryMassMargin *float64
	PowerMargin   *float64
	CostMargin    *float64
	DesignLife    *float64
}

// Spacecraft is an ordered set of components plus budget margins.
type Spacecraft struct {
	ID            string
	Name          string
	Components    []*Component
	DryMassMargin float64 // percent
	PowerMargin   float64 // percent
	CostMargin    float64 // percent
	DesignLife    float64 // years
}

// NewSpacecraft builds the spacecraft and each of its components.
func NewSpacecraft(rec SpacecraftRecord) (*Spacecraft, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: spacecraft id is required", ErrInvalidRecord)
	}
	sc := &Spacecraft{
		ID:            rec.ID,
		Name:          rec.Name,
		DryMassMargin: floatOr(rec.DryMassMargin, DefaultDryMassMargin),
		PowerMargin:   floatOr(rec.PowerMargin, DefaultPowerMargin),
		CostMargin:    floatOr(rec.CostMargin, DefaultCostMargin),
		DesignLife:    floatOr(rec.DesignLife, DefaultDesignLife),
	}
	for _, cr := range rec.Components {
		c, err := NewComponent(cr)
		if err != nil {
			return nil, fmt.Errorf("spacecraft %s: %w", rec.ID, err)
		}
		sc.Components = append(sc.Components, c)
	}
	return sc, nil
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// AddComponent appends a component.
func (s *Spacecraft) AddComponent(c *Component) {
	s.Components = append(s.Components, c)
}

// ComponentByID returns the component with the given id, or nil.
func (s *Spacecraft) ComponentByID(id string) *Component {
	for _, c := range s.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ComponentsByType returns components of type t in insertion order.
func (s *Spacecraft) ComponentsByType(t model.ComponentType) []*Component {
	var out []*Component
	for _, c := range s.Components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// PayloadInstruments returns every payload instrument on board.
func (s *Spacecraft) PayloadInstruments() []*PayloadInstrument {
	var out []*PayloadInstrument
	for _, c := range s.Components {
		if c.Payload != nil {
			out = append(out, c.Payload)
		}
	}
	return out
}

func withMargin(total, marginPct float64, include bool) float64 {
	if include {
		return total * (1 + marginPct/100)
	}
	return total
}

// TotalMass is the summed component mass in kg, scaled once by the dry mass
// margin when includeMargin is set.
func (s *Spacecraft) TotalMass(includeMargin bool) float64 {
	var total float64
	for _, c := range s.Components {
		total += c.Mass
	}
	return withMargin(total, s.DryMassMargin, includeMargin)
}

// TotalPower is the summed power draw in W for mode.
func (s *Spacecraft) TotalPower(mode PowerMode, includeMargin bool) float64 {
	var total float64
	for _, c := range s.Components {
		total += c.Power(mode)
	}
	return withMargin(total, s.PowerMargin, includeMargin)
}

// TotalCost is the summed component cost, accumulated in decimal and scaled
// once by the cost margin.
func (s *Spacecraft) TotalCost(includeMargin bool) float64 {
	return s.TotalCostDecimal(includeMargin).InexactFloat64()
}

// TotalCostDecimal is TotalCost without the final float conversion.
func (s *Spacecraft) TotalCostDecimal(includeMargin bool) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Components {
		total = total.Add(decimal.NewFromFloat(c.Cost))
	}
	if includeMargin {
		factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(s.CostMargin).Div(decimal.NewFromInt(100)))
		total = total.Mul(factor)
	}
	return total
}

// MassBySubsystem sums component mass per component type, without margin.
func (s *Spacecraft) MassBySubsystem() map[model.ComponentType]float64 {
	out := make(map[model.ComponentType]float64)
	for _, c := range s.Components {
		out[c.Type] += c.Mass
	}
	return out
}

// PowerBySubsystem sums component power per component type, without margin.
func (s *Spacecraft) PowerBySubsystem(mode PowerMode) map[model.ComponentType]float64 {
	out := make(map[model.ComponentType]float64)
	for _, c := range s.Components {
		out[c.Type] += c.Power(mode)
	}
	return out
}

// VerifyMassConstraint checks the margined mass against limit. The check is
// always total <= limit, whatever operator a mass Constraint declares.
func (s *Spacecraft) VerifyMassConstraint(limit float64) (bool, float64) {
	total := s.TotalMass(true)
	return total <= limit, total
}

// VerifyPowerConstraint checks the margined power draw against limit.
func (s *Spacecraft) VerifyPowerConstraint(limit float64, mode PowerMode) (bool, float64) {
	total := s.TotalPower(mode, true)
	return total <= limit, total
}

// VerifyCostConstraint checks the margined cost against limit.
func (s *Spacecraft) VerifyCostConstraint(limit float64) (bool, float64) {
	total := s.TotalCost(true)
	return total <= limit, total
}

// BudgetSummary renders the mass/power/cost rollups.
func (s *Spacecraft) BudgetSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spacecraft: %s (%d components, %.0f yr design life)\n", s.Name, len(s.Components), s.DesignLife)
	fmt.Fprintf(&b, "  Mass: %.1f kg (%.1f kg + %.0f%% margin)\n", s.TotalMass(true), s.TotalMass(false), s.DryMassMargin)
	fmt.Fprintf(&b, "  Power (active): %.1f W (%.1f W + %.0f%% margin)\n", s.TotalPower(PowerActive, true), s.TotalPower(PowerActive, false), s.PowerMargin)
	fmt.Fprintf(&b, "  Power (passive): %.1f W\n", s.TotalPower(PowerPassive, true))
	fmt.Fprintf(&b, "  Cost: %s (%.0f%% margin)\n", FormatMoney(s.TotalCost(true)), s.CostMargin)
	return b.String()
}

func (s *Spacecraft) clone() *Spacecraft {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Components = make([]*Component, len(s.Components))
	for i, c := range s.Components {
		cp.Components[i] = c.clone()
	}
	return &cp
}

// FormatMoney renders an amount rounded to whole units with thousands
// separators, e.g. "$22,000,000".
func FormatMoney(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	neg := d.IsNegative()
	digits := d.Abs().String()

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
