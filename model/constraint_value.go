package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ComparisonOperator is the relation a measured value must satisfy.
type ComparisonOperator string

const (
	OpLessThan       ComparisonOperator = "<"
	OpLessOrEqual    ComparisonOperator = "<="
	OpEqual          ComparisonOperator = "=="
	OpGreaterOrEqual ComparisonOperator = ">="
	OpGreaterThan    ComparisonOperator = ">"
	OpNotEqual       ComparisonOperator = "!="
	OpBetween        ComparisonOperator = "between"
)

var operators = []ComparisonOperator{
	OpLessThan, OpLessOrEqual, OpEqual, OpGreaterOrEqual, OpGreaterThan, OpNotEqual, OpBetween,
}

// ParseComparisonOperator parses an operator symbol.
func ParseComparisonOperator(s string) (ComparisonOperator, error) {
	return parseEnum("comparison operator", s, operators)
}

// NumericConstraintValue is a comparator plus its operand(s) and unit.
// For OpBetween only MinValue and MaxValue are set; for every other
// operator only Value is set.
type NumericConstraintValue struct {
	Operator ComparisonOperator
	Value    *float64
	MinValue *float64
	MaxValue *float64
	Unit     Unit
}

// NewNumericConstraintValue validates the operand shape for op. Between
// requires both bounds with min < max; the other operators require value.
// Operands the operator does not use are dropped.
func NewNumericConstraintValue(op ComparisonOperator, value, minValue, maxValue *float64, unit Unit) (NumericConstraintValue, error) {
	c := NumericConstraintValue{Operator: op, Unit: unit}
	if op == OpBetween {
		c.MinValue, c.MaxValue = copyFloat(minValue), copyFloat(maxValue)
	} else {
		c.Value = copyFloat(value)
	}
	if err := c.Validate(); err != nil {
		return NumericConstraintValue{}, err
	}
	return c, nil
}

// Validate checks the operator, the unit and that the operands match the
// operator.
func (c NumericConstraintValue) Validate() error {
	if _, err := ParseComparisonOperator(string(c.Operator)); err != nil {
		return err
	}
	if !c.Unit.Valid() {
		return fmt.Errorf("%w: unit %q", ErrInvalidEnum, c.Unit)
	}
	if c.Operator == OpBetween {
		if c.MinValue == nil || c.MaxValue == nil {
			return fmt.Errorf("%w: between requires min_value and max_value", ErrInvalidConstraintShape)
		}
		if *c.MinValue >= *c.MaxValue {
			return fmt.Errorf("%w: min_value %g must be less than max_value %g", ErrInvalidConstraintShape, *c.MinValue, *c.MaxValue)
		}
		return nil
	}
	if c.Value == nil {
		return fmt.Errorf("%w: operator %s requires value", ErrInvalidConstraintShape, c.Operator)
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Compare builds a single-operand constraint value.
func Compare(op ComparisonOperator, value float64, unit Unit) (NumericConstraintValue, error) {
	return NewNumericConstraintValue(op, &value, nil, nil, unit)
}

// Between builds an inclusive range constraint value.
func Between(minValue, maxValue float64, unit Unit) (NumericConstraintValue, error) {
	return NewNumericConstraintValue(OpBetween, nil, &minValue, &maxValue, unit)
}

// Evaluate reports whether x satisfies the constraint. Equality is exact.
func (c NumericConstraintValue) Evaluate(x float64) bool {
	switch c.Operator {
	case OpBetween:
		if c.MinValue == nil || c.MaxValue == nil {
			return false
		}
		return *c.MinValue <= x && x <= *c.MaxValue
	}
	if c.Value == nil {
		return false
	}
	v := *c.Value
	switch c.Operator {
	case OpLessThan:
		return x < v
	case OpLessOrEqual:
		return x <= v
	case OpEqual:
		return x == v
	case OpGreaterOrEqual:
		return x >= v
	case OpGreaterThan:
		return x > v
	case OpNotEqual:
		return x != v
	default:
		return false
	}
}

// Margin is the signed distance from x to the constraint boundary, positive
// on the satisfying side. For between it is the distance to the nearer bound.
func (c NumericConstraintValue) Margin(x float64) float64 {
	if c.Operator == OpBetween {
		if c.MinValue == nil || c.MaxValue == nil {
			return math.Inf(-1)
		}
		return math.Min(x-*c.MinValue, *c.MaxValue-x)
	}
	if c.Value == nil {
		return math.Inf(-1)
	}
	v := *c.Value
	switch c.Operator {
	case OpLessThan, OpLessOrEqual:
		return v - x
	case OpGreaterThan, OpGreaterOrEqual:
		return x - v
	case OpEqual:
		return -math.Abs(x - v)
	case OpNotEqual:
		return math.Abs(x - v)
	default:
		return 0
	}
}

// Target returns the single operand, or the midpoint for between.
func (c NumericConstraintValue) Target() float64 {
	if c.Operator == OpBetween && c.MinValue != nil && c.MaxValue != nil {
		return (*c.MinValue + *c.MaxValue) / 2
	}
	if c.Value != nil {
		return *c.Value
	}
	return 0
}

func (c NumericConstraintValue) String() string {
	var b strings.Builder
	if c.Operator == OpBetween && c.MinValue != nil && c.MaxValue != nil {
		fmt.Fprintf(&b, "between %s and %s", formatFloat(*c.MinValue), formatFloat(*c.MaxValue))
	} else if c.Value != nil {
		fmt.Fprintf(&b, "%s %s", c.Operator, formatFloat(*c.Value))
	} else {
		b.WriteString(string(c.Operator))
	}
	if c.Unit != UnitNone {
		b.WriteString(" ")
		b.WriteString(string(c.Unit))
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
