package menu

import (
	"fmt"
	"math"

	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/format"
)

// Constraint governs whether and how a channel's thresholds move during a fit.
//
// The zero value is a FixedThresholds constraint. Value is meaningless for
// FixedThresholds, an absolute rate for FixedRate and a fraction in [0,1] for
// FractionOfBandwidth. Invalid values are rejected when they are set, so they
// never reach a fit.
type Constraint struct {
	typ   format.ConstraintType
	value float64
}

// FixedThresholds returns a constraint that keeps the channel's parameters as they are.
func FixedThresholds() Constraint {
	return Constraint{typ: format.FixedThresholds}
}

// FixedRate returns a constraint targeting an absolute rate.
func FixedRate(rate float64) (Constraint, error) {
	var c Constraint
	if err := c.SetFixedRate(rate); err != nil {
		return Constraint{}, err
	}

	return c, nil
}

// FractionOfBandwidth returns a constraint targeting fraction of the total rate.
func FractionOfBandwidth(fraction float64) (Constraint, error) {
	var c Constraint
	if err := c.SetFraction(fraction); err != nil {
		return Constraint{}, err
	}

	return c, nil
}

// Type returns the constraint type.
func (c Constraint) Type() format.ConstraintType {
	if c.typ == 0 {
		return format.FixedThresholds
	}

	return c.typ
}

// Value returns the rate or fraction. It is 0 for FixedThresholds.
func (c Constraint) Value() float64 {
	return c.value
}

// Fittable reports whether a fit may move the channel's thresholds.
func (c Constraint) Fittable() bool {
	return c.Type().Fittable()
}

// SetFixedThresholds turns c into a FixedThresholds constraint.
func (c *Constraint) SetFixedThresholds() {
	c.typ = format.FixedThresholds
	c.value = 0
}

// SetFixedRate turns c into a FixedRate constraint. The rate must be finite and non-negative.
func (c *Constraint) SetFixedRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("%w: fixed rate must be finite and non-negative, got %g", errs.ErrInvalidConstraintValue, rate)
	}
	c.typ = format.FixedRate
	c.value = rate

	return nil
}

// SetFraction turns c into a FractionOfBandwidth constraint. The fraction must be in [0,1].
// On error c is left unchanged.
func (c *Constraint) SetFraction(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return fmt.Errorf("%w: bandwidth fraction must be between zero and one, got %g", errs.ErrInvalidConstraintValue, fraction)
	}
	c.typ = format.FractionOfBandwidth
	c.value = fraction

	return nil
}

func (c Constraint) String() string {
	switch c.Type() {
	case format.FixedRate:
		return fmt.Sprintf("%s(%g)", c.Type(), c.value)
	case format.FractionOfBandwidth:
		return fmt.Sprintf("%s(%g)", c.Type(), c.value)
	default:
		return c.Type().String()
	}
}
