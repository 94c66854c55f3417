package curve

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
)

// RateCurve is the rate of one channel as a function of its primary threshold.
//
// Bin i covers [LowEdge(i), LowEdge(i+1)) and stores the rate with the
// primary threshold at the bin's low edge. A RateCurve is immutable and safe
// for concurrent use.
type RateCurve struct {
	desc    Descriptor
	binning channel.Binning
	rates   []float64
	errors  []float64
}

// New rebuilds a curve from previously computed rates and errors.
func New(desc Descriptor, binning channel.Binning, rates, errors []float64) (*RateCurve, error) {
	if err := binning.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCurveData, err)
	}
	if len(rates) != binning.Bins || len(errors) != binning.Bins {
		return nil, fmt.Errorf("%w: %d bins but %d rates and %d errors",
			errs.ErrInvalidCurveData, binning.Bins, len(rates), len(errors))
	}
	if len(desc.CoScaled) != len(desc.Ratios) {
		return nil, fmt.Errorf("%w: %d co-scaled parameters but %d ratios",
			errs.ErrInvalidCurveData, len(desc.CoScaled), len(desc.Ratios))
	}
	if desc.Primary == "" {
		return nil, fmt.Errorf("%w: empty primary parameter", errs.ErrInvalidCurveData)
	}

	return &RateCurve{
		desc:    desc.clone(),
		binning: binning,
		rates:   slices.Clone(rates),
		errors:  slices.Clone(errors),
	}, nil
}

// Descriptor returns the channel configuration the curve was built for.
func (c *RateCurve) Descriptor() Descriptor {
	return c.desc.clone()
}

// Binning returns the threshold binning.
func (c *RateCurve) Binning() channel.Binning {
	return c.binning
}

// Len returns the number of bins.
func (c *RateCurve) Len() int {
	return len(c.rates)
}

// Rates returns a copy of the per-bin rates.
func (c *RateCurve) Rates() []float64 {
	return slices.Clone(c.rates)
}

// Errors returns a copy of the per-bin rate errors.
func (c *RateCurve) Errors() []float64 {
	return slices.Clone(c.errors)
}

// Matches reports whether the curve is valid for ch as configured now.
func (c *RateCurve) Matches(ch channel.Channel) bool {
	return c.desc.Matches(ch)
}

// FindThreshold returns the lowest primary threshold at which the curve's rate
// is at most rate.
//
// The result is interpolated linearly between the two bins that bracket rate.
// Requests at or above the rate of the first bin return the lower edge of the
// binning. Requests below the rate of the last bin, negative rates and NaN
// return errs.ErrThresholdOutOfRange.
func (c *RateCurve) FindThreshold(rate float64) (float64, error) {
	t, ok := invert(c.binning, c.rates, rate)
	if !ok {
		return 0, fmt.Errorf("%w: rate %g for %s (curve spans %g down to %g)",
			errs.ErrThresholdOutOfRange, rate, c.desc.Name, c.rates[0], c.rates[len(c.rates)-1])
	}

	return t, nil
}

// FindThresholdWithError returns the threshold for rate together with its
// asymmetric statistical uncertainty, found by inverting the rate-error and
// rate+error curves.
//
// Unlike FindThreshold, requests at or above the rate of the first bin fall in
// the overflow region and fail with errs.ErrThresholdOutOfRange, since no
// uncertainty can be given for a clamped threshold.
func (c *RateCurve) FindThresholdWithError(rate float64) (threshold, errLow, errHigh float64, err error) {
	if rate >= c.rates[0] {
		return 0, 0, 0, fmt.Errorf("%w: rate %g at or above the first bin (%g) of %s",
			errs.ErrThresholdOutOfRange, rate, c.rates[0], c.desc.Name)
	}

	threshold, err = c.FindThreshold(rate)
	if err != nil {
		return 0, 0, 0, err
	}

	lower := make([]float64, len(c.rates))
	upper := make([]float64, len(c.rates))
	for i, r := range c.rates {
		lower[i] = r - c.errors[i]
		upper[i] = r + c.errors[i]
	}

	lastEdge := c.binning.LowEdge(len(c.rates) - 1)

	tLow, ok := invert(c.binning, lower, rate)
	if !ok {
		tLow = lastEdge
	}
	tHigh, ok := invert(c.binning, upper, rate)
	if !ok {
		tHigh = lastEdge
	}

	return threshold, math.Max(0, threshold-tLow), math.Max(0, tHigh-threshold), nil
}

// RateAt returns the curve's rate at threshold t, interpolated between bins
// and held constant beyond the first and last bins.
func (c *RateCurve) RateAt(t float64) float64 {
	return c.at(c.rates, t)
}

// ErrorAt returns the rate error at threshold t, interpolated like RateAt.
func (c *RateCurve) ErrorAt(t float64) float64 {
	return c.at(c.errors, t)
}

func (c *RateCurve) at(values []float64, t float64) float64 {
	pos := (t - c.binning.Lower) / c.binning.Width()
	last := len(values) - 1

	switch {
	case math.IsNaN(pos):
		return math.NaN()
	case pos <= 0:
		return values[0]
	case pos >= float64(last):
		return values[last]
	}

	i := int(pos)
	frac := pos - float64(i)

	return values[i] + frac*(values[i+1]-values[i])
}

// invert finds the first bin whose value is at most target and interpolates
// towards the previous bin. It reports false when no bin qualifies.
func invert(binning channel.Binning, values []float64, target float64) (float64, bool) {
	if math.IsNaN(target) || target < 0 {
		return 0, false
	}

	for i, v := range values {
		if v > target {
			continue
		}
		if i == 0 {
			return binning.Lower, true
		}

		prev := values[i-1]
		frac := (prev - target) / (prev - v)

		return binning.LowEdge(i-1) + frac*binning.Width(), true
	}

	return 0, false
}

func (c *RateCurve) String() string {
	return fmt.Sprintf("RateCurve(%s v%d %s, %d bins [%g, %g])",
		c.desc.Name, c.desc.Version, c.desc.Primary, c.binning.Bins, c.binning.Lower, c.binning.Upper)
}
