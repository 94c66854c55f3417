// Package menufit fits the thresholds of a multi-channel event-selection menu
// so that the menu's combined rate over a sample meets a target.
//
// Every channel of a menu carries a constraint:
//
//   - FIXED_THRESHOLDS: the channel's parameters are never changed.
//   - FIXED_RATE r: the channel is given a bandwidth of r.
//   - FRACTION_OF_BANDWIDTH f: the channel is given f of the total rate.
//
// Channels select overlapping events, so the fitted total is found
// iteratively: bandwidths are turned into thresholds through per-channel rate
// curves, the menu is evaluated over the sample and the bandwidths are rescaled
// until the correlated total is within tolerance.
//
// # Basic Usage
//
//	reg := menufit.NewRegistry()
//	m := menufit.NewMenu(reg)
//
//	half, _ := menu.FractionOfBandwidth(0.5)
//	m.AddWithConstraint(singleJet, half)
//	m.AddWithConstraint(doubleMu, half)
//
//	s := menufit.NewSample(40000, events...)
//	res, err := menufit.Fit(s, m, 100, 0.01)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Rate)
//
// # Package Structure
//
// This package provides top-level wrappers for the common case. The channel,
// menu, sample, curve and fitter packages give full control, e.g. reusing a
// curve.Cache across fits or loading binning suggestions from YAML.
package menufit

import (
	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/fitter"
	"github.com/arloliu/menufit/menu"
	"github.com/arloliu/menufit/sample"
)

// NewRegistry creates an empty channel registry.
func NewRegistry() *channel.Registry {
	return channel.NewRegistry()
}

// NewMenu creates an empty menu backed by reg. reg may be nil.
func NewMenu(reg *channel.Registry) *menu.Menu {
	return menu.New(reg)
}

// NewSample creates an in-memory sample with the given event rate.
func NewSample(eventRate float64, events ...channel.Event) *sample.MemorySample {
	return sample.NewMemorySample(eventRate, events...)
}

// NewFitter creates a fitter for m over s.
//
// Parameters:
//   - s: Sample the menu is evaluated on
//   - m: Menu whose fittable channels are fitted
//   - opts: Fitter options (curve cache, logger, iteration limit, ...)
//
// Returns:
//   - *fitter.Fitter: Fitter with a rate curve for every fittable channel
//   - error: Curve construction or option errors
func NewFitter(s sample.Sample, m *menu.Menu, opts ...fitter.Option) (*fitter.Fitter, error) {
	return fitter.New(s, m, opts...)
}

// Fit fits m to totalRate within tolerance in one call. On success the fitted
// thresholds are written to m.
func Fit(s sample.Sample, m *menu.Menu, totalRate, tolerance float64, opts ...fitter.Option) (*fitter.FitResult, error) {
	f, err := fitter.New(s, m, opts...)
	if err != nil {
		return nil, err
	}

	return f.Fit(totalRate, tolerance)
}
