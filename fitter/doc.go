// Package fitter adjusts channel thresholds so that a menu meets a total rate.
//
// Each channel with a FIXED_RATE or FRACTION_OF_BANDWIDTH constraint is given
// a bandwidth, an amount of the total rate it may use on its own. The fitter
// inverts the channel's rate curve to turn that bandwidth into a threshold and
// then measures the correlated rate of the whole menu. Because channels select
// overlapping events, the total comes out below the sum of the bandwidths, so
// the rescalable bandwidths are multiplied by target/total and the process is
// repeated until the total is within tolerance of the target.
//
//	f, err := fitter.New(s, m, fitter.WithLogger(logger))
//	res, err := f.Fit(100, 0.01)
//
// A fit works on a copy of the menu and writes the fitted thresholds back only
// when it converges, so a failed fit leaves the menu as it was.
package fitter
