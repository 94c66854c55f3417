package fitter

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/curve"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/format"
	"github.com/arloliu/menufit/internal/options"
	"github.com/arloliu/menufit/menu"
	"github.com/arloliu/menufit/sample"
)

// FitResult is the outcome of a successful fit.
type FitResult struct {
	// Rate is the evaluation of the fitted menu.
	Rate *sample.RateResult
	// Iterations is the number of rescaling passes after the seed pass.
	Iterations int
	// Thresholds holds the fitted primary threshold per menu position, NaN for
	// channels that were not fitted.
	Thresholds []float64
	// Bandwidths holds the final bandwidth per menu position, NaN for channels
	// that were not fitted.
	Bandwidths []float64
}

// fitted is the fitting state of one channel with a fittable constraint.
type fitted struct {
	group *ScalingGroup
	curve *curve.RateCurve
}

// Fitter fits the thresholds of a menu to a total rate over a sample.
//
// A Fitter is not safe for concurrent use.
type Fitter struct {
	sample   sample.Sample
	menu     *menu.Menu
	registry *channel.Registry
	cache    *curve.Cache
	logger   *slog.Logger

	maxIterations    int
	rescaleFixedRate bool
	buildOpts        []curve.BuildOption

	// fitted is indexed by menu position; nil entries are not fitted.
	fitted []*fitted
	debug  strings.Builder
}

// New creates a fitter for m over s and prepares a rate curve for every
// channel of m whose constraint is fittable.
func New(s sample.Sample, m *menu.Menu, opts ...Option) (*Fitter, error) {
	f := &Fitter{
		sample:        s,
		menu:          m,
		registry:      m.Registry(),
		logger:        slog.New(slog.DiscardHandler),
		maxIterations: DefaultMaxIterations,
	}
	if err := options.Apply(f, opts...); err != nil {
		return nil, err
	}
	if f.cache == nil {
		f.cache = curve.NewCache()
	}

	if err := f.sync(); err != nil {
		return nil, err
	}

	return f, nil
}

// Menu returns the menu being fitted.
func (f *Fitter) Menu() *menu.Menu {
	return f.menu
}

// Cache returns the curve cache.
func (f *Fitter) Cache() *curve.Cache {
	return f.cache
}

// AddChannel appends a copy of ch with constraint c to the menu and returns
// its position. A fittable channel gets its scaling group and rate curve
// before it is added, so a failure leaves the menu unchanged.
func (f *Fitter) AddChannel(ch channel.Channel, c menu.Constraint) (int, error) {
	if err := f.sync(); err != nil {
		return -1, err
	}

	var state *fitted
	if c.Fittable() {
		var err error
		if state, err = f.prepare(ch); err != nil {
			return -1, err
		}
	}

	index := f.menu.AddWithConstraint(ch, c)
	f.fitted = append(f.fitted, state)

	return index, nil
}

// Curve returns the rate curve of the channel at menu position i, or
// errs.ErrNoCurve if that channel is not fitted.
func (f *Fitter) Curve(i int) (*curve.RateCurve, error) {
	if i < 0 || i >= f.menu.Len() {
		return nil, fmt.Errorf("%w: %d (menu has %d channels)", errs.ErrIndexOutOfRange, i, f.menu.Len())
	}
	if i >= len(f.fitted) || f.fitted[i] == nil {
		return nil, fmt.Errorf("%w: position %d", errs.ErrNoCurve, i)
	}

	return f.fitted[i].curve, nil
}

// DebugLog returns the human-readable trace of the last Fit.
func (f *Fitter) DebugLog() string {
	return f.debug.String()
}

// sync brings the fitting state in line with the menu: channels appended to
// the menu directly, constraints changed since the last call and channels
// whose fixed parameters no longer match their curve are picked up.
func (f *Fitter) sync() error {
	for i, ch := range f.menu.Channels() {
		c, err := f.menu.Constraint(i)
		if err != nil {
			return err
		}
		if i >= len(f.fitted) {
			f.fitted = append(f.fitted, nil)
		}

		switch {
		case !c.Fittable():
			f.fitted[i] = nil
		case f.fitted[i] == nil || !f.fitted[i].curve.Matches(ch):
			state, err := f.prepare(ch)
			if err != nil {
				return err
			}
			f.fitted[i] = state
		}
	}
	f.fitted = f.fitted[:f.menu.Len()]

	return nil
}

func (f *Fitter) prepare(ch channel.Channel) (*fitted, error) {
	group, err := NewScalingGroup(ch)
	if err != nil {
		return nil, err
	}

	names := group.Names()
	if rc, ok := f.cache.Lookup(ch, names[0], names[1:]); ok {
		f.logger.Debug("rate curve from cache", "channel", ch.Name(), "parameter", group.Primary())
		return &fitted{group: group, curve: rc}, nil
	}

	binning := f.registry.BinningFor(ch.Name(), group.Primary())
	rc, err := curve.Build(ch, group.buildConfig(binning), f.sample, f.buildOpts...)
	if err != nil {
		return nil, err
	}
	f.cache.Add(rc)
	f.logger.Debug("rate curve built", "channel", ch.Name(), "parameter", group.Primary(),
		"bins", binning.Bins, "lower", binning.Lower, "upper", binning.Upper)

	return &fitted{group: group, curve: rc}, nil
}

// target is one channel being moved during a fit.
type target struct {
	index      int
	name       string
	state      *fitted
	ch         channel.Channel // session copy
	bandwidth  float64
	threshold  float64
	rescalable bool
}

// Fit finds thresholds for every fittable channel so that the total rate of
// the menu is within tolerance of totalRate.
//
// Channels are seeded with a bandwidth of totalRate*fraction for
// FRACTION_OF_BANDWIDTH and the requested rate for FIXED_RATE. After each
// evaluation the rescalable bandwidths are multiplied by totalRate/total.
// When no channel is rescalable the seed pass is the result. When the total is
// still out of tolerance once the number of rescaling passes exceeds the
// iteration cap, Fit returns errs.ErrIterationLimitExceeded and the menu is not
// modified. The debug trace is kept after both success and failure.
func (f *Fitter) Fit(totalRate, tolerance float64) (*FitResult, error) {
	f.debug.Reset()

	if math.IsNaN(totalRate) || math.IsInf(totalRate, 0) || totalRate <= 0 {
		return nil, fmt.Errorf("%w: total rate %g", errs.ErrInvalidConstraintValue, totalRate)
	}
	if math.IsNaN(tolerance) || tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance %g", errs.ErrInvalidConstraintValue, tolerance)
	}
	if err := f.sync(); err != nil {
		return nil, err
	}

	session := f.menu.Clone()
	targets, err := f.targets(session, totalRate)
	if err != nil {
		return nil, err
	}

	rescalable := 0
	for _, t := range targets {
		if t.rescalable {
			rescalable++
		}
	}

	fmt.Fprintf(&f.debug, "Fitting %d of %d channels to total rate %g (tolerance %g)\n",
		len(targets), session.Len(), totalRate, tolerance)
	f.logger.Info("fit started", "channels", session.Len(), "fitted", len(targets),
		"rescalable", rescalable, "target", totalRate, "tolerance", tolerance)

	if err := f.place(targets); err != nil {
		return nil, err
	}
	rate, err := f.evaluate(session, targets, 0)
	if err != nil {
		return nil, err
	}

	iterations := 0
	for math.Abs(rate.TotalRate()-totalRate) > tolerance {
		if rescalable == 0 {
			break
		}
		if iterations > f.maxIterations {
			fmt.Fprintf(&f.debug, "Not converged after %d iterations\n", iterations)
			f.logger.Warn("fit did not converge", "iterations", iterations,
				"rate", rate.TotalRate(), "target", totalRate)
			return nil, fmt.Errorf("%w: %d iterations, total rate %g, target %g ± %g",
				errs.ErrIterationLimitExceeded, iterations, rate.TotalRate(), totalRate, tolerance)
		}

		scale := totalRate / rate.TotalRate()
		for _, t := range targets {
			if t.rescalable {
				t.bandwidth *= scale
			}
		}
		if err := f.place(targets); err != nil {
			return nil, err
		}

		iterations++
		if rate, err = f.evaluate(session, targets, iterations); err != nil {
			return nil, err
		}
	}

	if err := f.commit(targets); err != nil {
		return nil, err
	}

	f.logger.Info("fit converged", "iterations", iterations, "rate", rate.TotalRate(), "target", totalRate)

	result := &FitResult{
		Rate:       rate,
		Iterations: iterations,
		Thresholds: make([]float64, session.Len()),
		Bandwidths: make([]float64, session.Len()),
	}
	for i := range result.Thresholds {
		result.Thresholds[i] = math.NaN()
		result.Bandwidths[i] = math.NaN()
	}
	for _, t := range targets {
		result.Thresholds[t.index] = t.threshold
		result.Bandwidths[t.index] = t.bandwidth
	}

	return result, nil
}

// targets seeds the bandwidth of every fitted channel in the session menu.
func (f *Fitter) targets(session *menu.Menu, totalRate float64) ([]*target, error) {
	var out []*target
	for i, state := range f.fitted {
		if state == nil {
			continue
		}

		c, err := session.Constraint(i)
		if err != nil {
			return nil, err
		}
		ch, err := session.Channel(i)
		if err != nil {
			return nil, err
		}

		t := &target{index: i, name: ch.Name(), state: state, ch: ch}
		switch c.Type() {
		case format.FractionOfBandwidth:
			t.bandwidth = totalRate * c.Value()
			t.rescalable = true
		case format.FixedRate:
			t.bandwidth = c.Value()
			t.rescalable = f.rescaleFixedRate
		default:
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

// place turns every bandwidth into a threshold and applies it to the session.
func (f *Fitter) place(targets []*target) error {
	for _, t := range targets {
		threshold, err := t.state.curve.FindThreshold(t.bandwidth)
		if err != nil {
			return fmt.Errorf("channel %s (position %d) bandwidth %g: %w", t.name, t.index, t.bandwidth, err)
		}
		if err := t.state.group.Apply(t.ch, threshold); err != nil {
			return fmt.Errorf("channel %s (position %d): %w", t.name, t.index, err)
		}
		t.threshold = threshold
	}

	return nil
}

func (f *Fitter) evaluate(session *menu.Menu, targets []*target, iteration int) (*sample.RateResult, error) {
	rate, err := f.sample.Rate(session)
	if err != nil {
		return nil, fmt.Errorf("evaluating menu: %w", err)
	}

	fmt.Fprintf(&f.debug, "Iteration %d\n", iteration)
	for _, t := range targets {
		fmt.Fprintf(&f.debug, "  %-24s bandwidth %12.4f -> %s %10.4f\n",
			t.name, t.bandwidth, t.state.group.Primary(), t.threshold)
	}
	f.debug.WriteString(rate.String())

	f.logger.Debug("fit iteration", "iteration", iteration, "rate", rate.TotalRate(),
		"error", rate.TotalRateError())

	return rate, nil
}

// commit writes the fitted thresholds to the caller's menu.
func (f *Fitter) commit(targets []*target) error {
	for _, t := range targets {
		ch, err := f.menu.Channel(t.index)
		if err != nil {
			return err
		}
		if err := t.state.group.Apply(ch, t.threshold); err != nil {
			return fmt.Errorf("channel %s (position %d): %w", t.name, t.index, err)
		}
	}

	return nil
}
