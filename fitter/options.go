package fitter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/curve"
	"github.com/arloliu/menufit/internal/options"
)

// DefaultMaxIterations is the default iteration cap. A fit gives up when the
// number of rescaling passes exceeds it.
const DefaultMaxIterations = 10

// Option configures a Fitter.
type Option = options.Option[*Fitter]

// WithCurveCache makes the fitter take curves from c and store the curves it
// builds there.
func WithCurveCache(c *curve.Cache) Option {
	return options.New(func(f *Fitter) error {
		if c == nil {
			return errors.New("nil curve cache")
		}
		f.cache = c

		return nil
	})
}

// WithRegistry sets the registry consulted for binning suggestions. It
// defaults to the menu's registry.
func WithRegistry(r *channel.Registry) Option {
	return options.NoError(func(f *Fitter) {
		f.registry = r
	})
}

// WithLogger sets the structured logger. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(f *Fitter) {
		if l != nil {
			f.logger = l
		}
	})
}

// WithMaxIterations sets the iteration cap. Fit fails when the number of
// rescaling passes after the seed pass exceeds n, so at most n+1 passes run.
// n must not be negative.
func WithMaxIterations(n int) Option {
	return options.New(func(f *Fitter) error {
		if n < 0 {
			return fmt.Errorf("max iterations must not be negative, got %d", n)
		}
		f.maxIterations = n

		return nil
	})
}

// WithConcurrency bounds the parallelism of curve building.
func WithConcurrency(n int) Option {
	return options.New(func(f *Fitter) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		f.buildOpts = append(f.buildOpts, curve.WithConcurrency(n))

		return nil
	})
}

// WithFixedRateRescaling controls whether FIXED_RATE channels have their
// bandwidth rescaled with the fraction channels on every iteration. By
// default a FIXED_RATE channel keeps its requested rate as its bandwidth.
func WithFixedRateRescaling(enabled bool) Option {
	return options.NoError(func(f *Fitter) {
		f.rescaleFixedRate = enabled
	})
}
