package curve

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/internal/options"
	"github.com/arloliu/menufit/internal/pool"
	"github.com/arloliu/menufit/sample"
)

// BuildConfig selects the parameters a curve scans and the threshold binning.
type BuildConfig struct {
	Primary  string
	CoScaled []string
	// Binning defaults to channel.DefaultBinning when zero.
	Binning channel.Binning
}

// chunkSums holds the weighted counts of one chunk of events.
type chunkSums struct {
	sumW    float64
	passW   []float64
	passW2  []float64
	release []func()
}

// Build scans s once per bin and records the rate of ch at every candidate
// threshold. ch itself is never modified.
//
// s is read from several goroutines; Event must be safe for concurrent use.
func Build(ch channel.Channel, cfg BuildConfig, s sample.Sample, opts ...BuildOption) (*RateCurve, error) {
	return BuildContext(context.Background(), ch, cfg, s, opts...)
}

// BuildContext is Build with cancellation.
func BuildContext(ctx context.Context, ch channel.Channel, cfg BuildConfig, s sample.Sample, opts ...BuildOption) (*RateCurve, error) {
	o := defaultBuildOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	binning := cfg.Binning
	if binning == (channel.Binning{}) {
		binning = channel.DefaultBinning()
	}
	if err := binning.Validate(); err != nil {
		return nil, fmt.Errorf("channel %s: %w", ch.Name(), err)
	}

	desc, err := Describe(ch, cfg.Primary, cfg.CoScaled)
	if err != nil {
		return nil, err
	}

	n := s.NumberOfEvents()
	if n == 0 {
		return nil, fmt.Errorf("%w: building curve for %s", errs.ErrEmptySample, ch.Name())
	}

	numChunks := (n + o.chunkSize - 1) / o.chunkSize
	chunks := make([]chunkSums, numChunks)
	defer func() {
		for i := range chunks {
			for _, release := range chunks[i].release {
				release()
			}
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for ci := range chunks {
		start := ci * o.chunkSize
		end := min(start+o.chunkSize, n)
		sums := &chunks[ci]

		passW, releaseW := pool.GetFloat64Slice(binning.Bins)
		passW2, releaseW2 := pool.GetFloat64Slice(binning.Bins)
		sums.passW, sums.passW2 = passW, passW2
		sums.release = []func(){releaseW, releaseW2}

		g.Go(func() error {
			return scanChunk(ctx, ch.Clone(), desc, binning, s, start, end, sums)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building curve for %s: %w", ch.Name(), err)
	}

	// Merge in chunk order so the result does not depend on scheduling.
	var sumW float64
	passW := make([]float64, binning.Bins)
	passW2 := make([]float64, binning.Bins)
	for i := range chunks {
		sumW += chunks[i].sumW
		for b := range passW {
			passW[b] += chunks[i].passW[b]
			passW2[b] += chunks[i].passW2[b]
		}
	}

	if sumW <= 0 {
		return nil, fmt.Errorf("%w: total weight %g building curve for %s", errs.ErrEmptySample, sumW, ch.Name())
	}

	scale := s.EventRate() / sumW
	rates := make([]float64, binning.Bins)
	rateErrors := make([]float64, binning.Bins)
	for b := range rates {
		rates[b] = passW[b] * scale
		rateErrors[b] = math.Sqrt(passW2[b]) * scale
	}

	return &RateCurve{desc: desc, binning: binning, rates: rates, errors: rateErrors}, nil
}

func scanChunk(ctx context.Context, ch channel.Channel, desc Descriptor, binning channel.Binning,
	s sample.Sample, start, end int, sums *chunkSums,
) error {
	events := make([]channel.Event, end-start)
	weights := make([]float64, end-start)
	for i := range events {
		events[i] = s.Event(start + i)
		weights[i] = events[i].Weight()
		sums.sumW += weights[i]
	}

	for b := 0; b < binning.Bins; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := desc.Apply(ch, binning.LowEdge(b)); err != nil {
			return err
		}
		for i, ev := range events {
			if ch.Fires(ev) {
				w := weights[i]
				sums.passW[b] += w
				sums.passW2[b] += w * w
			}
		}
	}

	return nil
}
