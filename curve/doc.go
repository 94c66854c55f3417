// Package curve builds and inverts rate curves.
//
// A RateCurve records, for a single channel, the rate the channel would have
// over a sample at each candidate value of its primary threshold. Other
// thresholds that are scaled together with the primary move in fixed ratio to
// it; every other parameter stays at the value it had when the curve was
// built. The curve is then inverted to find the threshold giving a target
// rate.
//
// # Building
//
//	rc, err := curve.Build(ch, curve.BuildConfig{
//	    Primary:  "threshold1",
//	    Binning:  channel.Binning{Bins: 100, Lower: 0, Upper: 100},
//	}, s, curve.WithConcurrency(4))
//
// The sample is cut into fixed-size chunks that are scanned concurrently and
// merged in chunk order, so a curve is bit-identical for any concurrency.
//
// # Inversion
//
// FindThreshold returns the lowest threshold whose rate does not exceed the
// target, interpolating linearly between bins. Targets at or above the rate of
// the first bin return the lower edge. Targets below the rate of the last bin
// cannot be reached and fail with errs.ErrThresholdOutOfRange.
//
// # Persistence
//
// Curves and caches of curves serialize to a small versioned binary payload
// compressed with any codec of package compress:
//
//	data, err := rc.Encode(curve.WithCompression(format.CompressionS2))
//	restored, err := curve.Decode(data)
package curve
