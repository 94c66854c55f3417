package sample

import (
	"fmt"
	"strings"

	"github.com/arloliu/menufit/errs"
)

// ChannelRate is the rate of one menu channel.
type ChannelRate struct {
	Name    string
	Version int
	// Rate counts every event the channel selects.
	Rate      float64
	RateError float64
	// PureRate counts events selected by this channel and no other.
	PureRate      float64
	PureRateError float64
}

// RateResult is an immutable snapshot of a menu's rates over a sample.
type RateResult struct {
	totalRate      float64
	totalRateError float64
	channels       []ChannelRate
}

// NewRateResult builds a result from precomputed values, e.g. when restoring
// results produced elsewhere.
func NewRateResult(totalRate, totalRateError float64, channels []ChannelRate) *RateResult {
	return &RateResult{
		totalRate:      totalRate,
		totalRateError: totalRateError,
		channels:       append([]ChannelRate(nil), channels...),
	}
}

// TotalRate returns the correlated rate of the whole menu.
func (r *RateResult) TotalRate() float64 {
	return r.totalRate
}

// TotalRateError returns the statistical error on TotalRate.
func (r *RateResult) TotalRateError() float64 {
	return r.totalRateError
}

// Len returns the number of channels.
func (r *RateResult) Len() int {
	return len(r.channels)
}

// Channel returns the rate of the channel at menu position i.
func (r *RateResult) Channel(i int) (ChannelRate, error) {
	if i < 0 || i >= len(r.channels) {
		return ChannelRate{}, fmt.Errorf("%w: %d (result has %d channels)", errs.ErrIndexOutOfRange, i, len(r.channels))
	}

	return r.channels[i], nil
}

// Channels returns a copy of the per-channel rates in menu order.
func (r *RateResult) Channels() []ChannelRate {
	return append([]ChannelRate(nil), r.channels...)
}

// String renders a table of per-channel and total rates.
func (r *RateResult) String() string {
	var sb strings.Builder
	for _, c := range r.channels {
		fmt.Fprintf(&sb, "%-24s v%-3d rate %12.4f ± %-10.4f pure %12.4f ± %-10.4f\n",
			c.Name, c.Version, c.Rate, c.RateError, c.PureRate, c.PureRateError)
	}
	fmt.Fprintf(&sb, "%-29s rate %12.4f ± %-10.4f\n", "Total", r.totalRate, r.totalRateError)

	return sb.String()
}
