package curve

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/sample"
)

func buildLinear(t *testing.T) *RateCurve {
	t.Helper()

	rc, err := Build(singleJet(20), BuildConfig{Primary: "threshold1"}, linearSample())
	require.NoError(t, err)

	return rc
}

func TestBuild_LinearRates(t *testing.T) {
	rc := buildLinear(t)

	require.Equal(t, 100, rc.Len())
	require.Equal(t, channel.DefaultBinning(), rc.Binning())

	rates := rc.Rates()
	errors := rc.Errors()
	for b := 0; b < rc.Len(); b++ {
		require.InDelta(t, float64(100-b), rates[b], 1e-9, "bin %d", b)
		require.InDelta(t, math.Sqrt(float64(100-b)), errors[b], 1e-9, "bin %d", b)
	}
}

func TestFindThreshold(t *testing.T) {
	rc := buildLinear(t)

	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"interpolated", 50.5, 49.5},
		{"exact bin", 50, 50},
		{"first bin", 100, 0},
		{"above first bin clamps to lower edge", 200, 0},
		{"last bin", 1, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rc.FindThreshold(tt.rate)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFindThreshold_OutOfRange(t *testing.T) {
	rc := buildLinear(t)

	for _, rate := range []float64{0.5, 0, -1, math.NaN()} {
		_, err := rc.FindThreshold(rate)
		require.ErrorIs(t, err, errs.ErrThresholdOutOfRange, "rate %g", rate)
	}
}

func TestFindThreshold_Idempotent(t *testing.T) {
	rc, err := Build(singleJet(20), BuildConfig{Primary: "threshold1"}, randomSample(2000))
	require.NoError(t, err)

	rates := rc.Rates()
	target := rates[len(rates)/4]

	first, err := rc.FindThreshold(target)
	require.NoError(t, err)
	second, err := rc.FindThreshold(target)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.LessOrEqual(t, rc.RateAt(first), target+1e-9)
}

func TestFindThreshold_NeverBelowLowerEdge(t *testing.T) {
	rc, err := Build(singleJet(20), BuildConfig{
		Primary: "threshold1",
		Binning: channel.Binning{Bins: 40, Lower: 5, Upper: 45},
	}, randomSample(500))
	require.NoError(t, err)

	maxRate := rc.Rates()[0]
	for _, rate := range []float64{maxRate, maxRate * 2, math.Inf(1)} {
		got, err := rc.FindThreshold(rate)
		require.NoError(t, err)
		require.Equal(t, 5.0, got)
	}
}

func TestRateAt(t *testing.T) {
	rc := buildLinear(t)

	require.InDelta(t, 50.5, rc.RateAt(49.5), 1e-9)
	require.Equal(t, 100.0, rc.RateAt(-10))
	require.Equal(t, 1.0, rc.RateAt(1000))
	require.InDelta(t, math.Sqrt(50), rc.ErrorAt(50), 1e-9)

	th, err := rc.FindThreshold(rc.RateAt(37.25))
	require.NoError(t, err)
	require.InDelta(t, 37.25, th, 1e-9)
}

func TestFindThresholdWithError(t *testing.T) {
	rc := buildLinear(t)

	th, errLow, errHigh, err := rc.FindThresholdWithError(50)
	require.NoError(t, err)
	require.InDelta(t, 50, th, 1e-9)
	require.Greater(t, errLow, 5.0)
	require.Less(t, errLow, 10.0)
	require.Greater(t, errHigh, 5.0)
	require.Less(t, errHigh, 10.0)

	for _, rate := range []float64{-1, 100, 99999999, 0.5, math.NaN()} {
		_, _, _, err := rc.FindThresholdWithError(rate)
		require.ErrorIs(t, err, errs.ErrThresholdOutOfRange, "rate %g", rate)
	}
}

func TestBuild_CoScaledParameters(t *testing.T) {
	s := randomSample(1500)
	ch := doubleMu(10, 5)
	binning := channel.Binning{Bins: 30, Lower: 0, Upper: 30}

	rc, err := Build(ch, BuildConfig{
		Primary:  "leg1threshold1",
		CoScaled: []string{"leg2threshold1"},
		Binning:  binning,
	}, s, WithChunkSize(128))
	require.NoError(t, err)

	desc := rc.Descriptor()
	require.Equal(t, []float64{0.5}, desc.Ratios)
	require.Empty(t, desc.Fixed)

	// Every bin must agree with a direct evaluation at that threshold.
	rates := rc.Rates()
	for b := 0; b < binning.Bins; b += 7 {
		th := binning.LowEdge(b)
		probe := doubleMu(th, th*0.5)
		require.InDelta(t, directRate(s, probe), rates[b], 1e-6, "bin %d", b)
	}

	leg1, err := ch.Parameter("leg1threshold1")
	require.NoError(t, err)
	require.Equal(t, 10.0, leg1, "Build must not modify the channel")
}

func directRate(s sample.Sample, ch channel.Channel) float64 {
	var sumW, passW float64
	for i := 0; i < s.NumberOfEvents(); i++ {
		ev := s.Event(i)
		sumW += ev.Weight()
		if ch.Fires(ev) {
			passW += ev.Weight()
		}
	}

	return s.EventRate() * passW / sumW
}

func TestBuild_DeterministicAcrossConcurrency(t *testing.T) {
	s := randomSample(3000)
	cfg := BuildConfig{Primary: "threshold1", Binning: channel.Binning{Bins: 50, Lower: 0, Upper: 80}}

	serial, err := Build(singleJet(20), cfg, s, WithConcurrency(1), WithChunkSize(97))
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		parallel, err := Build(singleJet(20), cfg, s, WithConcurrency(workers), WithChunkSize(97))
		require.NoError(t, err)
		require.Equal(t, serial.Rates(), parallel.Rates(), "workers %d", workers)
		require.Equal(t, serial.Errors(), parallel.Errors(), "workers %d", workers)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("unknown primary", func(t *testing.T) {
		_, err := Build(singleJet(20), BuildConfig{Primary: "threshold9"}, linearSample())
		require.ErrorIs(t, err, errs.ErrUnknownParameter)
	})

	t.Run("zero primary with co-scaled", func(t *testing.T) {
		_, err := Build(doubleMu(0, 5), BuildConfig{
			Primary:  "leg1threshold1",
			CoScaled: []string{"leg2threshold1"},
		}, linearSample())
		require.ErrorIs(t, err, errs.ErrZeroPrimaryParameter)
	})

	t.Run("invalid binning", func(t *testing.T) {
		_, err := Build(singleJet(20), BuildConfig{
			Primary: "threshold1",
			Binning: channel.Binning{Bins: 10, Lower: 5, Upper: 5},
		}, linearSample())
		require.ErrorIs(t, err, errs.ErrInvalidBinning)
	})

	t.Run("empty sample", func(t *testing.T) {
		_, err := Build(singleJet(20), BuildConfig{Primary: "threshold1"}, sample.NewMemorySample(100))
		require.ErrorIs(t, err, errs.ErrEmptySample)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := BuildContext(ctx, singleJet(20), BuildConfig{Primary: "threshold1"}, linearSample())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := Build(singleJet(20), BuildConfig{Primary: "threshold1"}, linearSample(), WithConcurrency(0))
		require.Error(t, err)
		_, err = Build(singleJet(20), BuildConfig{Primary: "threshold1"}, linearSample(), WithChunkSize(-1))
		require.Error(t, err)
	})
}

func TestNew_Validates(t *testing.T) {
	desc := Descriptor{Name: "L1_X", Primary: "threshold1"}
	binning := channel.Binning{Bins: 2, Lower: 0, Upper: 2}

	rc, err := New(desc, binning, []float64{2, 1}, []float64{0.1, 0.1})
	require.NoError(t, err)
	require.Equal(t, 2, rc.Len())

	_, err = New(desc, binning, []float64{2}, []float64{0.1, 0.1})
	require.ErrorIs(t, err, errs.ErrInvalidCurveData)

	_, err = New(desc, channel.Binning{}, nil, nil)
	require.ErrorIs(t, err, errs.ErrInvalidCurveData)

	_, err = New(Descriptor{Name: "L1_X", Primary: "threshold1", CoScaled: []string{"a"}}, binning,
		[]float64{2, 1}, []float64{0, 0})
	require.ErrorIs(t, err, errs.ErrInvalidCurveData)

	_, err = New(Descriptor{Name: "L1_X"}, binning, []float64{2, 1}, []float64{0, 0})
	require.ErrorIs(t, err, errs.ErrInvalidCurveData)
}

func TestMatches(t *testing.T) {
	ch := doubleMu(10, 5)
	rc, err := Build(ch, BuildConfig{
		Primary:  "leg1threshold1",
		CoScaled: []string{"leg2threshold1"},
		Binning:  channel.Binning{Bins: 10, Lower: 0, Upper: 20},
	}, randomSample(200))
	require.NoError(t, err)

	require.True(t, rc.Matches(ch))

	moved := doubleMu(16, 8)
	require.True(t, rc.Matches(moved), "same ratio at another threshold")

	require.True(t, rc.Matches(doubleMu(0, 0)), "ratio not checked at zero primary")

	require.False(t, rc.Matches(doubleMu(16, 4)), "ratio changed")
	require.False(t, rc.Matches(singleJet(10)))

	jet, err := Build(singleJet(20), BuildConfig{Primary: "threshold1"}, linearSample())
	require.NoError(t, err)
	other := singleJet(40)
	require.True(t, jet.Matches(other))
	require.NoError(t, other.SetParameter("etaCut", 2.5))
	require.False(t, jet.Matches(other), "non-scaled parameter changed")
}

func TestDescriptorKey(t *testing.T) {
	desc, err := Describe(singleJet(20), "threshold1", nil)
	require.NoError(t, err)

	require.Equal(t, desc.Key(), KeyOf(singleJet(20), "threshold1", nil))
	require.Equal(t, desc.Key(), KeyOf(singleJet(55), "threshold1", nil), "primary value is not part of the key")

	renamed := channel.NewFunc(channel.FuncSpec{
		Name:    "L1_SingleJetWide",
		Version: 1,
		Params: []channel.Param{
			{Name: "threshold1", Value: 20},
			{Name: "etaCut", Value: 3},
		},
	})
	require.NotEqual(t, desc.Key(), KeyOf(renamed, "threshold1", nil))

	narrow := singleJet(20)
	require.NoError(t, narrow.SetParameter("etaCut", 2.5))
	require.NotEqual(t, desc.Key(), KeyOf(narrow, "threshold1", nil))

	require.NotEqual(t, desc.Key(), KeyOf(singleJet(20), "etaCut", nil))
}
