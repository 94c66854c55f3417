package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/menu"
)

func cutChannel(field string, threshold float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:   "L1_" + field,
		Params: []channel.Param{{Name: "threshold1", Value: threshold}},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			return ev.(channel.Record).Field(field) >= p.At(0)
		},
	})
}

func record(w, a, b float64) channel.Record {
	return channel.Record{W: w, Fields: map[string]float64{"A": a, "B": b}}
}

func TestMemorySample_Basics(t *testing.T) {
	s := NewMemorySample(40, record(1, 1, 2), record(2, 3, 4))
	require.Equal(t, 2, s.NumberOfEvents())
	require.Equal(t, 40.0, s.EventRate())
	require.Equal(t, 3.0, s.TotalWeight())
	require.Equal(t, 2.0, s.Event(1).Weight())

	s.SetEventRate(10)
	require.Equal(t, 10.0, s.EventRate())

	s.Append(record(0.5, 0, 0))
	require.Equal(t, 3, s.NumberOfEvents())
	require.Equal(t, 3.5, s.TotalWeight())
}

func TestRate_CorrelatedAndPure(t *testing.T) {
	// A fires on events 0,1; B fires on events 1,2; event 3 selected by none.
	s := NewMemorySample(100,
		record(1, 10, 0),
		record(1, 10, 10),
		record(1, 0, 10),
		record(1, 0, 0),
	)

	m := menu.New(nil)
	m.Add(cutChannel("A", 5))
	m.Add(cutChannel("B", 5))

	res, err := s.Rate(m)
	require.NoError(t, err)

	require.InDelta(t, 75.0, res.TotalRate(), 1e-12)
	require.InDelta(t, 100*math.Sqrt(3)/4, res.TotalRateError(), 1e-12)
	require.Equal(t, 2, res.Len())

	a, err := res.Channel(0)
	require.NoError(t, err)
	require.Equal(t, "L1_A", a.Name)
	require.InDelta(t, 50.0, a.Rate, 1e-12)
	require.InDelta(t, 100*math.Sqrt(2)/4, a.RateError, 1e-12)
	require.InDelta(t, 25.0, a.PureRate, 1e-12)
	require.InDelta(t, 25.0, a.PureRateError, 1e-12)

	b, err := res.Channel(1)
	require.NoError(t, err)
	require.InDelta(t, 50.0, b.Rate, 1e-12)
	require.InDelta(t, 25.0, b.PureRate, 1e-12)

	require.Less(t, res.TotalRate(), a.Rate+b.Rate, "overlap is counted once")

	_, err = res.Channel(2)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestRate_Weighted(t *testing.T) {
	s := NewMemorySample(1, record(3, 10, 0), record(1, 0, 0))

	m := menu.New(nil)
	m.Add(cutChannel("A", 5))

	res, err := s.Rate(m)
	require.NoError(t, err)
	require.InDelta(t, 0.75, res.TotalRate(), 1e-12)
	require.InDelta(t, 0.75, res.TotalRateError(), 1e-12)
}

func TestRate_EmptyMenu(t *testing.T) {
	s := NewMemorySample(100, record(1, 10, 10))

	res, err := s.Rate(menu.New(nil))
	require.NoError(t, err)
	require.Zero(t, res.TotalRate())
	require.Zero(t, res.Len())
}

func TestRate_EmptySample(t *testing.T) {
	m := menu.New(nil)
	m.Add(cutChannel("A", 5))

	_, err := NewMemorySample(100).Rate(m)
	require.ErrorIs(t, err, errs.ErrEmptySample)

	_, err = NewMemorySample(100, record(0, 10, 10)).Rate(m)
	require.ErrorIs(t, err, errs.ErrEmptySample)
}

func TestRate_DoesNotMutateMenu(t *testing.T) {
	s := NewMemorySample(100, record(1, 10, 0))
	m := menu.New(nil)
	m.Add(cutChannel("A", 5))

	_, err := s.Rate(m)
	require.NoError(t, err)

	ch, err := m.Channel(0)
	require.NoError(t, err)
	v, err := ch.Parameter("threshold1")
	require.NoError(t, err)
	require.Equal(t, 5.0, v)
}

func TestRateResult_Snapshot(t *testing.T) {
	in := []ChannelRate{{Name: "x", Rate: 1}}
	res := NewRateResult(1, 0.1, in)
	in[0].Rate = 99

	got := res.Channels()
	require.Equal(t, 1.0, got[0].Rate)
	got[0].Rate = 42

	c, err := res.Channel(0)
	require.NoError(t, err)
	require.Equal(t, 1.0, c.Rate)
	require.Contains(t, res.String(), "Total")
}
