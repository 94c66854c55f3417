package channel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/menufit/errs"
)

func newDoubleMu() *Func {
	return NewFunc(FuncSpec{
		Name:       "L1_DoubleMu",
		Version:    1,
		Correlated: true,
		Params: []Param{
			{Name: "leg1threshold1", Value: 10},
			{Name: "leg2threshold1", Value: 5},
			{Name: "etaCut", Value: 2.1},
		},
		Fire: func(p *Params, ev Event) bool {
			rec := ev.(Record)
			return rec.Field("mu1Pt") >= p.At(0) && rec.Field("mu2Pt") >= p.At(1)
		},
	})
}

func TestFunc_Parameters(t *testing.T) {
	ch := newDoubleMu()

	require.Equal(t, "L1_DoubleMu", ch.Name())
	require.Equal(t, 1, ch.Version())
	require.True(t, ch.ThresholdsAreCorrelated())
	require.Equal(t, []string{"leg1threshold1", "leg2threshold1", "etaCut"}, ch.ParameterNames())

	v, err := ch.Parameter("leg2threshold1")
	require.NoError(t, err)
	require.Equal(t, 5.0, v)

	require.NoError(t, ch.SetParameter("etaCut", 1.5))
	v, err = ch.Parameter("etaCut")
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
}

func TestFunc_UnknownParameter(t *testing.T) {
	ch := newDoubleMu()

	_, err := ch.Parameter("threshold9")
	require.ErrorIs(t, err, errs.ErrUnknownParameter)
	require.Contains(t, err.Error(), "threshold9")

	err = ch.SetParameter("threshold9", 1)
	require.ErrorIs(t, err, errs.ErrUnknownParameter)
}

func TestFunc_Fires(t *testing.T) {
	ch := newDoubleMu()

	require.True(t, ch.Fires(NewRecord(map[string]float64{"mu1Pt": 12, "mu2Pt": 6})))
	require.False(t, ch.Fires(NewRecord(map[string]float64{"mu1Pt": 12, "mu2Pt": 4})))

	require.NoError(t, ch.SetParameter("leg1threshold1", 13))
	require.False(t, ch.Fires(NewRecord(map[string]float64{"mu1Pt": 12, "mu2Pt": 6})))

	require.False(t, NewFunc(FuncSpec{Name: "L1_Nothing"}).Fires(NewRecord(nil)))
}

func TestFunc_CloneIsDeep(t *testing.T) {
	ch := newDoubleMu()
	clone := ch.Clone()

	require.NoError(t, clone.SetParameter("leg1threshold1", 99))

	orig, err := ch.Parameter("leg1threshold1")
	require.NoError(t, err)
	require.Equal(t, 10.0, orig)

	copied, err := clone.Parameter("leg1threshold1")
	require.NoError(t, err)
	require.Equal(t, 99.0, copied)
}

func TestThresholdNames(t *testing.T) {
	t.Run("filters thresholds in declaration order", func(t *testing.T) {
		require.Equal(t, []string{"leg1threshold1", "leg2threshold1"}, ThresholdNames(newDoubleMu()))
	})

	t.Run("falls back to first parameter", func(t *testing.T) {
		ch := NewFunc(FuncSpec{Name: "L1_Cut", Params: []Param{{Name: "ptCut", Value: 3}, {Name: "etaCut", Value: 2}}})
		require.Equal(t, []string{"ptCut"}, ThresholdNames(ch))
	})

	t.Run("no parameters", func(t *testing.T) {
		require.Empty(t, ThresholdNames(NewFunc(FuncSpec{Name: "L1_ZeroBias"})))
	})

	t.Run("case insensitive", func(t *testing.T) {
		ch := NewFunc(FuncSpec{Name: "L1_X", Params: []Param{{Name: "eta", Value: 1}, {Name: "Threshold", Value: 2}}})
		require.Equal(t, []string{"Threshold"}, ThresholdNames(ch))
	})
}

func TestScaledParameters(t *testing.T) {
	primary, co := ScaledParameters(newDoubleMu())
	require.Equal(t, "leg1threshold1", primary)
	require.Equal(t, []string{"leg2threshold1"}, co)

	uncorrelated := newDoubleMu()
	uncorrelated.correlated = false
	primary, co = ScaledParameters(uncorrelated)
	require.Equal(t, "leg1threshold1", primary)
	require.Empty(t, co)

	primary, co = ScaledParameters(NewFunc(FuncSpec{Name: "L1_ZeroBias"}))
	require.Empty(t, primary)
	require.Empty(t, co)
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot(newDoubleMu())
	require.Equal(t, map[string]float64{"leg1threshold1": 10, "leg2threshold1": 5, "etaCut": 2.1}, snap)
}

func TestParams_DuplicateDeclarationIgnored(t *testing.T) {
	p := NewParams(Param{Name: "a", Value: 1}, Param{Name: "a", Value: 2}, Param{Name: "b", Value: 3})
	require.Equal(t, 2, p.Len())
	v, err := p.Get("a")
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
	require.Equal(t, 1, p.Index("b"))
	require.Equal(t, -1, p.Index("c"))
}
