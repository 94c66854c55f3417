package fitter

import (
	"math/rand/v2"
	"sync"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/menu"
	"github.com/arloliu/menufit/sample"
)

const testEventRate = 200

// testSample has independent exponential observables a, b and c with mean 20
// and a flag set on half of the events. Single-event rate steps are 0.005.
var testSample = sync.OnceValue(func() *sample.MemorySample {
	rng := rand.New(rand.NewPCG(2013, 6))
	s := sample.NewMemorySample(testEventRate)
	for i := 0; i < 40000; i++ {
		flag := 0.0
		if i%2 == 0 {
			flag = 1
		}
		s.Append(channel.NewRecord(map[string]float64{
			"a":    rng.ExpFloat64() * 20,
			"b":    rng.ExpFloat64() * 20,
			"c":    rng.ExpFloat64() * 20,
			"flag": flag,
		}))
	}

	return s
})

func cut(name, field string, threshold float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:   name,
		Params: []channel.Param{{Name: "threshold1", Value: threshold}},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			return ev.(channel.Record).Field(field) >= p.At(0)
		},
	})
}

func flagged(threshold float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:   "L1_Flagged",
		Params: []channel.Param{{Name: "threshold1", Value: threshold}},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			rec := ev.(channel.Record)
			return rec.Field("flag") == 1 && rec.Field("a") >= p.At(0)
		},
	})
}

func pair(correlated bool, leg1, leg2 float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:       "L1_Pair",
		Correlated: correlated,
		Params: []channel.Param{
			{Name: "leg1threshold1", Value: leg1},
			{Name: "leg2threshold1", Value: leg2},
			{Name: "window", Value: 1000},
		},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			rec := ev.(channel.Record)
			return rec.Field("a") >= p.At(0) && rec.Field("b") >= p.At(1) && rec.Field("a") < p.At(2)
		},
	})
}

func fraction(f float64) menu.Constraint {
	c, err := menu.FractionOfBandwidth(f)
	if err != nil {
		panic(err)
	}

	return c
}

func fixedRate(r float64) menu.Constraint {
	c, err := menu.FixedRate(r)
	if err != nil {
		panic(err)
	}

	return c
}

// countingSample counts menu evaluations.
type countingSample struct {
	sample.Sample
	rateCalls int
}

func (c *countingSample) Rate(m *menu.Menu) (*sample.RateResult, error) {
	c.rateCalls++
	return c.Sample.Rate(m)
}

func parameter(ch channel.Channel, name string) float64 {
	v, err := ch.Parameter(name)
	if err != nil {
		panic(err)
	}

	return v
}
