package curve

import (
	"math/rand/v2"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/sample"
)

func singleJet(threshold float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:    "L1_SingleJet",
		Version: 1,
		Params: []channel.Param{
			{Name: "threshold1", Value: threshold},
			{Name: "etaCut", Value: 3},
		},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			rec := ev.(channel.Record)
			return rec.Field("jet") >= p.At(0) && rec.Field("eta") <= p.At(1)
		},
	})
}

func doubleMu(leg1, leg2 float64) *channel.Func {
	return channel.NewFunc(channel.FuncSpec{
		Name:       "L1_DoubleMu",
		Version:    1,
		Correlated: true,
		Params: []channel.Param{
			{Name: "leg1threshold1", Value: leg1},
			{Name: "leg2threshold1", Value: leg2},
		},
		Fire: func(p *channel.Params, ev channel.Event) bool {
			rec := ev.(channel.Record)
			return rec.Field("mu1") >= p.At(0) && rec.Field("mu2") >= p.At(1)
		},
	})
}

// linearSample has one unit-weight event at every jet value 0.5, 1.5, ..., 99.5
// and event rate 100, so a SingleJet curve over 100 bins on [0, 100] has rate
// 100-b in bin b.
func linearSample() *sample.MemorySample {
	s := sample.NewMemorySample(100)
	for i := 0; i < 100; i++ {
		s.Append(channel.NewRecord(map[string]float64{"jet": float64(i) + 0.5}))
	}

	return s
}

func randomSample(n int) *sample.MemorySample {
	rng := rand.New(rand.NewPCG(7, 11))
	s := sample.NewMemorySample(40000)
	for i := 0; i < n; i++ {
		s.Append(channel.Record{
			W: 0.5 + rng.Float64(),
			Fields: map[string]float64{
				"jet": rng.ExpFloat64() * 20,
				"eta": rng.Float64() * 5,
				"mu1": rng.ExpFloat64() * 10,
				"mu2": rng.ExpFloat64() * 5,
			},
		})
	}

	return s
}
