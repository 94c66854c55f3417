// Package channel defines the contract between menufit and the selection
// logic it tunes.
//
// A Channel is one named, versioned decision function over an Event, plus an
// ordered set of float64 parameters. menufit never looks inside Fires; it only
// reads and writes parameters by name and asks whether the channel fires.
//
// # Implementing channels
//
// Most channels can be expressed with Func:
//
//	single := channel.NewFunc(channel.FuncSpec{
//	    Name:    "L1_SingleMu",
//	    Version: 0,
//	    Params:  []channel.Param{{Name: "threshold1", Value: 20}, {Name: "etaCut", Value: 2.1}},
//	    Fire: func(p *channel.Params, ev channel.Event) bool {
//	        rec := ev.(channel.Record)
//	        return rec.Field("muPt") >= p.At(0) && rec.Field("muEta") <= p.At(1)
//	    },
//	})
//
// # Registry
//
// Registry replaces a process-wide trigger table: it is created by the caller
// and handed to menus and fitters explicitly, so fit sessions stay independent.
// It also carries per-parameter binning suggestions for rate curves, which can
// be loaded from YAML with LoadBinning.
package channel
