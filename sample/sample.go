// Package sample defines the event-sample contract and the correlated rate
// evaluation of a menu over a sample.
//
// The correlated (total) rate counts each event once no matter how many
// channels select it, so overlapping channels make the total smaller than the
// sum of the per-channel rates. A channel's pure rate counts only events that
// no other channel in the menu selects.
//
// Rates are weighted selection fractions scaled by the sample's event rate:
//
//	rate  = eventRate * Σw(selected) / Σw(all)
//	error = eventRate * sqrt(Σw²(selected)) / Σw(all)
package sample

import (
	"fmt"
	"math"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/menu"
)

// Sample is a finite, indexable set of events.
type Sample interface {
	NumberOfEvents() int
	// Event returns the i-th event, 0 <= i < NumberOfEvents().
	Event(i int) channel.Event
	// EventRate is the scale converting a selection fraction into a rate.
	EventRate() float64
	SetEventRate(rate float64)
	// Rate evaluates the correlated rate of m over the sample.
	Rate(m *menu.Menu) (*RateResult, error)
}

// MemorySample keeps all events in memory.
type MemorySample struct {
	events    []channel.Event
	eventRate float64
	sumW      float64
}

var _ Sample = (*MemorySample)(nil)

// NewMemorySample creates a sample with the given event rate.
func NewMemorySample(eventRate float64, events ...channel.Event) *MemorySample {
	s := &MemorySample{eventRate: eventRate}
	for _, ev := range events {
		s.Append(ev)
	}

	return s
}

// Append adds an event.
func (s *MemorySample) Append(ev channel.Event) {
	s.events = append(s.events, ev)
	s.sumW += ev.Weight()
}

// NumberOfEvents implements Sample.
func (s *MemorySample) NumberOfEvents() int {
	return len(s.events)
}

// Event implements Sample.
func (s *MemorySample) Event(i int) channel.Event {
	return s.events[i]
}

// EventRate implements Sample.
func (s *MemorySample) EventRate() float64 {
	return s.eventRate
}

// SetEventRate implements Sample.
func (s *MemorySample) SetEventRate(rate float64) {
	s.eventRate = rate
}

// TotalWeight returns the sum of event weights.
func (s *MemorySample) TotalWeight() float64 {
	return s.sumW
}

// Rate implements Sample. Events are processed in index order.
func (s *MemorySample) Rate(m *menu.Menu) (*RateResult, error) {
	return Evaluate(s, m)
}

// Evaluate computes the correlated rate of m over any Sample.
//
// Events are processed in index order, so the result is deterministic for a
// given sample.
func Evaluate(s Sample, m *menu.Menu) (*RateResult, error) {
	n := s.NumberOfEvents()
	channels := m.Len()

	var (
		sumW, passW, passW2 float64
		chW                 = make([]float64, channels)
		chW2                = make([]float64, channels)
		pureW               = make([]float64, channels)
		pureW2              = make([]float64, channels)
		decisions           []bool
	)

	for i := 0; i < n; i++ {
		ev := s.Event(i)
		w := ev.Weight()
		sumW += w

		var fired int
		decisions, fired = m.Decisions(ev, decisions)
		if fired == 0 {
			continue
		}

		passW += w
		passW2 += w * w
		for c, ok := range decisions {
			if !ok {
				continue
			}
			chW[c] += w
			chW2[c] += w * w
			if fired == 1 {
				pureW[c] += w
				pureW2[c] += w * w
			}
		}
	}

	if n == 0 || sumW <= 0 {
		return nil, fmt.Errorf("%w: %d events, total weight %g", errs.ErrEmptySample, n, sumW)
	}

	scale := s.EventRate() / sumW
	result := &RateResult{
		totalRate:      passW * scale,
		totalRateError: math.Sqrt(passW2) * scale,
		channels:       make([]ChannelRate, channels),
	}
	for c, ch := range m.Channels() {
		result.channels[c] = ChannelRate{
			Name:          ch.Name(),
			Version:       ch.Version(),
			Rate:          chW[c] * scale,
			RateError:     math.Sqrt(chW2[c]) * scale,
			PureRate:      pureW[c] * scale,
			PureRateError: math.Sqrt(pureW2[c]) * scale,
		}
	}

	return result, nil
}
