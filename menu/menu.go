// Package menu holds an ordered set of channels, each paired with one constraint.
//
// A Menu owns its channels: Add stores a deep copy, Clone deep-copies channels
// and constraints. Channel returns the owned instance, so parameter writes
// through it change the menu. A Menu is not safe for concurrent mutation; in
// particular a menu must not be modified while a fitter is running Fit on it.
package menu

import (
	"fmt"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
)

// Menu is an ordered sequence of channels with one constraint each.
// len(channels) == len(constraints) at all times.
type Menu struct {
	registry    *channel.Registry
	channels    []channel.Channel
	constraints []Constraint
}

// New creates an empty menu. registry may be nil if channels are only added as values.
func New(registry *channel.Registry) *Menu {
	return &Menu{registry: registry}
}

// Registry returns the registry the menu was created with.
func (m *Menu) Registry() *channel.Registry {
	return m.registry
}

// Len returns the number of channels.
func (m *Menu) Len() int {
	return len(m.channels)
}

// Add appends a copy of ch with a FixedThresholds constraint and returns its position.
func (m *Menu) Add(ch channel.Channel) int {
	return m.AddWithConstraint(ch, FixedThresholds())
}

// AddWithConstraint appends a copy of ch with constraint c and returns its position.
func (m *Menu) AddWithConstraint(ch channel.Channel, c Constraint) int {
	m.channels = append(m.channels, ch.Clone())
	m.constraints = append(m.constraints, c)

	return len(m.channels) - 1
}

// AddByName creates a channel from the registry, appends it with a
// FixedThresholds constraint and returns the owned instance.
func (m *Menu) AddByName(name string, version int) (channel.Channel, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("%w: %q v%d (menu has no registry)", errs.ErrUnknownChannel, name, version)
	}

	ch, err := m.registry.New(name, version)
	if err != nil {
		return nil, err
	}
	m.channels = append(m.channels, ch)
	m.constraints = append(m.constraints, FixedThresholds())

	return ch, nil
}

// Channel returns the channel at position i.
func (m *Menu) Channel(i int) (channel.Channel, error) {
	if i < 0 || i >= len(m.channels) {
		return nil, fmt.Errorf("%w: %d (menu has %d channels)", errs.ErrIndexOutOfRange, i, len(m.channels))
	}

	return m.channels[i], nil
}

// Constraint returns the constraint of the channel at position i.
func (m *Menu) Constraint(i int) (Constraint, error) {
	if i < 0 || i >= len(m.constraints) {
		return Constraint{}, fmt.Errorf("%w: %d (menu has %d channels)", errs.ErrIndexOutOfRange, i, len(m.constraints))
	}

	return m.constraints[i], nil
}

// SetConstraint replaces the constraint of the channel at position i.
func (m *Menu) SetConstraint(i int, c Constraint) error {
	if i < 0 || i >= len(m.constraints) {
		return fmt.Errorf("%w: %d (menu has %d channels)", errs.ErrIndexOutOfRange, i, len(m.constraints))
	}
	m.constraints[i] = c

	return nil
}

// Channels returns the owned channels in menu order. The slice is a copy; the channels are not.
func (m *Menu) Channels() []channel.Channel {
	out := make([]channel.Channel, len(m.channels))
	copy(out, m.channels)

	return out
}

// Clone returns a deep copy sharing only the registry.
func (m *Menu) Clone() *Menu {
	out := &Menu{
		registry:    m.registry,
		channels:    make([]channel.Channel, len(m.channels)),
		constraints: make([]Constraint, len(m.constraints)),
	}
	for i, ch := range m.channels {
		out.channels[i] = ch.Clone()
	}
	copy(out.constraints, m.constraints)

	return out
}

// Fires reports whether at least one channel selects ev.
func (m *Menu) Fires(ev channel.Event) bool {
	for _, ch := range m.channels {
		if ch.Fires(ev) {
			return true
		}
	}

	return false
}

// Decisions evaluates every channel on ev and writes the results into dst,
// which is grown to Len() if needed. It returns dst and the number of channels that fired.
func (m *Menu) Decisions(ev channel.Event, dst []bool) ([]bool, int) {
	if cap(dst) < len(m.channels) {
		dst = make([]bool, len(m.channels))
	}
	dst = dst[:len(m.channels)]

	fired := 0
	for i, ch := range m.channels {
		dst[i] = ch.Fires(ev)
		if dst[i] {
			fired++
		}
	}

	return dst, fired
}
