package curve

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/internal/hash"
)

// ratioTolerance is the relative tolerance used when comparing a channel's
// current co-scaled ratios against those a curve was built with.
const ratioTolerance = 1e-9

// Descriptor identifies the channel configuration a curve was built for.
type Descriptor struct {
	Name    string
	Version int
	// Primary is the parameter the curve is binned in.
	Primary string
	// CoScaled parameters are set to primary*Ratios[i] at each bin.
	CoScaled []string
	Ratios   []float64
	// Fixed holds every other parameter in declaration order.
	Fixed []channel.Param
}

// Describe captures ch's configuration with primary and coScaled as the
// scaled parameters. Ratios are taken from ch's current values.
func Describe(ch channel.Channel, primary string, coScaled []string) (Descriptor, error) {
	primaryValue, err := ch.Parameter(primary)
	if err != nil {
		return Descriptor{}, fmt.Errorf("channel %s primary: %w", ch.Name(), err)
	}

	desc := Descriptor{
		Name:     ch.Name(),
		Version:  ch.Version(),
		Primary:  primary,
		CoScaled: slices.Clone(coScaled),
		Ratios:   make([]float64, len(coScaled)),
	}

	for i, name := range coScaled {
		value, err := ch.Parameter(name)
		if err != nil {
			return Descriptor{}, fmt.Errorf("channel %s co-scaled parameter: %w", ch.Name(), err)
		}
		if primaryValue == 0 {
			return Descriptor{}, fmt.Errorf("%w: channel %s, %s=0 with co-scaled %s",
				errs.ErrZeroPrimaryParameter, ch.Name(), primary, name)
		}
		desc.Ratios[i] = value / primaryValue
	}

	desc.Fixed = fixedParams(ch, primary, coScaled)

	return desc, nil
}

func fixedParams(ch channel.Channel, primary string, coScaled []string) []channel.Param {
	var fixed []channel.Param
	for _, name := range ch.ParameterNames() {
		if name == primary || slices.Contains(coScaled, name) {
			continue
		}
		v, err := ch.Parameter(name)
		if err != nil {
			continue
		}
		fixed = append(fixed, channel.Param{Name: name, Value: v})
	}

	return fixed
}

// Key returns the cache identity of the descriptor: the hashed channel name
// followed by version and parameter layout. Ratios are not part of the
// identity; Matches checks them.
func (d Descriptor) Key() uint64 {
	return identity(d.Name, d.Version, d.Primary, d.CoScaled, d.Fixed)
}

// KeyOf returns the identity a curve built for ch with the given scaled
// parameters would have.
func KeyOf(ch channel.Channel, primary string, coScaled []string) uint64 {
	return identity(ch.Name(), ch.Version(), primary, coScaled, fixedParams(ch, primary, coScaled))
}

func identity(name string, version int, primary string, coScaled []string, fixed []channel.Param) uint64 {
	k := hash.NewKey().Uint64(hash.ID(name)).Int(version).String(primary).Int(len(coScaled))
	for _, n := range coScaled {
		k.String(n)
	}
	k.Int(len(fixed))
	for _, p := range fixed {
		k.String(p.Name).Float64(p.Value)
	}

	return k.Sum()
}

// Apply sets the scaled parameters of ch for primary threshold t.
func (d Descriptor) Apply(ch channel.Channel, t float64) error {
	if err := ch.SetParameter(d.Primary, t); err != nil {
		return err
	}
	for i, name := range d.CoScaled {
		if err := ch.SetParameter(name, t*d.Ratios[i]); err != nil {
			return err
		}
	}

	return nil
}

// Matches reports whether a curve described by d is valid for ch as it is
// configured now. Co-scaled ratios are only compared when ch's primary is
// non-zero.
func (d Descriptor) Matches(ch channel.Channel) bool {
	if ch.Name() != d.Name || ch.Version() != d.Version {
		return false
	}

	primaryValue, err := ch.Parameter(d.Primary)
	if err != nil {
		return false
	}

	for i, name := range d.CoScaled {
		v, err := ch.Parameter(name)
		if err != nil {
			return false
		}
		if primaryValue != 0 && !closeEnough(v/primaryValue, d.Ratios[i]) {
			return false
		}
	}

	fixed := fixedParams(ch, d.Primary, d.CoScaled)
	if len(fixed) != len(d.Fixed) {
		return false
	}
	for i, p := range fixed {
		if p.Name != d.Fixed[i].Name || p.Value != d.Fixed[i].Value {
			return false
		}
	}

	return true
}

// Equal reports whether two descriptors are identical.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.Name == o.Name &&
		d.Version == o.Version &&
		d.Primary == o.Primary &&
		slices.Equal(d.CoScaled, o.CoScaled) &&
		slices.Equal(d.Ratios, o.Ratios) &&
		slices.Equal(d.Fixed, o.Fixed)
}

func (d Descriptor) clone() Descriptor {
	d.CoScaled = slices.Clone(d.CoScaled)
	d.Ratios = slices.Clone(d.Ratios)
	d.Fixed = slices.Clone(d.Fixed)

	return d
}

func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}

	return math.Abs(a-b) <= ratioTolerance*math.Max(math.Abs(a), math.Abs(b))
}
