package fitter

import (
	"fmt"
	"slices"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/curve"
	"github.com/arloliu/menufit/errs"
)

// Scaled is a parameter moved in fixed ratio to the primary threshold.
type Scaled struct {
	Name  string
	Ratio float64
}

// ScalingGroup is the set of parameters of one channel that move together
// when its threshold is fitted.
//
// For a channel whose thresholds are correlated every threshold belongs to the
// group, with ratios taken from the values at creation. Otherwise only the
// primary threshold is moved.
type ScalingGroup struct {
	desc curve.Descriptor
}

// NewScalingGroup creates the group for ch. Parameter names are validated here
// so that later updates cannot fail on a misspelled name.
func NewScalingGroup(ch channel.Channel) (*ScalingGroup, error) {
	primary, coScaled := channel.ScaledParameters(ch)
	if primary == "" {
		return nil, fmt.Errorf("%w: channel %s has no parameters to fit", errs.ErrUnknownParameter, ch.Name())
	}

	desc, err := curve.Describe(ch, primary, coScaled)
	if err != nil {
		return nil, err
	}

	return &ScalingGroup{desc: desc}, nil
}

// Primary returns the name of the primary threshold.
func (g *ScalingGroup) Primary() string {
	return g.desc.Primary
}

// CoScaled returns the parameters moved with the primary.
func (g *ScalingGroup) CoScaled() []Scaled {
	out := make([]Scaled, len(g.desc.CoScaled))
	for i, name := range g.desc.CoScaled {
		out[i] = Scaled{Name: name, Ratio: g.desc.Ratios[i]}
	}

	return out
}

// Names returns the primary followed by the co-scaled parameter names.
func (g *ScalingGroup) Names() []string {
	return append([]string{g.desc.Primary}, g.desc.CoScaled...)
}

// Apply sets the primary of ch to t and every co-scaled parameter to t*ratio.
func (g *ScalingGroup) Apply(ch channel.Channel, t float64) error {
	return g.desc.Apply(ch, t)
}

func (g *ScalingGroup) buildConfig(binning channel.Binning) curve.BuildConfig {
	return curve.BuildConfig{
		Primary:  g.desc.Primary,
		CoScaled: slices.Clone(g.desc.CoScaled),
		Binning:  binning,
	}
}
