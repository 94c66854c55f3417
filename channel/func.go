package channel

// FireFunc decides whether an event is selected given the channel's parameters.
type FireFunc func(p *Params, ev Event) bool

// FuncSpec describes a Func channel.
type FuncSpec struct {
	Name       string
	Version    int
	Correlated bool
	Params     []Param
	Fire       FireFunc
}

// Func is a Channel backed by a FireFunc.
type Func struct {
	name       string
	version    int
	correlated bool
	params     *Params
	fire       FireFunc
}

var _ Channel = (*Func)(nil)

// NewFunc creates a channel from spec.
func NewFunc(spec FuncSpec) *Func {
	return &Func{
		name:       spec.Name,
		version:    spec.Version,
		correlated: spec.Correlated,
		params:     NewParams(spec.Params...),
		fire:       spec.Fire,
	}
}

// Name implements Channel.
func (f *Func) Name() string { return f.name }

// Version implements Channel.
func (f *Func) Version() int { return f.version }

// ParameterNames implements Channel.
func (f *Func) ParameterNames() []string { return f.params.Names() }

// Parameter implements Channel.
func (f *Func) Parameter(name string) (float64, error) { return f.params.Get(name) }

// SetParameter implements Channel.
func (f *Func) SetParameter(name string, value float64) error { return f.params.Set(name, value) }

// ThresholdsAreCorrelated implements Channel.
func (f *Func) ThresholdsAreCorrelated() bool { return f.correlated }

// Fires reports false when no FireFunc was given.
func (f *Func) Fires(ev Event) bool {
	if f.fire == nil {
		return false
	}

	return f.fire(f.params, ev)
}

// Clone copies the parameter values; the FireFunc is shared.
func (f *Func) Clone() Channel {
	return &Func{
		name:       f.name,
		version:    f.version,
		correlated: f.correlated,
		params:     f.params.Clone(),
		fire:       f.fire,
	}
}
