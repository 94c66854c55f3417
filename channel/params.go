package channel

import (
	"fmt"
	"slices"

	"github.com/arloliu/menufit/errs"
)

// Param declares a parameter and its initial value.
type Param struct {
	Name  string
	Value float64
}

// Params is an ordered name→value store with a fixed set of names.
type Params struct {
	names  []string
	index  map[string]int
	values []float64
}

// NewParams creates a store from declarations. Later duplicates of a name are ignored.
func NewParams(decl ...Param) *Params {
	p := &Params{
		names:  make([]string, 0, len(decl)),
		index:  make(map[string]int, len(decl)),
		values: make([]float64, 0, len(decl)),
	}
	for _, d := range decl {
		if _, exists := p.index[d.Name]; exists {
			continue
		}
		p.index[d.Name] = len(p.names)
		p.names = append(p.names, d.Name)
		p.values = append(p.values, d.Value)
	}

	return p
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.names)
}

// Names returns a copy of the parameter names in declaration order.
func (p *Params) Names() []string {
	return slices.Clone(p.names)
}

// Get returns the value of name.
func (p *Params) Get(name string) (float64, error) {
	i, ok := p.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownParameter, name)
	}

	return p.values[i], nil
}

// Set assigns the value of name.
func (p *Params) Set(name string, value float64) error {
	i, ok := p.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownParameter, name)
	}
	p.values[i] = value

	return nil
}

// At returns the i-th parameter value. It panics if i is out of range.
func (p *Params) At(i int) float64 {
	return p.values[i]
}

// Index returns the position of name, or -1.
func (p *Params) Index(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}

	return -1
}

// Clone returns a deep copy. The name index is shared since names never change.
func (p *Params) Clone() *Params {
	return &Params{
		names:  p.names,
		index:  p.index,
		values: slices.Clone(p.values),
	}
}
