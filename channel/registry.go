package channel

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/menufit/errs"
)

// Factory creates a channel with its default parameter values.
type Factory func() Channel

type binningKey struct {
	channel   string
	parameter string
}

// Registry maps channel names and versions to factories and holds rate-curve
// binning suggestions.
//
// A Registry is safe for concurrent use, so one can be shared by several fit
// sessions running in parallel.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]map[int]Factory
	binning   map[binningKey]Binning
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]map[int]Factory),
		binning:   make(map[binningKey]Binning),
	}
}

// Register adds a factory for name/version.
func (r *Registry) Register(name string, version int, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("nil factory for channel %q v%d", name, version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.factories[name]
	if !ok {
		versions = make(map[int]Factory)
		r.factories[name] = versions
	}
	if _, exists := versions[version]; exists {
		return fmt.Errorf("%w: %q v%d", errs.ErrDuplicateChannel, name, version)
	}
	versions[version] = factory

	return nil
}

// New creates a channel of the given name and version.
func (r *Registry) New(name string, version int) (Channel, error) {
	r.mu.RLock()
	factory, ok := r.factories[name][version]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q v%d", errs.ErrUnknownChannel, name, version)
	}

	return factory(), nil
}

// NewLatest creates the highest registered version of name.
func (r *Registry) NewLatest(name string) (Channel, error) {
	versions := r.Versions(name)
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownChannel, name)
	}

	return r.New(name, versions[len(versions)-1])
}

// Names returns the registered channel names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Versions returns the registered versions of name in ascending order.
func (r *Registry) Versions(name string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]int, 0, len(r.factories[name]))
	for v := range r.factories[name] {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	return versions
}

// SuggestBinning records the binning to use for rate curves of channel/parameter.
// Suggestions apply to every version of the channel.
func (r *Registry) SuggestBinning(channelName, parameter string, b Binning) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("binning for %s/%s: %w", channelName, parameter, err)
	}

	r.mu.Lock()
	r.binning[binningKey{channelName, parameter}] = b
	r.mu.Unlock()

	return nil
}

// SuggestedBinning returns the suggestion for channel/parameter, if any.
func (r *Registry) SuggestedBinning(channelName, parameter string) (Binning, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.binning[binningKey{channelName, parameter}]

	return b, ok
}

// BinningFor returns the suggestion for channel/parameter or DefaultBinning.
// A nil registry always returns DefaultBinning.
func (r *Registry) BinningFor(channelName, parameter string) Binning {
	if r == nil {
		return DefaultBinning()
	}
	if b, ok := r.SuggestedBinning(channelName, parameter); ok {
		return b
	}

	return DefaultBinning()
}

type binningFile struct {
	Binning []binningEntry `yaml:"binning"`
}

type binningEntry struct {
	Channel   string `yaml:"channel"`
	Parameter string `yaml:"parameter"`
	Binning   `yaml:",inline"`
}

// LoadBinning reads binning suggestions from YAML:
//
//	binning:
//	  - channel: L1_HTT
//	    parameter: threshold1
//	    bins: 100
//	    lower: 0
//	    upper: 800
//
// Entries are validated before any is stored, so a bad file leaves the
// registry unchanged.
func (r *Registry) LoadBinning(rd io.Reader) error {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)

	var file binningFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("failed to decode binning suggestions: %w", err)
	}

	for i, entry := range file.Binning {
		if entry.Channel == "" || entry.Parameter == "" {
			return fmt.Errorf("binning entry %d: channel and parameter are required", i)
		}
		if err := entry.Binning.Validate(); err != nil {
			return fmt.Errorf("binning entry %d (%s/%s): %w", i, entry.Channel, entry.Parameter, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range file.Binning {
		r.binning[binningKey{entry.Channel, entry.Parameter}] = entry.Binning
	}

	return nil
}
