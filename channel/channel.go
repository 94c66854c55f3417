package channel

import "strings"

// Event is one entry of a sample. Concrete payloads are opaque to menufit.
type Event interface {
	// Weight is the statistical weight of the event.
	Weight() float64
}

// Channel is one selection unit of a menu.
//
// Parameter names are fixed for a given (Name, Version) pair. Implementations
// are not required to be safe for concurrent use; callers that evaluate a
// channel from several goroutines work on clones.
type Channel interface {
	Name() string
	Version() int
	// ParameterNames returns the parameter names in declaration order.
	ParameterNames() []string
	// Parameter returns the value of name, or errs.ErrUnknownParameter.
	Parameter(name string) (float64, error)
	// SetParameter sets the value of name, or returns errs.ErrUnknownParameter.
	SetParameter(name string, value float64) error
	// ThresholdsAreCorrelated reports whether the channel's thresholds only make
	// sense when moved together.
	ThresholdsAreCorrelated() bool
	// Fires reports whether the channel selects ev with its current parameters.
	Fires(ev Event) bool
	// Clone returns a deep copy.
	Clone() Channel
}

// ThresholdNames returns the threshold parameters of ch in declaration order.
//
// Thresholds are the parameters whose name contains "threshold" (any case),
// e.g. "threshold1" or "leg2threshold1". A channel without such parameters is
// treated as having its first parameter as the only threshold.
func ThresholdNames(ch Channel) []string {
	names := ch.ParameterNames()

	var thresholds []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), "threshold") {
			thresholds = append(thresholds, name)
		}
	}

	if len(thresholds) == 0 && len(names) > 0 {
		return names[:1:1]
	}

	return thresholds
}

// ScaledParameters returns the parameters a fit moves for ch: the primary
// threshold and, when the channel's thresholds are correlated, every other
// threshold. Uncorrelated channels only have their primary threshold moved.
// primary is empty for a channel without parameters.
func ScaledParameters(ch Channel) (primary string, coScaled []string) {
	thresholds := ThresholdNames(ch)
	if len(thresholds) == 0 {
		return "", nil
	}
	if ch.ThresholdsAreCorrelated() {
		coScaled = thresholds[1:]
	}

	return thresholds[0], coScaled
}

// Snapshot returns the current parameter values of ch keyed by name.
func Snapshot(ch Channel) map[string]float64 {
	names := ch.ParameterNames()
	values := make(map[string]float64, len(names))
	for _, name := range names {
		v, err := ch.Parameter(name)
		if err != nil {
			continue
		}
		values[name] = v
	}

	return values
}

// Record is a generic event: a weight plus named numeric observables.
type Record struct {
	W      float64
	Fields map[string]float64
}

var _ Event = Record{}

// NewRecord creates a unit-weight record.
func NewRecord(fields map[string]float64) Record {
	return Record{W: 1, Fields: fields}
}

// Weight implements Event.
func (r Record) Weight() float64 {
	return r.W
}

// Field returns the named observable, or 0 when absent.
func (r Record) Field(name string) float64 {
	return r.Fields[name]
}
