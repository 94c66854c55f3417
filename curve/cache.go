package curve

import (
	"fmt"
	"sync"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/internal/options"
	"github.com/arloliu/menufit/menu"
	"github.com/arloliu/menufit/sample"
)

// Cache holds precomputed curves keyed by channel configuration, so a fit can
// reuse curves instead of rescanning the sample.
//
// A Cache is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	byKey  map[uint64]*RateCurve
	curves []*RateCurve
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{byKey: make(map[uint64]*RateCurve)}
}

// Add stores c, replacing any curve with the same identity.
func (cc *Cache) Add(c *RateCurve) {
	key := c.desc.Key()

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if old, ok := cc.byKey[key]; ok {
		for i, existing := range cc.curves {
			if existing == old {
				cc.curves[i] = c
				break
			}
		}
	} else {
		cc.curves = append(cc.curves, c)
	}
	cc.byKey[key] = c
}

// Lookup returns a curve valid for ch as configured now, with primary and
// coScaled as its scaled parameters.
func (cc *Cache) Lookup(ch channel.Channel, primary string, coScaled []string) (*RateCurve, bool) {
	key := KeyOf(ch, primary, coScaled)

	cc.mu.RLock()
	c, ok := cc.byKey[key]
	cc.mu.RUnlock()

	if !ok || c.desc.Primary != primary || !c.Matches(ch) {
		return nil, false
	}

	return c, true
}

// Curves returns the cached curves in insertion order.
func (cc *Cache) Curves() []*RateCurve {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	out := make([]*RateCurve, len(cc.curves))
	copy(out, cc.curves)

	return out
}

// Len returns the number of cached curves.
func (cc *Cache) Len() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return len(cc.curves)
}

// Clone returns an independent cache holding the same curves. Curves are
// immutable and shared.
func (cc *Cache) Clone() *Cache {
	out := NewCache()
	for _, c := range cc.Curves() {
		out.Add(c)
	}

	return out
}

// BuildCache builds a curve for every channel of m that has parameters, using
// reg's binning suggestions for the primary threshold. reg may be nil.
func BuildCache(m *menu.Menu, s sample.Sample, reg *channel.Registry, opts ...BuildOption) (*Cache, error) {
	cc := NewCache()
	for _, ch := range m.Channels() {
		primary, coScaled := channel.ScaledParameters(ch)
		if primary == "" {
			continue
		}

		c, err := Build(ch, BuildConfig{
			Primary:  primary,
			CoScaled: coScaled,
			Binning:  reg.BinningFor(ch.Name(), primary),
		}, s, opts...)
		if err != nil {
			return nil, err
		}
		cc.Add(c)
	}

	return cc, nil
}

// EncodeCache serializes every curve of cc into one payload.
func EncodeCache(cc *Cache, opts ...EncodeOption) ([]byte, error) {
	o := defaultEncodeOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	curves := cc.Curves()
	body := o.engine.AppendUint32(nil, uint32(len(curves))) //nolint:gosec

	var err error
	for _, c := range curves {
		if body, err = appendCurve(o.engine, body, c); err != nil {
			return nil, fmt.Errorf("curve %s: %w", c.desc.Name, err)
		}
	}

	return seal(cacheMagic, body, o)
}

// DecodeCache restores a cache written by EncodeCache.
func DecodeCache(data []byte) (*Cache, error) {
	engine, body, err := open(cacheMagic, data)
	if err != nil {
		return nil, err
	}

	r := &reader{engine: engine, data: body}
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}

	cc := NewCache()
	for i := range n {
		c, err := r.curve()
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i, err)
		}
		cc.Add(c)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidCurveData, r.remaining())
	}

	return cc, nil
}
