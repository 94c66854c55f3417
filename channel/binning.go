package channel

import (
	"fmt"
	"math"

	"github.com/arloliu/menufit/errs"
)

// Default rate-curve binning used when no suggestion is registered.
const (
	DefaultBins  = 100
	DefaultLower = 0.0
	DefaultUpper = 100.0
)

// Binning is the threshold range scanned when building a rate curve.
type Binning struct {
	Bins  int     `yaml:"bins"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// DefaultBinning returns 100 bins over [0, 100].
func DefaultBinning() Binning {
	return Binning{Bins: DefaultBins, Lower: DefaultLower, Upper: DefaultUpper}
}

// Validate checks for at least one bin and a finite, non-empty range.
func (b Binning) Validate() error {
	if b.Bins <= 0 {
		return fmt.Errorf("%w: bin count %d", errs.ErrInvalidBinning, b.Bins)
	}
	if math.IsNaN(b.Lower) || math.IsInf(b.Lower, 0) || math.IsNaN(b.Upper) || math.IsInf(b.Upper, 0) {
		return fmt.Errorf("%w: non-finite edges [%g, %g]", errs.ErrInvalidBinning, b.Lower, b.Upper)
	}
	if b.Upper <= b.Lower {
		return fmt.Errorf("%w: upper edge %g not above lower edge %g", errs.ErrInvalidBinning, b.Upper, b.Lower)
	}

	return nil
}

// Width returns the width of one bin.
func (b Binning) Width() float64 {
	return (b.Upper - b.Lower) / float64(b.Bins)
}

// LowEdge returns the low edge of bin i.
func (b Binning) LowEdge(i int) float64 {
	return b.Lower + float64(i)*b.Width()
}
