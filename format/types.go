// Package format holds the small enum types shared across menufit packages.
package format

type (
	ConstraintType  uint8
	CompressionType uint8
)

const (
	FixedThresholds     ConstraintType = 0x1 // FixedThresholds leaves the channel's parameters untouched by fitting.
	FixedRate           ConstraintType = 0x2 // FixedRate targets an absolute rate for the channel.
	FractionOfBandwidth ConstraintType = 0x3 // FractionOfBandwidth targets a fraction of the total requested rate.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c ConstraintType) String() string {
	switch c {
	case FixedThresholds:
		return "FIXED_THRESHOLDS"
	case FixedRate:
		return "FIXED_RATE"
	case FractionOfBandwidth:
		return "FRACTION_OF_BANDWIDTH"
	default:
		return "Unknown"
	}
}

// Fittable reports whether a channel with this constraint has its thresholds moved by a fit.
func (c ConstraintType) Fittable() bool {
	return c == FixedRate || c == FractionOfBandwidth
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Curve payload identification, stored in the first bytes of encoded curves and caches.
const (
	CurveMagic           = "MFRC"
	CacheMagic           = "MFCC"
	PayloadFormatVersion = 1
)
