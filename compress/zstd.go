package compress

// ZstdCompressor provides Zstandard compression for curve payloads.
//
// This is the default codec for curve caches persisted between fit sessions,
// where payloads are written once and read many times.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
