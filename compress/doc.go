// Package compress provides the codecs used to shrink serialized rate curves.
//
// A rate curve payload is a channel descriptor followed by a short run of
// float64 bin contents. Curves for smooth channels compress well because the
// tail bins of a falling rate curve are mostly zero.
//
// Supported algorithms:
//   - None: payload stored as-is
//   - Zstd: best ratio, used by default for curve caches written to disk
//   - S2: fast, moderate ratio
//   - LZ4: fastest decompression
//
// Zstd is pure Go (klauspost/compress) by default. Building with the
// `cgozstd` tag switches to the cgo binding in valyala/gozstd; both produce
// standard Zstandard frames, so payloads are interchangeable.
//
// Usage:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// All codecs are stateless values and safe for concurrent use.
package compress
