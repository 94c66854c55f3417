// Package endian provides the byte-order engine used to write curve payloads.
//
// EndianEngine merges binary.ByteOrder and binary.AppendByteOrder so that the
// curve codec can both append while encoding and index while decoding through
// one value. Curve payloads record their byte order in the header, so a cache
// written on one host reads back on any other.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = endian.AppendFloat64(engine, buf, rate)
//
// All functions are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// Satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Byte-order markers stored in curve payload headers.
const (
	LittleEndianMarker byte = 'L'
	BigEndianMarker    byte = 'B'
)

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Marker returns the header marker for engine.
func Marker(engine EndianEngine) byte {
	if engine == EndianEngine(binary.BigEndian) {
		return BigEndianMarker
	}

	return LittleEndianMarker
}

// FromMarker returns the engine for a header marker, or false for an unknown marker.
func FromMarker(marker byte) (EndianEngine, bool) {
	switch marker {
	case LittleEndianMarker:
		return binary.LittleEndian, true
	case BigEndianMarker:
		return binary.BigEndian, true
	default:
		return nil, false
	}
}

// AppendFloat64 appends the IEEE-754 bits of v.
func AppendFloat64(engine EndianEngine, buf []byte, v float64) []byte {
	return engine.AppendUint64(buf, math.Float64bits(v))
}

// Float64 decodes a float64 from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}
