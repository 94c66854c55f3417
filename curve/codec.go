package curve

import (
	"fmt"
	"math"

	"github.com/arloliu/menufit/channel"
	"github.com/arloliu/menufit/compress"
	"github.com/arloliu/menufit/endian"
	"github.com/arloliu/menufit/errs"
	"github.com/arloliu/menufit/format"
	"github.com/arloliu/menufit/internal/options"
)

// Payload layout:
//
//	byte 0-3   magic ("MFRC" for a curve, "MFCC" for a cache)
//	byte 4     format version
//	byte 5     byte order marker (endian.LittleEndianMarker or endian.BigEndianMarker)
//	byte 6     format.CompressionType of the body
//	byte 7     reserved, zero
//	byte 8-    body, compressed
//
// A curve body is its descriptor, binning and bins. A cache body is a uint32
// curve count followed by that many curve bodies.
const (
	headerSize    = 8
	formatVersion = format.PayloadFormatVersion
	maxNameLength = math.MaxUint16
)

var (
	curveMagic = [4]byte([]byte(format.CurveMagic))
	cacheMagic = [4]byte([]byte(format.CacheMagic))
)

// MarshalBinary encodes the curve with the default options.
func (c *RateCurve) MarshalBinary() ([]byte, error) {
	return c.Encode()
}

// Encode serializes the curve.
func (c *RateCurve) Encode(opts ...EncodeOption) ([]byte, error) {
	o := defaultEncodeOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	body, err := appendCurve(o.engine, nil, c)
	if err != nil {
		return nil, err
	}

	return seal(curveMagic, body, o)
}

// Decode restores a curve written by Encode.
func Decode(data []byte) (*RateCurve, error) {
	engine, body, err := open(curveMagic, data)
	if err != nil {
		return nil, err
	}

	r := &reader{engine: engine, data: body}
	c, err := r.curve()
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidCurveData, r.remaining())
	}

	return c, nil
}

func seal(magic [4]byte, body []byte, o *EncodeOptions) ([]byte, error) {
	codec, err := compress.CreateCodec(o.compression, "curve payload")
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("failed to compress curve payload: %w", err)
	}

	out := make([]byte, headerSize, headerSize+len(compressed))
	copy(out[0:4], magic[:])
	out[4] = formatVersion
	out[5] = endian.Marker(o.engine)
	out[6] = byte(o.compression)

	return append(out, compressed...), nil
}

func open(magic [4]byte, data []byte) (endian.EndianEngine, []byte, error) {
	if len(data) < headerSize {
		return nil, nil, fmt.Errorf("%w: payload of %d bytes is shorter than the header", errs.ErrInvalidCurveData, len(data))
	}
	if [4]byte(data[0:4]) != magic {
		return nil, nil, fmt.Errorf("%w: bad magic %q, want %q", errs.ErrInvalidCurveData, data[0:4], magic[:])
	}
	if data[4] != formatVersion {
		return nil, nil, fmt.Errorf("%w: unsupported format version %d", errs.ErrInvalidCurveData, data[4])
	}

	engine, ok := endian.FromMarker(data[5])
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown byte order marker %#x", errs.ErrInvalidCurveData, data[5])
	}

	codec, err := compress.GetCodec(format.CompressionType(data[6]))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errs.ErrInvalidCurveData, err)
	}

	body, err := codec.Decompress(data[headerSize:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errs.ErrInvalidCurveData, err)
	}

	return engine, body, nil
}

func appendCurve(engine endian.EndianEngine, buf []byte, c *RateCurve) ([]byte, error) {
	var err error
	d := c.desc

	if buf, err = appendString(engine, buf, d.Name); err != nil {
		return nil, err
	}
	buf = engine.AppendUint32(buf, uint32(int32(d.Version))) //nolint:gosec
	if buf, err = appendString(engine, buf, d.Primary); err != nil {
		return nil, err
	}

	buf = engine.AppendUint16(buf, uint16(len(d.CoScaled))) //nolint:gosec
	for i, name := range d.CoScaled {
		if buf, err = appendString(engine, buf, name); err != nil {
			return nil, err
		}
		buf = endian.AppendFloat64(engine, buf, d.Ratios[i])
	}

	buf = engine.AppendUint16(buf, uint16(len(d.Fixed))) //nolint:gosec
	for _, p := range d.Fixed {
		if buf, err = appendString(engine, buf, p.Name); err != nil {
			return nil, err
		}
		buf = endian.AppendFloat64(engine, buf, p.Value)
	}

	buf = engine.AppendUint32(buf, uint32(c.binning.Bins)) //nolint:gosec
	buf = endian.AppendFloat64(engine, buf, c.binning.Lower)
	buf = endian.AppendFloat64(engine, buf, c.binning.Upper)
	for i := range c.rates {
		buf = endian.AppendFloat64(engine, buf, c.rates[i])
		buf = endian.AppendFloat64(engine, buf, c.errors[i])
	}

	return buf, nil
}

func appendString(engine endian.EndianEngine, buf []byte, s string) ([]byte, error) {
	if len(s) > maxNameLength {
		return nil, fmt.Errorf("name of %d bytes exceeds maximum %d", len(s), maxNameLength)
	}
	buf = engine.AppendUint16(buf, uint16(len(s))) //nolint:gosec

	return append(buf, s...), nil
}

// reader decodes a body; every accessor fails with errs.ErrInvalidCurveData
// on truncated input.
type reader struct {
	engine endian.EndianEngine
	data   []byte
	off    int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: truncated at offset %d", errs.ErrInvalidCurveData, r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

func (r *reader) float64() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}

	return endian.Float64(r.engine, b), nil
}

func (r *reader) string() (string, error) {
	n, err := r.uint16()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (r *reader) param() (channel.Param, error) {
	name, err := r.string()
	if err != nil {
		return channel.Param{}, err
	}
	value, err := r.float64()
	if err != nil {
		return channel.Param{}, err
	}

	return channel.Param{Name: name, Value: value}, nil
}

func (r *reader) curve() (*RateCurve, error) {
	var (
		d   Descriptor
		err error
	)

	if d.Name, err = r.string(); err != nil {
		return nil, err
	}
	version, err := r.uint32()
	if err != nil {
		return nil, err
	}
	d.Version = int(int32(version)) //nolint:gosec
	if d.Primary, err = r.string(); err != nil {
		return nil, err
	}

	nCo, err := r.uint16()
	if err != nil {
		return nil, err
	}
	for range nCo {
		p, err := r.param()
		if err != nil {
			return nil, err
		}
		d.CoScaled = append(d.CoScaled, p.Name)
		d.Ratios = append(d.Ratios, p.Value)
	}

	nFixed, err := r.uint16()
	if err != nil {
		return nil, err
	}
	for range nFixed {
		p, err := r.param()
		if err != nil {
			return nil, err
		}
		d.Fixed = append(d.Fixed, p)
	}

	bins, err := r.uint32()
	if err != nil {
		return nil, err
	}
	var binning channel.Binning
	binning.Bins = int(bins)
	if binning.Lower, err = r.float64(); err != nil {
		return nil, err
	}
	if binning.Upper, err = r.float64(); err != nil {
		return nil, err
	}
	if err := binning.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCurveData, err)
	}
	if r.remaining() < binning.Bins*16 {
		return nil, fmt.Errorf("%w: %d bins but %d bytes left", errs.ErrInvalidCurveData, binning.Bins, r.remaining())
	}

	rates := make([]float64, binning.Bins)
	rateErrors := make([]float64, binning.Bins)
	for i := range rates {
		rates[i], _ = r.float64()
		rateErrors[i], _ = r.float64()
	}

	return New(d, binning, rates, rateErrors)
}
