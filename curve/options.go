package curve

import (
	"fmt"
	"runtime"

	"github.com/arloliu/menufit/endian"
	"github.com/arloliu/menufit/format"
	"github.com/arloliu/menufit/internal/options"
)

// DefaultChunkSize is the number of events scanned per task when building a curve.
const DefaultChunkSize = 4096

// BuildOptions configures curve construction.
type BuildOptions struct {
	concurrency int
	chunkSize   int
}

func defaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		concurrency: runtime.GOMAXPROCS(0),
		chunkSize:   DefaultChunkSize,
	}
}

// BuildOption configures Build and BuildCache.
type BuildOption = options.Option[*BuildOptions]

// WithConcurrency bounds the number of chunks scanned at once. n must be positive.
func WithConcurrency(n int) BuildOption {
	return options.New(func(o *BuildOptions) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		o.concurrency = n

		return nil
	})
}

// WithChunkSize sets the number of events per scan task. The chunk size
// determines the summation order, so curves built with different chunk sizes
// may differ in the last bits.
func WithChunkSize(n int) BuildOption {
	return options.New(func(o *BuildOptions) error {
		if n <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", n)
		}
		o.chunkSize = n

		return nil
	})
}

// EncodeOptions configures curve and cache serialization.
type EncodeOptions struct {
	compression format.CompressionType
	engine      endian.EndianEngine
}

func defaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}
}

// EncodeOption configures Encode and EncodeCache.
type EncodeOption = options.Option[*EncodeOptions]

// WithCompression selects the payload codec. The default is Zstd.
func WithCompression(t format.CompressionType) EncodeOption {
	return options.NoError(func(o *EncodeOptions) {
		o.compression = t
	})
}

// WithBigEndian writes the payload in big-endian byte order.
func WithBigEndian() EncodeOption {
	return options.NoError(func(o *EncodeOptions) {
		o.engine = endian.GetBigEndianEngine()
	})
}
