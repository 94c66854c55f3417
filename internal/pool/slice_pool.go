package pool

import "sync"

// float64SlicePool holds the per-chunk bin accumulators used while scanning a
// sample to build a rate curve.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a zeroed float64 slice of length size from the pool.
//
// The caller must call the returned cleanup function (typically with defer)
// once the slice is no longer referenced.
//
// Example:
//
//	sumW, cleanup := pool.GetFloat64Slice(bins)
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
