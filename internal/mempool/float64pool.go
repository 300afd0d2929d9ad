// Package mempool provides sized buffer pools for correlation scratch space.
package mempool

import (
	"sync"
)

// Integral tables are rebuilt for every correlation run and discarded right
// after, which makes them the dominant allocation on the hot path. Buffers
// are pooled per size class instead.

var float64Pools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple of 1024 to reduce churn.
func sizeClass(n int) int {
	if n <= 1024 {
		return 1024
	}
	const step = 1024
	r := (n + step - 1) / step
	return r * step
}

// GetFloat64 retrieves a zeroed []float64 buffer of length n from the pool.
// The caller must return it via PutFloat64 when done.
func GetFloat64(n int) []float64 {
	cls := sizeClass(n)
	pAny, _ := float64Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float64, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]float64, n)
	}
	buf, ok := p.Get().([]float64)
	if !ok || cap(buf) < n {
		buf = make([]float64, cls)
	}
	buf = buf[:n]
	// Reused buffers carry stale sums from the previous run.
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutFloat64 returns a buffer to the pool. It is safe to pass a nil slice.
func PutFloat64(buf []float64) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float64Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float64, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return
	}
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}
