// Package fourier provides a real-to-complex FFT façade over
// [github.com/MeKo-Christian/algo-fft], backed by a process-wide,
// mutex-guarded cache of plans keyed by transform size.
//
// algo-fft's [algofft.Plan] operates on full-length complex buffers:
// a real-valued transform of length N still requires an N-element
// complex input/output array, with the caller responsible for filling
// the conjugate-symmetric upper half before calling Inverse. This
// package hides that bookkeeping and exposes the N/2+1-bin
// real-to-complex interface that the rest of the engine expects:
// callers work with N/2+1 complex bins and this package fills in the
// mirrored upper half internally.
package fourier

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Transform performs forward and inverse real-to-complex FFTs of a
// fixed power-of-two size, obtained from the process-wide [Cache]. A
// Transform is shared across every Stretcher that happens to use the
// same transform size, so it must not itself hold any per-call scratch
// state; each Forward/Inverse call borrows its scratch buffer from a
// size-keyed [sync.Pool] instead, making concurrent Stretcher instances
// safe even though they share the same cached plan and Transform.
type Transform struct {
	size int
	plan *algofft.Plan[complex128]
}

var (
	scratchPoolsMu sync.RWMutex
	scratchPools   = make(map[int]*sync.Pool)
)

// scratchPool returns the process-wide scratch-buffer pool for
// transforms of the given size, building it on first use.
func scratchPool(size int) *sync.Pool {
	scratchPoolsMu.RLock()
	pool, ok := scratchPools[size]
	scratchPoolsMu.RUnlock()
	if ok {
		return pool
	}

	scratchPoolsMu.Lock()
	defer scratchPoolsMu.Unlock()
	if pool, ok := scratchPools[size]; ok {
		return pool
	}

	pool = &sync.Pool{New: func() any {
		buf := make([]complex128, size)
		return &buf
	}}
	scratchPools[size] = pool
	return pool
}

// Bins returns the number of non-redundant complex bins (N/2+1) for a
// transform of the given power-of-two log2 size.
func Bins(log2Size int) int {
	return TransformLength(log2Size)/2 + 1
}

// TransformLength returns the transform length N = 1<<log2Size.
func TransformLength(log2Size int) int {
	return 1 << uint(log2Size)
}

// Size returns the transform length this Transform was built for.
func (tr *Transform) Size() int {
	return tr.size
}

// BinCount returns the number of non-redundant complex bins this
// Transform produces, N/2+1.
func (tr *Transform) BinCount() int {
	return tr.size/2 + 1
}

// Forward computes the real-to-complex FFT of src (length N, time
// domain) into dst (length N/2+1, the non-redundant half-spectrum).
func (tr *Transform) Forward(dst []complex128, src []float64) error {
	if len(src) != tr.size {
		return fmt.Errorf("fourier: forward input length %d, want %d", len(src), tr.size)
	}
	if len(dst) != tr.BinCount() {
		return fmt.Errorf("fourier: forward output length %d, want %d", len(dst), tr.BinCount())
	}

	pool := scratchPool(tr.size)
	full := pool.Get().(*[]complex128)
	defer pool.Put(full)

	for i, v := range src {
		(*full)[i] = complex(v, 0)
	}

	if err := tr.plan.Forward(*full, *full); err != nil {
		return fmt.Errorf("fourier: forward FFT failed: %w", err)
	}

	copy(dst, (*full)[:tr.BinCount()])

	return nil
}

// Inverse computes the complex-to-real inverse FFT of src (length
// N/2+1, the non-redundant half-spectrum) into dst (length N, time
// domain). src's upper half is reconstructed internally from the
// conjugate symmetry a real-valued signal's spectrum must have.
func (tr *Transform) Inverse(dst []float64, src []complex128) error {
	bins := tr.BinCount()
	if len(src) != bins {
		return fmt.Errorf("fourier: inverse input length %d, want %d", len(src), bins)
	}
	if len(dst) != tr.size {
		return fmt.Errorf("fourier: inverse output length %d, want %d", len(dst), tr.size)
	}

	pool := scratchPool(tr.size)
	full := pool.Get().(*[]complex128)
	defer pool.Put(full)

	copy((*full)[:bins], src)
	for i := bins; i < tr.size; i++ {
		(*full)[i] = complexConj((*full)[tr.size-i])
	}

	if err := tr.plan.Inverse(*full, *full); err != nil {
		return fmt.Errorf("fourier: inverse FFT failed: %w", err)
	}

	for i, v := range *full {
		dst[i] = real(v)
	}

	return nil
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Cache lazily builds and caches one [Transform] per distinct
// power-of-two size, guarded by a mutex exactly as the original
// implementation's Fourier::Cache does with std::mutex — plan
// construction only happens once per size across the lifetime of the
// process, no matter how many Stretcher instances request it.
type Cache struct {
	mu         sync.Mutex
	transforms map[int]*Transform
}

// process is the default, process-wide cache instance.
var process = NewCache()

// NewCache constructs an empty cache. Most callers should use
// [Acquire], which shares the process-wide cache; NewCache exists for
// tests that want isolation from other concurrently-running tests.
func NewCache() *Cache {
	return &Cache{transforms: make(map[int]*Transform)}
}

// Acquire returns the shared Transform for the given power-of-two log2
// size from the process-wide cache, building it on first use.
func Acquire(log2Size int) (*Transform, error) {
	return process.Acquire(log2Size)
}

// Acquire returns this cache's Transform for the given log2 size,
// building and storing it on first use.
func (c *Cache) Acquire(log2Size int) (*Transform, error) {
	size := TransformLength(log2Size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if tr, ok := c.transforms[size]; ok {
		return tr, nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("fourier: failed to create plan for size %d: %w", size, err)
	}

	tr := &Transform{
		size: size,
		plan: plan,
	}
	c.transforms[size] = tr

	return tr, nil
}
