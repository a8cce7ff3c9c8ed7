// Package histogram holds the per pixel hit counters of a Buddhabrot rendering.
//
// Atomic is written concurrently by all workers during accumulation.
// Once they are done it is consolidated into a Field, which is read only
// and used for tone mapping and snapshots.
package histogram

import (
	"fmt"
	"sync/atomic"
)

// MaxCells caps width × height of every histogram, 1<<28 cells is a 16k × 16k frame.
const MaxCells = 1 << 28

func checkDimensions(width, height int) {
	if width <= 0 || height <= 0 || width > MaxCells/height {
		panic(fmt.Sprintf("histogram: invalid dimensions %dx%d", width, height))
	}
}

// Atomic is a width × height grid of counters safe for concurrent Hit calls.
type Atomic struct {
	counts        []atomic.Uint64
	width, height int
}

// NewAtomic allocates a zeroed grid.
// It panics on non-positive dimensions or more than MaxCells cells,
// callers validate their configuration first.
func NewAtomic(width, height int) *Atomic {
	checkDimensions(width, height)
	return &Atomic{
		counts: make([]atomic.Uint64, width*height),
		width:  width,
		height: height,
	}
}

// Hit increments the counter at (x, y) and reports whether it was in range.
// Out of range coordinates are ignored.
func (a *Atomic) Hit(x, y int) bool {
	if x < 0 || x >= a.width || y < 0 || y >= a.height {
		return false
	}
	a.counts[y*a.width+x].Add(1)
	return true
}

// Consolidate copies the counters into a Field.
// Must be called only after all writers have finished.
func (a *Atomic) Consolidate() *Field {
	f := New(a.width, a.height)
	for i := range a.counts {
		v := a.counts[i].Load()
		f.counts[i] = v
		f.total += v
	}
	return f
}

// Field is the consolidated, read only form of the histogram.
// Its total always equals the sum of its counters.
type Field struct {
	counts        []uint64
	width, height int
	total         uint64
}

// New returns an empty field.
func New(width, height int) *Field {
	checkDimensions(width, height)
	return &Field{
		counts: make([]uint64, width*height),
		width:  width,
		height: height,
	}
}

// FromCounts builds a field from row-major counters. counts is copied.
func FromCounts(width, height int, counts []uint64) (*Field, error) {
	if width <= 0 || height <= 0 || width > MaxCells/height {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(counts) != width*height {
		return nil, fmt.Errorf("got %d counters for %dx%d field", len(counts), width, height)
	}
	f := New(width, height)
	copy(f.counts, counts)
	for _, v := range counts {
		f.total += v
	}
	return f, nil
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }

// Total is the number of hits recorded in the field.
func (f *Field) Total() uint64 { return f.total }

// At returns the counter at (x, y). It panics when out of range.
func (f *Field) At(x, y int) uint64 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		panic(fmt.Sprintf("histogram: (%d, %d) out of %dx%d field", x, y, f.width, f.height))
	}
	return f.counts[y*f.width+x]
}

// Counts returns a copy of the row-major counters.
func (f *Field) Counts() []uint64 {
	out := make([]uint64, len(f.counts))
	copy(out, f.counts)
	return out
}

// Max returns the largest counter.
func (f *Field) Max() uint64 {
	var m uint64
	for _, v := range f.counts {
		m = max(m, v)
	}
	return m
}
