package orbit

import (
	"math"

	"github.com/marben/bbrot"
)

// firstBudget is the number of values compared against the first checkpoint.
const firstBudget = 32

// CycleDetector finds exact repeats in a sequence using Brent's algorithm
// (the teleporting turtle). The zero value is ready to use.
type CycleDetector[F bbrot.Float] struct {
	budget  uint64 // values compared against the current checkpoint
	steps   uint64
	started bool
	turtle  bbrot.Point[F]
	hare    bbrot.Point[F]
}

// Check feeds the next value of the sequence and reports whether it equals
// the current checkpoint. Values compare bitwise, there is no tolerance.
func (d *CycleDetector[F]) Check(next bbrot.Point[F]) bool {
	if !d.started {
		nan := F(math.NaN())
		d.turtle = bbrot.Point[F]{Re: nan, Im: nan}
		d.budget = firstBudget
		d.started = true
	}
	if d.steps == d.budget {
		d.turtle = d.hare
		d.budget *= 2
		d.steps = 0
	}
	d.hare = next
	d.steps++
	return same(d.turtle, d.hare)
}

// same compares the bit patterns, so -0 and +0 differ and NaN never matches a finite value.
func same[F bbrot.Float](a, b bbrot.Point[F]) bool {
	return math.Float64bits(float64(a.Re)) == math.Float64bits(float64(b.Re)) &&
		math.Float64bits(float64(a.Im)) == math.Float64bits(float64(b.Im))
}
