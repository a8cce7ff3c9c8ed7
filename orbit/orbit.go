// Package orbit decides how long the orbit of z ↦ z² + c survives before
// leaving the radius 2 disk, and replays the orbit of escaping points.
package orbit

import (
	"iter"

	"github.com/marben/bbrot"
)

// escape threshold on the squared magnitude
const escapeNorm2 = 4

// Path is the orbit tail of one starting point: z₁ … zₙ, excluding z₀ = 0.
// It is empty for points judged non-escaping.
type Path[F bbrot.Float] struct {
	c          bbrot.Point[F]
	n          uint64
	iterations uint64
}

// C returns the starting point of the orbit.
func (p Path[F]) C() bbrot.Point[F] { return p.c }

// Len is the escape time, 0 for non-escaping points.
func (p Path[F]) Len() uint64 { return p.n }

// Iterations is the number of steps Evaluate spent on the point,
// including the work wasted on points that turned out not to escape.
func (p Path[F]) Iterations() uint64 { return p.iterations }

// Points replays the orbit tail.
func (p Path[F]) Points() iter.Seq[bbrot.Point[F]] {
	return func(yield func(bbrot.Point[F]) bool) {
		var z bbrot.Point[F]
		for range p.n {
			z = step(z, p.c)
			if !yield(z) {
				return
			}
		}
	}
}

// Evaluate iterates c for at most maxIter steps.
// Points inside the main cardioid or the period-2 bulb are rejected without
// iterating, periodic orbits are rejected once the cycle detector sees a repeat
// and orbits still bounded after maxIter steps are abandoned.
func Evaluate[F bbrot.Float](c bbrot.Point[F], maxIter uint64) Path[F] {
	if InCardioid(c) || InBulb(c) {
		return Path[F]{c: c}
	}

	var z bbrot.Point[F]
	var cd CycleDetector[F]
	for i := range maxIter {
		if z.Norm2() > escapeNorm2 {
			return Path[F]{c: c, n: i, iterations: i}
		}
		if cd.Check(z) {
			return Path[F]{c: c, iterations: i}
		}
		z = step(z, c)
	}
	return Path[F]{c: c, iterations: maxIter}
}

func step[F bbrot.Float](z, c bbrot.Point[F]) bbrot.Point[F] {
	return bbrot.Point[F]{
		Re: z.Re*z.Re - z.Im*z.Im + c.Re,
		Im: 2*z.Re*z.Im + c.Im,
	}
}

// InCardioid reports whether c lies inside the main cardioid.
func InCardioid[F bbrot.Float](c bbrot.Point[F]) bool {
	const quarter = 0.25
	x := c.Re - quarter
	q := x*x + c.Im*c.Im
	return q*(q+x) < quarter*c.Im*c.Im
}

// InBulb reports whether c lies inside the period-2 bulb centered at -1 with radius 1/4.
func InBulb[F bbrot.Float](c bbrot.Point[F]) bool {
	x := c.Re + 1
	return x*x+c.Im*c.Im < 1.0/16
}
