// Package sample draws starting points for escape-time iteration.
package sample

import (
	"math/rand/v2"

	"github.com/marben/bbrot"
)

// radius of the disk outside of which every orbit escapes on the first step
const radius = 2

// Disk draws points uniformly from the closed disk |c| ≤ 2 by rejection
// sampling the enclosing square. A Disk is not safe for concurrent use,
// every worker owns its own.
type Disk[F bbrot.Float] struct {
	rng *rand.Rand
}

// NewDisk returns a sampler reading from src.
func NewDisk[F bbrot.Float](src rand.Source) *Disk[F] {
	return &Disk[F]{rng: rand.New(src)}
}

// Seeded returns a reproducible sampler. Samplers sharing seed but using
// different streams produce independent sequences.
func Seeded[F bbrot.Float](seed, stream uint64) *Disk[F] {
	return NewDisk[F](rand.NewPCG(seed, stream))
}

// Fresh returns a sampler seeded from the runtime's entropy.
func Fresh[F bbrot.Float]() *Disk[F] {
	return Seeded[F](rand.Uint64(), rand.Uint64())
}

// Next returns the next point, |c|² ≤ 4.
func (d *Disk[F]) Next() bbrot.Point[F] {
	for {
		c := bbrot.Point[F]{Re: d.coord(), Im: d.coord()}
		if c.Norm2() <= radius*radius {
			return c
		}
	}
}

// coord is uniform in [-2, 2)
func (d *Disk[F]) coord() F {
	return F(d.rng.Float64()*2*radius - radius)
}
