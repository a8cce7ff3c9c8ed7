package render

import (
	"sync/atomic"
)

// Progress lets other goroutines observe a running computation.
// The zero value reports nothing claimed out of zero.
//
// A Progress may be shared by several runs. It then reports the one started last,
// each run keeps counting its own samples.
type Progress struct {
	current atomic.Pointer[claims]
}

// claims is the shared work counter of a single run.
type claims struct {
	claimed  atomic.Uint64
	target   uint64
	finished atomic.Bool
}

func (p *Progress) start(target uint64) *claims {
	c := &claims{target: target}
	p.current.Store(c)
	return c
}

// Snapshot returns the number of samples claimed so far, the target and
// whether all workers have joined.
func (p *Progress) Snapshot() (claimed, target uint64, finished bool) {
	c := p.current.Load()
	if c == nil {
		return 0, 0, false
	}
	// workers overshoot the counter by one each when they stop
	return min(c.claimed.Load(), c.target), c.target, c.finished.Load()
}
