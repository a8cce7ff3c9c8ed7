// Package render accumulates the Buddhabrot histogram on all available CPUs.
//
// Workers share a single claim counter: each one atomically claims the next
// sample index, draws a starting point from its own sampler, evaluates the
// orbit and records every orbit point that lands in the frame. Work is
// balanced by the counter alone, a worker stuck on a long orbit doesn't hold
// back the others.
package render

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marben/bbrot"
	"github.com/marben/bbrot/histogram"
	"github.com/marben/bbrot/orbit"
	"github.com/marben/bbrot/sample"
)

// ErrLostHits reports a consolidated histogram that disagrees with the hits the workers recorded.
var ErrLostHits = errors.New("histogram lost hits")

// Stats describes one finished computation.
// Hits always equals the total of the returned field.
type Stats struct {
	Samples uint64 // starting points evaluated
	Escaped uint64 // samples with a non-empty orbit tail
	Points  uint64 // orbit points produced by escaping samples
	Hits    uint64 // orbit points recorded in the frame
	// Iterations counts every step spent in the escape loop,
	// including the ones wasted on samples that never escaped.
	Iterations uint64
	Workers    int
	Elapsed time.Duration
}

func (s *Stats) add(o Stats) {
	s.Samples += o.Samples
	s.Escaped += o.Escaped
	s.Points += o.Points
	s.Hits += o.Hits
	s.Iterations += o.Iterations
}

type options struct {
	workers  int
	seed     uint64
	seeded   bool
	progress *Progress
	logger   *log.Logger
}

type Option func(*options)

// WithWorkers overrides the worker count, which defaults to runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed makes the per worker samplers reproducible. Worker i uses stream i of seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithProgress publishes the claimed sample count to p while running.
func WithProgress(p *Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithLogger logs a summary of every computation to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.progress == nil {
		o.progress = new(Progress)
	}
	return o
}

// Run evaluates cfg.Samples starting points and returns the consolidated histogram.
// Every worker has joined by the time Run returns.
func Run[F bbrot.Float](cfg bbrot.Config, opts ...Option) (*histogram.Field, Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	o := newOptions(opts)
	start := time.Now()

	field := histogram.NewAtomic(cfg.Width, cfg.Height)
	frame := NewFrame[F](cfg)
	maxIter := cfg.Iterations()
	run := o.progress.start(cfg.Samples)

	perWorker := make([]Stats, o.workers)
	var wg sync.WaitGroup
	for i := range o.workers {
		disk := sample.Fresh[F]()
		if o.seeded {
			disk = sample.Seeded[F](o.seed, uint64(i))
		}
		wg.Go(func() {
			perWorker[i] = work(field, frame, disk, &run.claimed, cfg.Samples, maxIter)
		})
	}
	wg.Wait()
	run.finished.Store(true)

	stats := Stats{Workers: o.workers}
	for _, s := range perWorker {
		stats.add(s)
	}
	stats.Elapsed = time.Since(start)

	f := field.Consolidate()
	if f.Total() != stats.Hits {
		return nil, stats, fmt.Errorf("%w: field total %d != recorded hits %d", ErrLostHits, f.Total(), stats.Hits)
	}

	if o.logger != nil {
		o.logger.Printf("rendered %dx%d: %d samples on %d workers in %s, %d escaped, %d of %d orbit points in frame, %d iterations",
			cfg.Width, cfg.Height, stats.Samples, stats.Workers, stats.Elapsed.Round(time.Millisecond),
			stats.Escaped, stats.Hits, stats.Points, stats.Iterations)
	}
	return f, stats, nil
}

// work runs one worker until the shared claim counter passes target.
func work[F bbrot.Float](field *histogram.Atomic, frame Frame[F], disk *sample.Disk[F], claimed *atomic.Uint64, target, maxIter uint64) Stats {
	var s Stats
	for claimed.Add(1) <= target {
		s.Samples++
		path := orbit.Evaluate(disk.Next(), maxIter)
		s.Iterations += path.Iterations()
		if path.Len() == 0 {
			continue
		}
		s.Escaped++
		s.Points += path.Len()
		for z := range path.Points() {
			if x, y, ok := frame.Project(z); ok && field.Hit(x, y) {
				s.Hits++
			}
		}
	}
	return s
}

// Frame maps points of the plane onto the pixels of a configuration.
type Frame[F bbrot.Float] struct {
	xfocus, yfocus F
	halfW, halfH   F // half the frame extent in plane units
	scale          F
	width, height  F
}

func NewFrame[F bbrot.Float](cfg bbrot.Config) Frame[F] {
	scale := F(cfg.Scale)
	return Frame[F]{
		xfocus: F(cfg.XFocus),
		yfocus: F(cfg.YFocus),
		halfW:  F(cfg.Width) / (scale + scale),
		halfH:  F(cfg.Height) / (scale + scale),
		scale:  scale,
		width:  F(cfg.Width),
		height: F(cfg.Height),
	}
}

// Project shifts z by the focus, re-centers it by half the frame, scales it
// to pixels and truncates. ok is false when the result lies outside the frame.
func (f Frame[F]) Project(z bbrot.Point[F]) (x, y int, ok bool) {
	px := (z.Re - f.xfocus + f.halfW) * f.scale
	py := (z.Im + f.yfocus + f.halfH) * f.scale
	// written so that NaN fails too
	if !(px >= 0 && px < f.width && py >= 0 && py < f.height) {
		return 0, 0, false
	}
	return int(px), int(py), true
}

// Engine is a Renderer with a fixed floating point width.
type Engine[F bbrot.Float] struct {
	opts []Option
}

func NewEngine[F bbrot.Float](opts ...Option) *Engine[F] {
	return &Engine[F]{opts: opts}
}

// Render implements bbrot.Renderer.
func (e *Engine[F]) Render(cfg bbrot.Config) (*histogram.Field, error) {
	f, _, err := Run[F](cfg, e.opts...)
	return f, err
}

var _ bbrot.Renderer = (*Engine[float32])(nil)

// ForPrecision picks the 32 or 64 bit engine.
func ForPrecision(bits int, opts ...Option) (bbrot.Renderer, error) {
	switch bits {
	case 32:
		return NewEngine[float32](opts...), nil
	case 64:
		return NewEngine[float64](opts...), nil
	default:
		return nil, fmt.Errorf("%w: precision must be 32 or 64, got %d", bbrot.ErrInvalidConfig, bits)
	}
}
