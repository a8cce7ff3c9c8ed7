package main

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/marben/bbrot"
	"github.com/marben/bbrot/histogram"
	"github.com/marben/bbrot/render"
)

var errBusy = errors.New("a render is already running")

// renderScheduler runs one render at a time and lets observers follow it.
type renderScheduler struct {
	running   bool
	cfg       bbrot.Config
	precision int
	started   time.Time
	progress  *render.Progress
	m         sync.Mutex

	// extra engine options, tests use them to fix the seed
	opts []render.Option
}

func newRenderScheduler(opts ...render.Option) *renderScheduler {
	return &renderScheduler{
		progress: new(render.Progress),
		opts:     opts,
	}
}

// status is streamed to websocket observers
type status struct {
	Running   bool    `json:"running"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Precision int     `json:"precision,omitempty"`
	Claimed   uint64  `json:"claimed"`
	Target    uint64  `json:"target"`
	Finished  float64 `json:"finished"`
	Elapsed   string  `json:"elapsed,omitempty"`
}

func (rs *renderScheduler) status() status {
	rs.m.Lock()
	defer rs.m.Unlock()

	st := status{Running: rs.running}
	if rs.started.IsZero() {
		return st
	}
	claimed, target, _ := rs.progress.Snapshot()
	st.Width, st.Height, st.Precision = rs.cfg.Width, rs.cfg.Height, rs.precision
	st.Claimed, st.Target = claimed, target
	st.Finished = 1
	if target > 0 {
		st.Finished = float64(claimed) / float64(target)
	}
	if rs.running {
		st.Elapsed = time.Since(rs.started).Round(time.Millisecond).String()
	}
	return st
}

func (rs *renderScheduler) begin(cfg bbrot.Config, precision int) (*render.Progress, error) {
	rs.m.Lock()
	defer rs.m.Unlock()

	if rs.running {
		return nil, errBusy
	}
	rs.running = true
	rs.cfg = cfg
	rs.precision = precision
	rs.started = time.Now()
	// observers can keep reading the previous run's progress
	rs.progress = new(render.Progress)
	return rs.progress, nil
}

func (rs *renderScheduler) end() {
	rs.m.Lock()
	rs.running = false
	rs.m.Unlock()
}

// render computes cfg unless another render is in progress.
func (rs *renderScheduler) render(cfg bbrot.Config, precision int) (*histogram.Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := rs.begin(cfg, precision)
	if err != nil {
		return nil, err
	}
	defer rs.end()

	opts := append([]render.Option{render.WithProgress(p), render.WithLogger(log.Default())}, rs.opts...)
	renderer, err := render.ForPrecision(precision, opts...)
	if err != nil {
		return nil, err
	}

	log.Printf("rendering %dx%d from %d points at %d bit precision", cfg.Width, cfg.Height, cfg.Samples, precision)
	return renderer.Render(cfg)
}
