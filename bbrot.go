package bbrot

import (
	"errors"
	"fmt"
	"math"

	"github.com/marben/bbrot/histogram"
)

// Float is the floating point width the sampling engine is instantiated with.
type Float interface {
	~float32 | ~float64
}

// Point on the complex plane
type Point[F Float] struct {
	Re, Im F
}

// Norm2 returns the squared magnitude of p.
func (p Point[F]) Norm2() F {
	return p.Re*p.Re + p.Im*p.Im
}

const (
	// DefaultXFocus and DefaultYFocus center the frame on the whole set.
	DefaultXFocus = -0.7
	DefaultYFocus = 0.0

	// DefaultMaxIterations caps a single orbit when the caller sets no limit.
	// Cycle detection usually stops periodic orbits long before this.
	DefaultMaxIterations uint64 = 1 << 20

	// default scale is min(width, height) / defaultScaleDivisor
	defaultScaleDivisor = 2.6
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parameters of one computation.
// It is shared read only by all workers.
type Config struct {
	Width, Height  int
	XFocus, YFocus float64
	Scale          float64 // plane units to pixels
	Samples        uint64  // accepted starting points to evaluate
	MaxIterations  uint64  // per point iteration cap
}

type ConfigOption func(*Config)

// WithFocus centers the frame on (x, y).
func WithFocus(x, y float64) ConfigOption {
	return func(c *Config) {
		c.XFocus = x
		c.YFocus = y
	}
}

// WithScale overrides the default scale.
func WithScale(scale float64) ConfigOption {
	return func(c *Config) {
		c.Scale = scale
	}
}

// WithMaxIterations sets the per point iteration cap. Zero keeps DefaultMaxIterations.
func WithMaxIterations(n uint64) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithView applies focus and zoom of a predefined view.
// Zoom multiplies the default scale, so it has to be applied before any WithScale.
func WithView(v View) ConfigOption {
	return func(c *Config) {
		c.XFocus = v.XFocus
		c.YFocus = v.YFocus
		c.Scale = DefaultScale(c.Width, c.Height) * v.Zoom
	}
}

// NewConfig returns a validated configuration with default focus, scale and iteration cap.
func NewConfig(width, height int, samples uint64, opts ...ConfigOption) (Config, error) {
	c := Config{
		Width:         width,
		Height:        height,
		XFocus:        DefaultXFocus,
		YFocus:        DefaultYFocus,
		Scale:         DefaultScale(width, height),
		Samples:       samples,
		MaxIterations: DefaultMaxIterations,
	}
	for _, o := range opts {
		o(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultScale fits the interesting part of the plane into a width × height frame.
func DefaultScale(width, height int) float64 {
	return float64(min(width, height)) / defaultScaleDivisor
}

// Validate reports geometry that can't produce an image.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width > histogram.MaxCells/c.Height {
		return fmt.Errorf("%w: %dx%d is more than %d cells", ErrInvalidConfig, c.Width, c.Height, histogram.MaxCells)
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: scale %v must be positive and finite", ErrInvalidConfig, c.Scale)
	}
	if math.IsNaN(c.XFocus) || math.IsInf(c.XFocus, 0) || math.IsNaN(c.YFocus) || math.IsInf(c.YFocus, 0) {
		return fmt.Errorf("%w: focus (%v, %v) must be finite", ErrInvalidConfig, c.XFocus, c.YFocus)
	}
	return nil
}

// Iterations returns the effective per point cap.
func (c Config) Iterations() uint64 {
	if c.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// View is a named frame on the plane.
type View struct {
	XFocus, YFocus float64
	Zoom           float64 // multiplier of the default scale
}

// Classic views of the Buddhabrot
var (
	// Full – the whole figure, the "seated Buddha"
	Full = View{XFocus: DefaultXFocus, YFocus: DefaultYFocus, Zoom: 1}

	// Cardioid – orbits crowding around the main cardioid
	Cardioid = View{XFocus: -0.2, YFocus: 0, Zoom: 2}

	// Bulb – halo of the period-2 bulb
	Bulb = View{XFocus: -1.0, YFocus: 0, Zoom: 4}

	// Antenna – thin spike along the negative real axis
	Antenna = View{XFocus: -1.75, YFocus: 0, Zoom: 8}
)

var views = map[string]View{
	"full":     Full,
	"cardioid": Cardioid,
	"bulb":     Bulb,
	"antenna":  Antenna,
}

// ViewByName looks up one of the predefined views.
func ViewByName(name string) (View, error) {
	v, ok := views[name]
	if !ok {
		return View{}, fmt.Errorf("%w: unknown view %q", ErrInvalidConfig, name)
	}
	return v, nil
}
