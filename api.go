package bbrot

import (
	"github.com/marben/bbrot/histogram"
)

// Renderer accumulates the Buddhabrot histogram of one configuration.
// Implementations fix the floating point width for the whole computation.
type Renderer interface {
	Render(cfg Config) (*histogram.Field, error)
}
