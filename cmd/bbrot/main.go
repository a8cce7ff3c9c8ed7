// bbrot renders a Buddhabrot density map to a grayscale PNG.
//
//	bbrot [flags] WIDTH HEIGHT POINTS OUTPUT
//
// POINTS is the number of starting points to iterate. The extension of OUTPUT
// is replaced with .png.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/marben/bbrot"
	"github.com/marben/bbrot/output"
	"github.com/marben/bbrot/render"
	"github.com/marben/bbrot/tone"
)

type args struct {
	width, height int
	points        uint64
	output        string

	precision int
	view      string
	xfocus    float64
	yfocus    float64
	scale     float64
	maxIter   uint64
	workers   int
	seed      uint64
	seeded    bool
	rotate    float64
	histogram string
}

func main() {
	a, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if err := run(a); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// parseArgs reports usage problems to stderr.
func parseArgs(argv []string, stderr io.Writer) (args, error) {
	var a args

	fs := flag.NewFlagSet("bbrot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: bbrot [flags] WIDTH HEIGHT POINTS OUTPUT\n\nflags:\n")
		fs.PrintDefaults()
	}
	fs.IntVar(&a.precision, "precision", 64, "floating point width, 32 or 64")
	fs.StringVar(&a.view, "view", "", "predefined view: full, cardioid, bulb or antenna")
	fs.Float64Var(&a.xfocus, "xfocus", bbrot.DefaultXFocus, "real part of the frame center")
	fs.Float64Var(&a.yfocus, "yfocus", bbrot.DefaultYFocus, "imaginary offset of the frame center")
	fs.Float64Var(&a.scale, "scale", 0, "pixels per plane unit (default min(WIDTH, HEIGHT)/2.6)")
	fs.Uint64Var(&a.maxIter, "max-iter", bbrot.DefaultMaxIterations, "iteration cap per point")
	fs.IntVar(&a.workers, "workers", 0, "worker goroutines (default GOMAXPROCS)")
	fs.Func("seed", "seed for reproducible sampling", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		a.seed, a.seeded = v, true
		return nil
	})
	fs.Float64Var(&a.rotate, "rotate", 0, "rotate the image clockwise by degrees")
	fs.StringVar(&a.histogram, "histogram", "", "also save the raw histogram to this path (.bbh)")

	if err := fs.Parse(argv); err != nil {
		return args{}, err
	}
	if a.precision != 32 && a.precision != 64 {
		return args{}, usageErr(fs, "-precision must be 32 or 64, got %d", a.precision)
	}
	if fs.NArg() != 4 {
		return args{}, usageErr(fs, "expected 4 arguments, got %d", fs.NArg())
	}

	var err error
	if a.width, err = positive(fs.Arg(0)); err != nil {
		return args{}, usageErr(fs, "WIDTH: %v", err)
	}
	if a.height, err = positive(fs.Arg(1)); err != nil {
		return args{}, usageErr(fs, "HEIGHT: %v", err)
	}
	if a.points, err = strconv.ParseUint(fs.Arg(2), 10, 64); err != nil {
		return args{}, usageErr(fs, "POINTS: %v", err)
	}
	a.output = fs.Arg(3)
	return a, nil
}

func usageErr(fs *flag.FlagSet, format string, v ...any) error {
	err := fmt.Errorf(format, v...)
	fmt.Fprintf(fs.Output(), "bbrot: %v\n", err)
	fs.Usage()
	return err
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

func (a args) config() (bbrot.Config, error) {
	var opts []bbrot.ConfigOption
	if a.view != "" {
		v, err := bbrot.ViewByName(a.view)
		if err != nil {
			return bbrot.Config{}, err
		}
		opts = append(opts, bbrot.WithView(v))
	} else {
		opts = append(opts, bbrot.WithFocus(a.xfocus, a.yfocus))
	}
	if a.scale != 0 {
		opts = append(opts, bbrot.WithScale(a.scale))
	}
	opts = append(opts, bbrot.WithMaxIterations(a.maxIter))
	return bbrot.NewConfig(a.width, a.height, a.points, opts...)
}

func (a args) renderOptions() []render.Option {
	opts := []render.Option{render.WithLogger(log.Default())}
	if a.workers > 0 {
		opts = append(opts, render.WithWorkers(a.workers))
	}
	if a.seeded {
		opts = append(opts, render.WithSeed(a.seed))
	}
	return opts
}

func run(a args) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}

	renderer, err := render.ForPrecision(a.precision, a.renderOptions()...)
	if err != nil {
		return err
	}

	log.Printf("rendering %dx%d from %d points at %d bit precision...", cfg.Width, cfg.Height, cfg.Samples, a.precision)
	field, err := renderer.Render(cfg)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if a.histogram != "" {
		path, err := output.SaveHistogram(a.histogram, field)
		if err != nil {
			return fmt.Errorf("save histogram: %w", err)
		}
		log.Printf("histogram saved to %q", path)
	}

	img, err := tone.Gray(field)
	if err != nil {
		return fmt.Errorf("tone map: %w", err)
	}
	path, err := output.SavePNG(a.output, tone.Rotate(img, a.rotate))
	if err != nil {
		return fmt.Errorf("error writing png: %w", err)
	}

	log.Printf("image saved to %q", path)
	return nil
}
