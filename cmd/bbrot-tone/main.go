// bbrot-tone renders a histogram snapshot saved by bbrot -histogram to a PNG
// without repeating the sampling.
//
//	bbrot-tone [-rotate DEGREES] INPUT.bbh OUTPUT
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/marben/bbrot/output"
	"github.com/marben/bbrot/tone"
)

func main() {
	rotate := flag.Float64("rotate", 0, "rotate the image clockwise by degrees")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: bbrot-tone [-rotate DEGREES] INPUT.bbh OUTPUT\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *rotate); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(in, out string, rotate float64) error {
	field, err := output.LoadHistogram(in)
	if err != nil {
		return err
	}
	log.Printf("loaded %dx%d histogram with %d hits, busiest cell %d", field.Width(), field.Height(), field.Total(), field.Max())

	img, err := tone.Gray(field)
	if err != nil {
		return fmt.Errorf("tone map %s: %w", in, err)
	}
	path, err := output.SavePNG(out, tone.Rotate(img, rotate))
	if err != nil {
		return fmt.Errorf("error writing png: %w", err)
	}
	log.Printf("image saved to %q", path)
	return nil
}
