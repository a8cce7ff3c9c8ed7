// Package output writes rendered images and raw histogram snapshots to disk.
package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/marben/bbrot/histogram"
)

const (
	PNGExt       = ".png"
	HistogramExt = ".bbh"
)

// WithExt replaces the extension of path with ext.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// SavePNG encodes img to path with its extension forced to .png.
// It returns the path actually written.
func SavePNG(path string, img image.Image) (string, error) {
	path = WithExt(path, PNGExt)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("png.Encode: %w", err)
	}
	return path, f.Close()
}

// SaveHistogram writes a compressed snapshot of h to path, forcing the .bbh extension.
func SaveHistogram(path string, h *histogram.Field) (string, error) {
	path = WithExt(path, HistogramExt)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := h.Encode(f); err != nil {
		return "", fmt.Errorf("encode histogram: %w", err)
	}
	return path, f.Close()
}

// LoadHistogram reads a snapshot written by SaveHistogram.
func LoadHistogram(path string) (*histogram.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := histogram.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}
