package histogram

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// snapshot layout, zstd compressed as a whole:
//
//	magic  [4]byte "BBH1"
//	width  uint32
//	height uint32
//	total  uint64
//	counts [width*height]uint64
//
// all integers little endian
var magic = [4]byte{'B', 'B', 'H', '2'}

var ErrCorrupt = errors.New("corrupt histogram snapshot")

type header struct {
	Magic         [4]byte
	Width, Height uint32
	Total         uint64
}

// Encode writes a compressed snapshot of f to w.
func (f *Field) Encode(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd.NewWriter: %w", err)
	}
	bw := bufio.NewWriter(enc)

	h := header{
		Magic:  magic,
		Width:  uint32(f.width),
		Height: uint32(f.height),
		Total:  f.total,
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		_ = enc.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, f.counts); err != nil {
		_ = enc.Close()
		return fmt.Errorf("write counts: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Field, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd.NewReader: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, h.Magic[:])
	}
	if h.Width == 0 || h.Height == 0 || uint64(h.Width)*uint64(h.Height) > MaxCells {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrCorrupt, h.Width, h.Height)
	}

	f := New(int(h.Width), int(h.Height))
	if err := binary.Read(br, binary.LittleEndian, f.counts); err != nil {
		return nil, fmt.Errorf("%w: counts: %v", ErrCorrupt, err)
	}
	for _, v := range f.counts {
		f.total += v
	}
	if f.total != h.Total {
		return nil, fmt.Errorf("%w: total %d doesn't match counters sum %d", ErrCorrupt, h.Total, f.total)
	}
	return f, nil
}
