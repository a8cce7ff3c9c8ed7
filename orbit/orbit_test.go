package orbit

import (
	"math"
	"slices"
	"testing"

	"github.com/marben/bbrot"
)

type pt = bbrot.Point[float64]

func TestEvaluate_KnownOrbits(t *testing.T) {
	tests := []struct {
		name string
		c    pt
		want []pt
	}{
		{
			name: "c = 1 escapes at the third step",
			c:    pt{Re: 1},
			want: []pt{{Re: 1}, {Re: 2}, {Re: 5}},
		},
		{
			name: "outside radius 2 escapes immediately",
			c:    pt{Re: 2.5, Im: -1},
			want: []pt{{Re: 2.5, Im: -1}},
		},
		{
			name: "c = -2 settles on the fixed point 2",
			c:    pt{Re: -2},
			want: nil,
		},
		{
			name: "c = i is eventually periodic",
			c:    pt{Im: 1},
			want: nil,
		},
		{
			name: "origin is inside the cardioid",
			c:    pt{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(tt.c, bbrot.DefaultMaxIterations)
			got := slices.Collect(p.Points())
			if !slices.Equal(got, tt.want) {
				t.Errorf("orbit tail = %v, want %v", got, tt.want)
			}
			if p.Len() != uint64(len(tt.want)) {
				t.Errorf("Len() = %d, want %d", p.Len(), len(tt.want))
			}
			if p.C() != tt.c {
				t.Errorf("C() = %v, want %v", p.C(), tt.c)
			}
		})
	}
}

func TestEvaluate_OutsideDiskEscapesOnFirstStep(t *testing.T) {
	points := []pt{
		{Re: 2.0001}, {Re: -3}, {Im: 2.5}, {Re: 1.5, Im: 1.5}, {Re: -100, Im: 100},
	}
	for _, c := range points {
		p := Evaluate(c, bbrot.DefaultMaxIterations)
		if p.Len() != 1 || p.Iterations() != 1 {
			t.Errorf("Evaluate(%v): Len %d, Iterations %d, want 1 and 1", c, p.Len(), p.Iterations())
		}
	}
}

func TestEvaluate_PrecheckedRegionsDoNotIterate(t *testing.T) {
	tests := []struct {
		name     string
		c        pt
		cardioid bool
		bulb     bool
	}{
		{"cardioid center", pt{Re: -0.1}, true, false},
		{"cardioid upper", pt{Re: 0.1, Im: 0.5}, true, false},
		{"cardioid near cusp", pt{Re: 0.2, Im: 0.05}, true, false},
		{"bulb center", pt{Re: -1}, false, true},
		{"bulb edge", pt{Re: -1.2, Im: 0.1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InCardioid(tt.c); got != tt.cardioid {
				t.Errorf("InCardioid(%v) = %v, want %v", tt.c, got, tt.cardioid)
			}
			if got := InBulb(tt.c); got != tt.bulb {
				t.Errorf("InBulb(%v) = %v, want %v", tt.c, got, tt.bulb)
			}
			p := Evaluate(tt.c, bbrot.DefaultMaxIterations)
			if p.Len() != 0 || p.Iterations() != 0 {
				t.Errorf("Evaluate(%v): Len %d, Iterations %d, want 0 and 0", tt.c, p.Len(), p.Iterations())
			}
		})
	}
}

func TestEvaluate_OutsideChecks(t *testing.T) {
	for _, c := range []pt{{Re: 0.3}, {Re: -0.75, Im: 0.1}, {Re: -1.3}, {Im: 1}, {Re: -2}} {
		if InCardioid(c) || InBulb(c) {
			t.Errorf("%v must not be pre-checked", c)
		}
	}
}

func TestEvaluate_IterationCap(t *testing.T) {
	c := pt{Re: 1} // escapes at step 3

	tests := []struct {
		maxIter uint64
		wantLen uint64
	}{
		{0, 0},
		{3, 0}, // escape at step 3 is detected on loop index 3
		{4, 3},
		{100, 3},
	}
	for _, tt := range tests {
		p := Evaluate(c, tt.maxIter)
		if p.Len() != tt.wantLen {
			t.Errorf("maxIter %d: Len() = %d, want %d", tt.maxIter, p.Len(), tt.wantLen)
		}
		if p.Iterations() > tt.maxIter {
			t.Errorf("maxIter %d: spent %d iterations", tt.maxIter, p.Iterations())
		}
	}
}

func TestEvaluate_Float32(t *testing.T) {
	p := Evaluate(bbrot.Point[float32]{Re: 1}, 100)
	got := slices.Collect(p.Points())
	want := []bbrot.Point[float32]{{Re: 1}, {Re: 2}, {Re: 5}}
	if !slices.Equal(got, want) {
		t.Errorf("orbit tail = %v, want %v", got, want)
	}

	if p := Evaluate(bbrot.Point[float32]{Re: -2}, bbrot.DefaultMaxIterations); p.Len() != 0 {
		t.Errorf("c = -2: Len() = %d, want 0", p.Len())
	}
}

func TestPath_PointsStopEarly(t *testing.T) {
	p := Evaluate(pt{Re: 1}, 100)
	var n int
	for range p.Points() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d points after break", n)
	}
}

func TestCycleDetector_Periods(t *testing.T) {
	tests := []struct {
		period   int
		detected int // call on which the repeat is signalled
	}{
		{1, 33},
		{2, 34},
		{5, 37},
		{40, 72},
		{100, 196},
	}

	for _, tt := range tests {
		var d CycleDetector[float64]
		got := 0
		for call := 1; call <= 1000; call++ {
			if d.Check(pt{Re: float64(call % tt.period), Im: 1}) {
				got = call
				break
			}
		}
		if got != tt.detected {
			t.Errorf("period %d: detected on call %d, want %d", tt.period, got, tt.detected)
		}
	}
}

func TestCycleDetector_NoFalsePositive(t *testing.T) {
	var d CycleDetector[float32]
	for i := range 10000 {
		if d.Check(bbrot.Point[float32]{Re: float32(i)}) {
			t.Fatalf("cycle reported on distinct value %d", i)
		}
	}
}

func TestCycleDetector_SignedZeros(t *testing.T) {
	negZero := math.Copysign(0, -1)
	var d CycleDetector[float64]
	for call := 1; call <= 100; call++ {
		re := 0.0
		if call%2 == 0 {
			re = negZero
		}
		if d.Check(bbrot.Point[float64]{Re: re, Im: 1}) {
			// +0 and -0 alternate, so only the period 2 repeat may match
			if call != 34 {
				t.Errorf("detected on call %d, want 34", call)
			}
			return
		}
	}
	t.Error("no cycle detected")
}
