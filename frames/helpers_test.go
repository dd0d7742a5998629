package frames

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// tol is the position tolerance in metres (and degrees for angles).
const tol = 0.01

// Shared fixture values.
const (
	testLatitude   = 10.0
	testLongitude  = 20.0
	testAltitude   = 30.0
	testHeading    = 55.5
	testEast       = 1111.11
	testNorth      = 222.22
	testUp         = 333.33
	testDownRange  = 1111.11
	testCrossRange = 222.22
	testAbove      = 333.33
	testAzimuth    = 45.0
	testElevation  = 30.0
	testRange      = 555.55
	testX          = SemiMajorAxis + 1000
	testY          = 2000.0
	testZ          = 300.0
)

func testOrigin() LLA { return NewLLA(testLatitude, testLongitude, testAltitude) }

func approxFrames(margin float64) cmp.Options {
	return cmp.Options{
		cmp.AllowUnexported(PositionVector{}, Anchor{}),
		cmpopts.EquateApprox(0, margin),
	}
}

func assertPosition(t *testing.T, f Frame, want [3]float64, margin float64) {
	t.Helper()
	a, b, c := f.Position()
	got := [3]float64{a, b, c}
	for i := range got {
		if math.Abs(got[i]-want[i]) > margin {
			t.Fatalf("%s position = %v, want %v (±%v)", f.Kind(), got, want, margin)
		}
	}
}

func assertExactPosition(t *testing.T, f Frame, want [3]float64) {
	t.Helper()
	a, b, c := f.Position()
	if got := [3]float64{a, b, c}; got != want {
		t.Fatalf("%s position = %v, want exactly %v", f.Kind(), got, want)
	}
}

func assertOrigin(t *testing.T, f EarthFixedFrame, want LLA) {
	t.Helper()
	if !f.HasOrigin() {
		t.Fatalf("%s has no origin, want %v", f.Kind(), want)
	}
	if diff := cmp.Diff(want, f.Origin(), cmp.AllowUnexported(PositionVector{})); diff != "" {
		t.Fatalf("%s origin mismatch (-want +got):\n%s", f.Kind(), diff)
	}
}
