package frames

import "testing"

func TestPositionVectorAccessors(t *testing.T) {
	var v Cartesian
	if v.First() != 0 || v.Second() != 0 || v.Third() != 0 {
		t.Fatalf("zero value = (%v, %v, %v), want zeros", v.First(), v.Second(), v.Third())
	}

	v.SetFirst(1.11)
	v.SetSecond(2.22)
	v.SetThird(3.33)
	if v.First() != 1.11 || v.Second() != 2.22 || v.Third() != 3.33 {
		t.Fatalf("after setters = (%v, %v, %v)", v.First(), v.Second(), v.Third())
	}

	v.SetPosition(4, 5, 6)
	a, b, c := v.Position()
	if a != 4 || b != 5 || c != 6 {
		t.Fatalf("Position() = (%v, %v, %v), want (4, 5, 6)", a, b, c)
	}
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		name string
		m    Magnituder
		want float64
	}{
		{"cartesian", NewCartesian(6, 2, 3), 7},
		{"spherical", NewSpherical(testAzimuth, testElevation, testRange), testRange},
		{"aer", NewAER(testAzimuth, testElevation, testRange), testRange},
		{"enu", NewENU(6, 2, 3), 7},
		{"lla at equator", NewLLA(0, 0, 0), SemiMajorAxis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Magnitude(); got != tt.want {
				t.Fatalf("Magnitude() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLLAMagnitudeIsGeocentricDistance(t *testing.T) {
	lla := NewLLA(testLatitude, testLongitude, testAltitude)
	want := lla.ToECF().Magnitude()
	if got := lla.Magnitude(); got != want {
		t.Fatalf("LLA.Magnitude() = %v, want ECF norm %v", got, want)
	}
	if got := lla.Spherical.Magnitude(); got != testAltitude {
		t.Fatalf("Spherical.Magnitude() = %v, want altitude %v", got, testAltitude)
	}
}

func TestSettersAcceptDegenerateValues(t *testing.T) {
	var v Spherical
	v.SetPosition(-1e308, 1e308, -5)
	if got := v.Magnitude(); got != -5 {
		t.Fatalf("Magnitude() = %v, want -5", got)
	}
}
