// Package frames converts positions between the Earth-centered (ECF, LLA)
// and locally-anchored (ENU, DCA, AER) reference frames on the WGS84
// ellipsoid.
package frames

import "math"

// WGS84 ellipsoid.
const (
	// SemiMajorAxis is the equatorial radius in metres.
	SemiMajorAxis = 6378137.0
	// EccentricitySquared is the first eccentricity squared.
	EccentricitySquared = 0.00669437999014
)

// LatitudeTolerance is the convergence threshold (radians) of the
// geodetic latitude solver.
const LatitudeTolerance = 1e-5

// MaxLatitudeIterations bounds the geodetic latitude solver. Ordinary
// inputs converge in three or four passes.
const MaxLatitudeIterations = 64

// SemiMinorAxis is the polar radius in metres.
var SemiMinorAxis = math.Sqrt(SemiMajorAxis * SemiMajorAxis * (1 - EccentricitySquared))

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// primeVerticalRadius returns N for a geodetic latitude in radians.
func primeVerticalRadius(lat float64) float64 {
	sin := math.Sin(lat)
	return SemiMajorAxis / math.Sqrt(1-EccentricitySquared*sin*sin)
}
