package frames

import "math"

// Magnituder is implemented by every position representation.
type Magnituder interface {
	Magnitude() float64
}

// PositionVector stores three ordered coordinates whose meaning depends on
// the frame holding it. Setters perform no validation.
type PositionVector struct {
	first, second, third float64
}

// SetPosition replaces all three coordinates.
func (v *PositionVector) SetPosition(first, second, third float64) {
	v.first, v.second, v.third = first, second, third
}

func (v *PositionVector) SetFirst(first float64)   { v.first = first }
func (v *PositionVector) SetSecond(second float64) { v.second = second }
func (v *PositionVector) SetThird(third float64)   { v.third = third }

func (v PositionVector) First() float64  { return v.first }
func (v PositionVector) Second() float64 { return v.second }
func (v PositionVector) Third() float64  { return v.third }

// Position returns the coordinates in order.
func (v PositionVector) Position() (float64, float64, float64) {
	return v.first, v.second, v.third
}

// Cartesian is a position vector on orthogonal axes.
type Cartesian struct {
	PositionVector
}

// NewCartesian returns a Cartesian vector.
func NewCartesian(first, second, third float64) Cartesian {
	return Cartesian{PositionVector{first, second, third}}
}

// Magnitude returns the Euclidean norm.
func (c Cartesian) Magnitude() float64 {
	return math.Sqrt(c.first*c.first + c.second*c.second + c.third*c.third)
}

// Spherical is a position vector of two angles and a radial component.
type Spherical struct {
	PositionVector
}

// NewSpherical returns a Spherical vector.
func NewSpherical(first, second, third float64) Spherical {
	return Spherical{PositionVector{first, second, third}}
}

// Magnitude returns the third (radial) coordinate unchanged.
func (s Spherical) Magnitude() float64 {
	return s.third
}
