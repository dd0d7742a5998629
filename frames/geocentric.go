package frames

import "math"

// ECF is an Earth-Centered-Fixed Cartesian position in metres.
type ECF struct {
	Cartesian
}

// NewECF returns an ECF position.
func NewECF(x, y, z float64) ECF {
	return ECF{NewCartesian(x, y, z)}
}

func (ECF) Kind() Kind { return KindECF }

// ToLLA solves for geodetic latitude, longitude and altitude.
//
// On the polar axis the longitude is undefined and reported as 0. A zero x
// coordinate yields ±90° longitude by the sign of y.
func (e ECF) ToLLA() LLA {
	x, y, z := e.Position()
	p := math.Sqrt(x*x + y*y)

	var lat, lon, alt float64
	if p == 0 {
		lon = 0
		if z > 0 {
			lat = math.Pi / 2
		} else {
			lat = -math.Pi / 2
		}
		alt = math.Abs(z) - SemiMinorAxis
		return NewLLA(lat*rad2deg, lon*rad2deg, alt)
	}

	switch {
	case x == 0 && y > 0:
		lon = math.Pi / 2
	case x == 0:
		lon = -math.Pi / 2
	default:
		lon = math.Atan2(y, x)
	}

	lat = math.Atan2(z, p)
	for i := 0; i < MaxLatitudeIterations; i++ {
		prev := lat
		n := primeVerticalRadius(lat)
		alt = p/math.Cos(lat) - n
		lat = math.Atan(z / (p * (1 - EccentricitySquared*n/(n+alt))))
		// NaN compares false and ends the loop as well.
		if !(math.Abs(prev-lat) > LatitudeTolerance) {
			break
		}
	}

	n := primeVerticalRadius(lat)
	alt = p/math.Cos(lat) - n

	return NewLLA(lat*rad2deg, lon*rad2deg, alt)
}

// ToENU expresses the position in the East-North-Up frame centred on origin.
// The result carries origin.
func (e ECF) ToENU(origin LLA) ENU {
	o := origin.ToECF()
	dx := e.first - o.first
	dy := e.second - o.second
	dz := e.third - o.third

	lat := origin.Latitude() * deg2rad
	lon := origin.Longitude() * deg2rad
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	east := -dx*sinLon + dy*cosLon
	north := -dx*sinLat*cosLon - dy*sinLat*sinLon + dz*cosLat
	up := dx*cosLat*cosLon + dy*cosLat*sinLon + dz*sinLat

	return NewENU(east, north, up, WithOrigin(origin))
}

// ToDCA expresses the position in the DCA frame at origin with the given
// heading.
func (e ECF) ToDCA(origin LLA, heading float64) DCA {
	return e.ToENU(origin).ToDCA(heading)
}

// ToAER expresses the position as azimuth, elevation and range from origin.
func (e ECF) ToAER(origin LLA, heading float64) AER {
	return e.ToDCA(origin, heading).ToAER()
}

// LLA is a geodetic position: latitude and longitude in degrees, altitude in
// metres above the WGS84 ellipsoid.
type LLA struct {
	Spherical
}

// NewLLA returns a geodetic position.
func NewLLA(latitude, longitude, altitude float64) LLA {
	return LLA{NewSpherical(latitude, longitude, altitude)}
}

func (LLA) Kind() Kind { return KindLLA }

func (l LLA) Latitude() float64  { return l.first }
func (l LLA) Longitude() float64 { return l.second }
func (l LLA) Altitude() float64  { return l.third }

// Magnitude returns the distance from the centre of the Earth, not the
// altitude.
func (l LLA) Magnitude() float64 {
	return l.ToECF().Magnitude()
}

// ToECF returns the Earth-Centered-Fixed position.
func (l LLA) ToECF() ECF {
	lat := l.first * deg2rad
	lon := l.second * deg2rad
	n := primeVerticalRadius(lat)

	x := (n + l.third) * math.Cos(lat) * math.Cos(lon)
	y := (n + l.third) * math.Cos(lat) * math.Sin(lon)
	z := (n*(1-EccentricitySquared) + l.third) * math.Sin(lat)
	return NewECF(x, y, z)
}

// ToENU expresses the position in the ENU frame centred on origin.
func (l LLA) ToENU(origin LLA) ENU {
	return l.ToECF().ToENU(origin)
}

// ToDCA expresses the position in the DCA frame at origin.
func (l LLA) ToDCA(origin LLA, heading float64) DCA {
	return l.ToECF().ToDCA(origin, heading)
}

// ToAER expresses the position as azimuth, elevation and range from origin.
func (l LLA) ToAER(origin LLA, heading float64) AER {
	return l.ToDCA(origin, heading).ToAER()
}
