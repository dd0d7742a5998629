package frames

import "math"

// ENU is an East-North-Up position in metres relative to an origin.
type ENU struct {
	Cartesian
	Anchor
}

// NewENU returns an ENU position. Without WithOrigin the result has no
// origin and cannot be converted to ECF or LLA.
func NewENU(east, north, up float64, opts ...AnchorOption) ENU {
	return ENU{Cartesian: NewCartesian(east, north, up), Anchor: newAnchor(opts)}
}

func (ENU) Kind() Kind { return KindENU }

func (e ENU) East() float64  { return e.first }
func (e ENU) North() float64 { return e.second }
func (e ENU) Up() float64    { return e.third }

// ToECF rotates out of the local tangent plane and translates by the
// origin.
func (e ENU) ToECF() (ECF, error) {
	if !e.originSet {
		return ECF{}, originRequired(KindENU, KindECF)
	}

	o := e.origin.ToECF()
	lat := e.origin.Latitude() * deg2rad
	lon := e.origin.Longitude() * deg2rad
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	x := -e.first*sinLon - e.second*sinLat*cosLon + e.third*cosLat*cosLon + o.first
	y := e.first*cosLon - e.second*sinLat*sinLon + e.third*cosLat*sinLon + o.second
	z := e.second*cosLat + e.third*sinLat + o.third
	return NewECF(x, y, z), nil
}

// ToLLA returns the geodetic position.
func (e ENU) ToLLA() (LLA, error) {
	if !e.originSet {
		return LLA{}, originRequired(KindENU, KindLLA)
	}
	ecf, err := e.ToECF()
	if err != nil {
		return LLA{}, err
	}
	return ecf.ToLLA(), nil
}

// ToDCA rotates about the up axis so downrange points along heading.
func (e ENU) ToDCA(heading float64) DCA {
	h := heading * deg2rad
	sinH, cosH := math.Sin(h), math.Cos(h)

	downRange := e.first*sinH + e.second*cosH
	crossRange := -e.first*cosH + e.second*sinH
	return DCA{
		Cartesian: NewCartesian(downRange, crossRange, e.third),
		Anchor:    e.Anchor.withHeading(heading),
	}
}

// ToAER returns azimuth, elevation and range relative to heading.
func (e ENU) ToAER(heading float64) AER {
	return e.ToDCA(heading).ToAER()
}

// DCA is a Downrange-Crossrange-Above position in metres: ENU rotated about
// the up axis by the anchor heading.
type DCA struct {
	Cartesian
	Anchor
}

// NewDCA returns a DCA position.
func NewDCA(downRange, crossRange, above float64, opts ...AnchorOption) DCA {
	return DCA{Cartesian: NewCartesian(downRange, crossRange, above), Anchor: newAnchor(opts)}
}

func (DCA) Kind() Kind { return KindDCA }

func (d DCA) DownRange() float64  { return d.first }
func (d DCA) CrossRange() float64 { return d.second }
func (d DCA) Above() float64      { return d.third }

// ToECF returns the Earth-Centered-Fixed position.
func (d DCA) ToECF() (ECF, error) {
	if !d.originSet {
		return ECF{}, originRequired(KindDCA, KindECF)
	}
	return d.ToENU().ToECF()
}

// ToLLA returns the geodetic position.
func (d DCA) ToLLA() (LLA, error) {
	if !d.originSet {
		return LLA{}, originRequired(KindDCA, KindLLA)
	}
	ecf, err := d.ToECF()
	if err != nil {
		return LLA{}, err
	}
	return ecf.ToLLA(), nil
}

// ToENU undoes the heading rotation. The heading is kept on the result.
func (d DCA) ToENU() ENU {
	h := d.heading * deg2rad
	sinH, cosH := math.Sin(h), math.Cos(h)

	east := d.first*sinH - d.second*cosH
	north := d.first*cosH + d.second*sinH
	return ENU{
		Cartesian: NewCartesian(east, north, d.third),
		Anchor:    d.Anchor,
	}
}

// ToAER returns the polar form of the position.
//
// A zero range reports azimuth and elevation 0; a position straight above or
// below the origin reports azimuth 0 and elevation ±90°.
func (d DCA) ToAER() AER {
	var azimuth, elevation float64
	rng := d.Magnitude()
	p := math.Sqrt(d.first*d.first + d.second*d.second)

	switch {
	case rng == 0:
	case p == 0:
		if d.third > 0 {
			elevation = math.Pi / 2
		} else {
			elevation = -math.Pi / 2
		}
	default:
		azimuth = math.Atan2(-d.second, d.first)
		elevation = math.Atan2(d.third, p)
	}

	return AER{
		Spherical: NewSpherical(azimuth*rad2deg, elevation*rad2deg, rng),
		Anchor:    d.Anchor,
	}
}

// AER is an Azimuth-Elevation-Range position: angles in degrees, range in
// metres. Azimuth is measured from the anchor heading.
type AER struct {
	Spherical
	Anchor
}

// NewAER returns an AER position.
func NewAER(azimuth, elevation, rng float64, opts ...AnchorOption) AER {
	return AER{Spherical: NewSpherical(azimuth, elevation, rng), Anchor: newAnchor(opts)}
}

func (AER) Kind() Kind { return KindAER }

func (a AER) Azimuth() float64   { return a.first }
func (a AER) Elevation() float64 { return a.second }
func (a AER) Range() float64     { return a.third }

// ToECF returns the Earth-Centered-Fixed position.
func (a AER) ToECF() (ECF, error) {
	if !a.originSet {
		return ECF{}, originRequired(KindAER, KindECF)
	}
	return a.ToENU().ToECF()
}

// ToLLA returns the geodetic position.
func (a AER) ToLLA() (LLA, error) {
	if !a.originSet {
		return LLA{}, originRequired(KindAER, KindLLA)
	}
	ecf, err := a.ToECF()
	if err != nil {
		return LLA{}, err
	}
	return ecf.ToLLA(), nil
}

// ToENU returns the East-North-Up position.
func (a AER) ToENU() ENU {
	return a.ToDCA().ToENU()
}

// ToDCA returns the Cartesian form of the position.
func (a AER) ToDCA() DCA {
	az := a.first * deg2rad
	el := a.second * deg2rad
	cosEl := math.Cos(el)

	return DCA{
		Cartesian: NewCartesian(
			a.third*math.Cos(az)*cosEl,
			-a.third*math.Sin(az)*cosEl,
			a.third*math.Sin(el),
		),
		Anchor: a.Anchor,
	}
}
