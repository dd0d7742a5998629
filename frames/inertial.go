package frames

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Greenwich mean sidereal time in radians at t.
func gmst(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	jd += float64(t.Nanosecond()) / float64(24*time.Hour)
	return satellite.ThetaG_JD(jd)
}

// ECFFromECI rotates an Earth-centered inertial position (metres) at time t
// into the Earth-fixed frame. Precession, nutation and polar motion are
// ignored; the rotation is about the z axis by GMST only.
func ECFFromECI(x, y, z float64, t time.Time) ECF {
	v := satellite.ECIToECEF(satellite.Vector3{X: x, Y: y, Z: z}, gmst(t))
	return NewECF(v.X, v.Y, v.Z)
}

// ToECI returns the inertial position at time t, the inverse of ECFFromECI.
func (e ECF) ToECI(t time.Time) (x, y, z float64) {
	v := satellite.ECIToECEF(satellite.Vector3{X: e.first, Y: e.second, Z: e.third}, -gmst(t))
	return v.X, v.Y, v.Z
}
