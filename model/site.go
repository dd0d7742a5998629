package model

import "github.com/signalsfoundry/refframe/frames"

// Site is a named origin for earth-fixed frames: a ground station, a launch
// pad, a radar. Heading is the default DCA down-range direction in degrees
// clockwise from north.
type Site struct {
	ID   string
	Name string

	Latitude  float64 // degrees
	Longitude float64 // degrees
	Altitude  float64 // metres above the ellipsoid

	Heading float64
}

// Origin returns the site position as an LLA.
func (s Site) Origin() frames.LLA {
	return frames.NewLLA(s.Latitude, s.Longitude, s.Altitude)
}

// Reference returns a conversion reference anchored at the site using its
// default heading.
func (s Site) Reference() frames.Reference {
	return frames.ReferenceAt(s.Origin(), s.Heading)
}
