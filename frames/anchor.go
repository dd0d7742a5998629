package frames

// Anchor is the earth-fixed state shared by ENU, DCA and AER: the geodetic
// point the local axes are centred on and the heading of the downrange axis
// from true north. The zero Anchor has no origin and heading 0.
type Anchor struct {
	origin    LLA
	originSet bool
	heading   float64
}

// SetOrigin attaches an origin.
func (a *Anchor) SetOrigin(origin LLA) {
	a.origin = origin
	a.originSet = true
}

// SetOriginLLA attaches an origin given in degrees and metres.
func (a *Anchor) SetOriginLLA(latitude, longitude, altitude float64) {
	a.SetOrigin(NewLLA(latitude, longitude, altitude))
}

// Origin returns the last origin set, or LLA(0, 0, 0) if none was.
func (a Anchor) Origin() LLA { return a.origin }

// HasOrigin reports whether an origin was explicitly set.
func (a Anchor) HasOrigin() bool { return a.originSet }

// SetHeading sets the heading in degrees. The value is not normalised.
func (a *Anchor) SetHeading(heading float64) { a.heading = heading }

// Heading returns the heading in degrees from true north.
func (a Anchor) Heading() float64 { return a.heading }

// withHeading returns a copy of the anchor using the given heading.
func (a Anchor) withHeading(heading float64) Anchor {
	a.heading = heading
	return a
}

// AnchorOption configures the anchor of a new earth-fixed frame.
type AnchorOption func(*Anchor)

// WithOrigin sets the frame origin.
func WithOrigin(origin LLA) AnchorOption {
	return func(a *Anchor) { a.SetOrigin(origin) }
}

// WithOriginLLA sets the frame origin from degrees and metres.
func WithOriginLLA(latitude, longitude, altitude float64) AnchorOption {
	return func(a *Anchor) { a.SetOriginLLA(latitude, longitude, altitude) }
}

// WithHeading sets the frame heading in degrees.
func WithHeading(heading float64) AnchorOption {
	return func(a *Anchor) { a.SetHeading(heading) }
}

func newAnchor(opts []AnchorOption) Anchor {
	var a Anchor
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}
