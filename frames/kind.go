package frames

import (
	"fmt"
	"strings"
)

// Kind identifies a reference frame.
type Kind int

const (
	KindUnknown Kind = iota
	KindECF
	KindLLA
	KindENU
	KindDCA
	KindAER
)

var kindNames = map[Kind]string{
	KindECF: "ECF",
	KindLLA: "LLA",
	KindENU: "ENU",
	KindDCA: "DCA",
	KindAER: "AER",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EarthFixed reports whether frames of this kind are anchored at an origin.
func (k Kind) EarthFixed() bool {
	return k == KindENU || k == KindDCA || k == KindAER
}

// ParseKind resolves a frame name case-insensitively. "ECEF" is accepted as
// an alias of ECF.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "ECEF" {
		return KindECF, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownFrame, s)
}

// Frame is a position expressed in one of the supported reference frames.
type Frame interface {
	Magnituder
	Kind() Kind
	Position() (float64, float64, float64)
}

// EarthFixedFrame is a Frame carrying an origin and heading.
type EarthFixedFrame interface {
	Frame
	Origin() LLA
	HasOrigin() bool
	Heading() float64
}
