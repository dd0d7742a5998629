package frames

import (
	"errors"
	"fmt"
)

var (
	// ErrOriginRequired is returned when a conversion needs a geocentric
	// anchor that the source frame does not have.
	ErrOriginRequired = errors.New("origin required")
	// ErrUnknownFrame is returned for unrecognised frame names or kinds.
	ErrUnknownFrame = errors.New("unknown frame")
)

// OriginRequiredError reports which conversion was missing an origin. It
// matches ErrOriginRequired under errors.Is.
type OriginRequiredError struct {
	Frame  Kind
	Target Kind
}

func (e *OriginRequiredError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %v", e.Frame, e.Target, ErrOriginRequired)
}

func (e *OriginRequiredError) Is(target error) bool {
	return target == ErrOriginRequired
}

func originRequired(from, to Kind) error {
	return &OriginRequiredError{Frame: from, Target: to}
}
