package frames

// Reference carries the origin and heading used when converting into an
// earth-fixed frame from a source that has none of its own: ECF or LLA into
// ENU/DCA/AER, and ENU into DCA/AER.
type Reference struct {
	Origin    LLA
	HasOrigin bool
	Heading   float64
}

// ReferenceAt returns a Reference anchored at origin.
func ReferenceAt(origin LLA, heading float64) Reference {
	return Reference{Origin: origin, HasOrigin: true, Heading: heading}
}

// edges lists the direct transforms. Every other pair is a composition.
var edges = map[Kind][]Kind{
	KindECF: {KindLLA, KindENU},
	KindLLA: {KindECF},
	KindENU: {KindECF, KindDCA},
	KindDCA: {KindENU, KindAER},
	KindAER: {KindDCA},
}

// Path returns the chain of frames visited when converting from one kind to
// another, endpoints included. It returns nil for unknown kinds.
func Path(from, to Kind) []Kind {
	if _, ok := edges[from]; !ok {
		return nil
	}
	if _, ok := edges[to]; !ok {
		return nil
	}

	prev := map[Kind]Kind{from: KindUnknown}
	queue := []Kind{from}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if k == to {
			break
		}
		for _, next := range edges[k] {
			if _, seen := prev[next]; !seen {
				prev[next] = k
				queue = append(queue, next)
			}
		}
	}

	var path []Kind
	for k := to; k != KindUnknown; k = prev[k] {
		path = append([]Kind{k}, path...)
	}
	return path
}

// Convert expresses src in the target frame. Sources that carry their own
// anchor (ENU, DCA, AER) use it; ref supplies the origin for ECF and LLA
// sources and the heading for ENU sources. Conversions that need an origin
// nobody provided fail with an error matching ErrOriginRequired.
func Convert(src Frame, to Kind, ref Reference) (Frame, error) {
	switch s := deref(src).(type) {
	case ECF:
		return convertGeocentric(s, KindECF, to, ref)
	case LLA:
		if to == KindLLA {
			return s, nil
		}
		return convertGeocentric(s.ToECF(), KindLLA, to, ref)
	case ENU:
		switch to {
		case KindECF:
			return s.ToECF()
		case KindLLA:
			return s.ToLLA()
		case KindENU:
			return s, nil
		case KindDCA:
			return s.ToDCA(ref.Heading), nil
		case KindAER:
			return s.ToAER(ref.Heading), nil
		}
	case DCA:
		switch to {
		case KindECF:
			return s.ToECF()
		case KindLLA:
			return s.ToLLA()
		case KindENU:
			return s.ToENU(), nil
		case KindDCA:
			return s, nil
		case KindAER:
			return s.ToAER(), nil
		}
	case AER:
		switch to {
		case KindECF:
			return s.ToECF()
		case KindLLA:
			return s.ToLLA()
		case KindENU:
			return s.ToENU(), nil
		case KindDCA:
			return s.ToDCA(), nil
		case KindAER:
			return s, nil
		}
	default:
		return nil, ErrUnknownFrame
	}
	return nil, ErrUnknownFrame
}

func convertGeocentric(ecf ECF, from, to Kind, ref Reference) (Frame, error) {
	if to.EarthFixed() && !ref.HasOrigin {
		return nil, originRequired(from, to)
	}
	switch to {
	case KindECF:
		return ecf, nil
	case KindLLA:
		return ecf.ToLLA(), nil
	case KindENU:
		return ecf.ToENU(ref.Origin), nil
	case KindDCA:
		return ecf.ToDCA(ref.Origin, ref.Heading), nil
	case KindAER:
		return ecf.ToAER(ref.Origin, ref.Heading), nil
	}
	return nil, ErrUnknownFrame
}

// deref lets callers pass pointers to frames. Nil pointers become nil.
func deref(f Frame) Frame {
	switch p := f.(type) {
	case *ECF:
		if p != nil {
			return *p
		}
	case *LLA:
		if p != nil {
			return *p
		}
	case *ENU:
		if p != nil {
			return *p
		}
	case *DCA:
		if p != nil {
			return *p
		}
	case *AER:
		if p != nil {
			return *p
		}
	default:
		return f
	}
	return nil
}
