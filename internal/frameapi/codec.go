package frameapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformedMessage is returned when a Struct message does not have the
// expected shape.
var ErrMalformedMessage = errors.New("malformed message")

// Message field names.
const (
	fieldFrom      = "from"
	fieldTo        = "to"
	fieldPosition  = "position"
	fieldOrigin    = "origin"
	fieldSite      = "site"
	fieldHeading   = "heading"
	fieldFrame     = "frame"
	fieldPath      = "path"
	fieldSites     = "sites"
	fieldID        = "id"
	fieldName      = "name"
	fieldLatitude  = "latitude"
	fieldLongitude = "longitude"
	fieldAltitude  = "altitude"
)

// EncodeConvertRequest renders req as a Convert request message:
//
//	{"from": "LLA", "to": "AER", "position": [15, 15, 55],
//	 "site": "pad", "heading": 90}
func EncodeConvertRequest(req conversion.Request) (*structpb.Struct, error) {
	m := map[string]any{
		fieldFrom:     req.From.String(),
		fieldTo:       req.To.String(),
		fieldPosition: positionList(req.Position),
	}
	if req.Origin != nil {
		m[fieldOrigin] = llaMap(*req.Origin)
	}
	if req.Site != "" {
		m[fieldSite] = req.Site
	}
	if req.Heading != nil {
		m[fieldHeading] = *req.Heading
	}
	return structpb.NewStruct(m)
}

// DecodeConvertRequest parses a Convert request message.
func DecodeConvertRequest(in *structpb.Struct) (conversion.Request, error) {
	var req conversion.Request
	fields := in.GetFields()

	from, err := kindField(fields, fieldFrom)
	if err != nil {
		return req, err
	}
	to, err := kindField(fields, fieldTo)
	if err != nil {
		return req, err
	}
	pos, err := positionField(fields, fieldPosition)
	if err != nil {
		return req, err
	}
	req.From, req.To, req.Position = from, to, pos

	if v, ok := fields[fieldOrigin]; ok {
		origin, err := llaValue(v)
		if err != nil {
			return req, fmt.Errorf("%s: %w", fieldOrigin, err)
		}
		req.Origin = &origin
	}
	if v, ok := fields[fieldSite]; ok {
		site, err := stringValue(v)
		if err != nil {
			return req, fmt.Errorf("%s: %w", fieldSite, err)
		}
		req.Site = site
	}
	if v, ok := fields[fieldHeading]; ok {
		heading, err := numberValue(v)
		if err != nil {
			return req, fmt.Errorf("%s: %w", fieldHeading, err)
		}
		req.Heading = &heading
	}
	return req, nil
}

// EncodeConvertResult renders a conversion result. Earth-fixed results carry
// their origin (when set) and heading.
func EncodeConvertResult(res conversion.Result) (*structpb.Struct, error) {
	if res.Frame == nil {
		return nil, fmt.Errorf("%w: empty result", ErrMalformedMessage)
	}
	a, b, c := res.Frame.Position()
	path := make([]any, len(res.Path))
	for i, k := range res.Path {
		path[i] = k.String()
	}

	m := map[string]any{
		fieldFrame:    res.Frame.Kind().String(),
		fieldPosition: []any{a, b, c},
		fieldPath:     path,
	}
	if res.Site != "" {
		m[fieldSite] = res.Site
	}
	if ef, ok := res.Frame.(frames.EarthFixedFrame); ok {
		if ef.HasOrigin() {
			m[fieldOrigin] = llaMap(ef.Origin())
		}
		m[fieldHeading] = ef.Heading()
	}
	return structpb.NewStruct(m)
}

// DecodeConvertResult parses a Convert response message, rebuilding the
// frame with its anchor.
func DecodeConvertResult(in *structpb.Struct) (conversion.Result, error) {
	var res conversion.Result
	fields := in.GetFields()

	kind, err := kindField(fields, fieldFrame)
	if err != nil {
		return res, err
	}
	pos, err := positionField(fields, fieldPosition)
	if err != nil {
		return res, err
	}

	var ref frames.Reference
	if v, ok := fields[fieldOrigin]; ok {
		origin, err := llaValue(v)
		if err != nil {
			return res, fmt.Errorf("%s: %w", fieldOrigin, err)
		}
		ref.Origin, ref.HasOrigin = origin, true
	}
	if v, ok := fields[fieldHeading]; ok {
		if ref.Heading, err = numberValue(v); err != nil {
			return res, fmt.Errorf("%s: %w", fieldHeading, err)
		}
	}

	for _, v := range fields[fieldPath].GetListValue().GetValues() {
		name, err := stringValue(v)
		if err != nil {
			return res, fmt.Errorf("%s: %w", fieldPath, err)
		}
		k, err := frames.ParseKind(name)
		if err != nil {
			return res, fmt.Errorf("%s: %w", fieldPath, err)
		}
		res.Path = append(res.Path, k)
	}

	res.Frame = conversion.NewFrame(kind, pos, ref)
	res.Site = fields[fieldSite].GetStringValue()
	return res, nil
}

// EncodeSites renders a ListSites response message.
func EncodeSites(list []model.Site) (*structpb.Struct, error) {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = map[string]any{
			fieldID:        s.ID,
			fieldName:      s.Name,
			fieldLatitude:  s.Latitude,
			fieldLongitude: s.Longitude,
			fieldAltitude:  s.Altitude,
			fieldHeading:   s.Heading,
		}
	}
	return structpb.NewStruct(map[string]any{fieldSites: out})
}

// DecodeSites parses a ListSites response message.
func DecodeSites(in *structpb.Struct) ([]model.Site, error) {
	values := in.GetFields()[fieldSites].GetListValue().GetValues()
	out := make([]model.Site, 0, len(values))
	for i, v := range values {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("%w: site %d is not an object", ErrMalformedMessage, i)
		}
		out = append(out, model.Site{
			ID:        fields[fieldID].GetStringValue(),
			Name:      fields[fieldName].GetStringValue(),
			Latitude:  fields[fieldLatitude].GetNumberValue(),
			Longitude: fields[fieldLongitude].GetNumberValue(),
			Altitude:  fields[fieldAltitude].GetNumberValue(),
			Heading:   fields[fieldHeading].GetNumberValue(),
		})
	}
	return out, nil
}

func positionList(p [3]float64) []any {
	return []any{p[0], p[1], p[2]}
}

func llaMap(l frames.LLA) map[string]any {
	return map[string]any{
		fieldLatitude:  l.Latitude(),
		fieldLongitude: l.Longitude(),
		fieldAltitude:  l.Altitude(),
	}
}

func kindField(fields map[string]*structpb.Value, key string) (frames.Kind, error) {
	v, ok := fields[key]
	if !ok {
		return frames.KindUnknown, fmt.Errorf("%w: %s is required", ErrMalformedMessage, key)
	}
	name, err := stringValue(v)
	if err != nil {
		return frames.KindUnknown, fmt.Errorf("%s: %w", key, err)
	}
	k, err := frames.ParseKind(name)
	if err != nil {
		return frames.KindUnknown, fmt.Errorf("%s: %w", key, err)
	}
	return k, nil
}

func positionField(fields map[string]*structpb.Value, key string) ([3]float64, error) {
	var pos [3]float64
	v, ok := fields[key]
	if !ok {
		return pos, fmt.Errorf("%w: %s is required", ErrMalformedMessage, key)
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return pos, fmt.Errorf("%w: %s must be a list", ErrMalformedMessage, key)
	}
	values := list.ListValue.GetValues()
	if len(values) != len(pos) {
		return pos, fmt.Errorf("%w: %s needs 3 components, got %d", ErrMalformedMessage, key, len(values))
	}
	for i, item := range values {
		n, err := numberValue(item)
		if err != nil {
			return pos, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		pos[i] = n
	}
	return pos, nil
}

func llaValue(v *structpb.Value) (frames.LLA, error) {
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return frames.LLA{}, fmt.Errorf("%w: expected an object", ErrMalformedMessage)
	}
	fields := s.StructValue.GetFields()
	var coords [3]float64
	for i, key := range []string{fieldLatitude, fieldLongitude, fieldAltitude} {
		item, ok := fields[key]
		if !ok {
			return frames.LLA{}, fmt.Errorf("%w: %s is required", ErrMalformedMessage, key)
		}
		n, err := numberValue(item)
		if err != nil {
			return frames.LLA{}, fmt.Errorf("%s: %w", key, err)
		}
		coords[i] = n
	}
	return frames.NewLLA(coords[0], coords[1], coords[2]), nil
}

func numberValue(v *structpb.Value) (float64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: expected a number", ErrMalformedMessage)
	}
	return n.NumberValue, nil
}

func stringValue(v *structpb.Value) (string, error) {
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: expected a string", ErrMalformedMessage)
	}
	return strings.TrimSpace(s.StringValue), nil
}
