package gpx

import (
	"math"
	"strconv"
	"strings"

	"github.com/aarondl/opt/omit"
	"github.com/spf13/cast"
)

// applyCommon sets one of the text attributes shared by every object type.
// It returns false if attr is not a common attribute.
//
// A nil value clears the attribute. A value that cannot be rendered as text
// is ignored.
func applyCommon(o *Object, attr Attribute, v any) bool {
	var dst *string
	switch attr {
	case AttrName:
		dst = &o.Name
	case AttrComment:
		dst = &o.Comment
	case AttrDescription:
		dst = &o.Description
	case AttrSource:
		dst = &o.Source
	case AttrURL:
		dst = &o.URL
	case AttrURLName:
		dst = &o.URLName
	default:
		return false
	}
	if s, ok := toText(v); ok {
		*dst = s
	}
	return true
}

// applyWaypoint sets the waypoint-only attributes (elevation, symbol).
func applyWaypoint(w *Waypoint, attr Attribute, v any) {
	switch attr {
	case AttrElevation:
		if v == nil {
			return
		}
		if ele, err := cast.ToFloat64E(v); err == nil {
			w.Elevation = omit.From(ele)
		}
	case AttrSymbol:
		if s, ok := toText(v); ok {
			w.Symbol = s
		}
	}
}

// applyNumber sets the route/track number attribute.
func applyNumber(n *omit.Val[int], attr Attribute, v any) {
	if attr != AttrNumber || v == nil {
		return
	}
	if num, ok := toInt(v); ok {
		*n = omit.From(num)
	}
}

// toInt coerces v to an int. Strings are read as base-10 integers or whole
// decimals ("010" is 10, "3.0" is 3). Floats must be whole numbers.
func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return wholeInt(f)
	case float64:
		return wholeInt(x)
	case float32:
		return wholeInt(float64(x))
	}
	i, err := cast.ToIntE(v)
	return i, err == nil
}

func wholeInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func toText(v any) (string, bool) {
	if v == nil {
		return "", true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// waypointValue reads one attribute of a waypoint as a generic value.
// Unset optional values and attributes that do not apply yield nil.
func waypointValue(w *Waypoint, attr Attribute) any {
	switch attr {
	case AttrElevation:
		if ele, ok := w.Elevation.Get(); ok {
			return ele
		}
		return nil
	case AttrSymbol:
		return w.Symbol
	}
	return commonValue(&w.Object, attr)
}

func routeValue(r *Route, attr Attribute) any {
	if attr == AttrNumber {
		return numberValue(r.Number)
	}
	return commonValue(&r.Object, attr)
}

func trackValue(t *Track, attr Attribute) any {
	if attr == AttrNumber {
		return numberValue(t.Number)
	}
	return commonValue(&t.Object, attr)
}

func numberValue(n omit.Val[int]) any {
	if v, ok := n.Get(); ok {
		return v
	}
	return nil
}

func commonValue(o *Object, attr Attribute) any {
	switch attr {
	case AttrName:
		return o.Name
	case AttrComment:
		return o.Comment
	case AttrDescription:
		return o.Description
	case AttrSource:
		return o.Source
	case AttrURL:
		return o.URL
	case AttrURLName:
		return o.URLName
	}
	return nil
}
