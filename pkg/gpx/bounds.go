package gpx

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees. MinLon/MaxLon are the x range and
// MinLat/MaxLat the y range.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// EmptyBounds returns the empty bounding box.
//
// The empty box has inverted infinite edges so that it is the identity for
// Union and ExtendPoint. IsEmpty reports true for it.
func EmptyBounds() Bounds {
	return Bounds{
		MinLon: math.Inf(1),
		MaxLon: math.Inf(-1),
		MinLat: math.Inf(1),
		MaxLat: math.Inf(-1),
	}
}

// IsEmpty returns true if the bounds contain no point at all.
func (b Bounds) IsEmpty() bool {
	return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat
}

// Contains returns true if the point (lon, lat) is within the bounds.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	if b.IsEmpty() {
		return b
	}
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return Bounds{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// ExtendPoint returns the bounds grown to include (lon, lat).
func (b Bounds) ExtendPoint(lon, lat float64) Bounds {
	if b.IsEmpty() {
		return Bounds{MinLon: lon, MaxLon: lon, MinLat: lat, MaxLat: lat}
	}
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
	return b
}

// Bound converts the bounds to an orb.Bound. The empty box maps to the zero
// orb.Bound.
func (b Bounds) Bound() orb.Bound {
	if b.IsEmpty() {
		return orb.Bound{}
	}
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// BoundsFromOrb converts an orb.Bound to Bounds.
func BoundsFromOrb(ob orb.Bound) Bounds {
	return Bounds{
		MinLon: ob.Min.Lon(),
		MaxLon: ob.Max.Lon(),
		MinLat: ob.Min.Lat(),
		MaxLat: ob.Max.Lat(),
	}
}

// rect converts the bounds to an R-tree rectangle.
//
// R-tree requires non-zero dimensions and does not count touching
// rectangles as intersecting, so every box is padded by a small epsilon
// (~11 meters at the equator) on all sides. Callers re-check candidates
// with Intersects.
func (b Bounds) rect() rtreego.Rect {
	const epsilon = 0.0001

	p := b.Expand(epsilon)
	point := rtreego.Point{p.MinLon, p.MinLat}
	rect, _ := rtreego.NewRect(point, []float64{p.MaxLon - p.MinLon, p.MaxLat - p.MinLat})
	return rect
}
