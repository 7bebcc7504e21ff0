package gpx

import (
	"slices"

	"github.com/dhconnelly/rtreego"
)

// spatialIndex is an R-tree over the objects of one feature type, valid for
// one store revision.
type spatialIndex struct {
	rev   uint64
	rtree *rtreego.Rtree
}

// indexedObject is the R-tree entry for one object.
type indexedObject struct {
	id     int64
	bounds Bounds
}

// Bounds implements rtreego.Spatial.
func (o *indexedObject) Bounds() rtreego.Rect {
	return o.bounds.rect()
}

// searchIDs returns, in ascending order, the ids of objects of type t whose
// bounds intersect b. Objects without any points never match.
//
// The caller must hold s.mu (read or write). The index is rebuilt lazily
// when the store revision has moved on since it was last built.
func (s *Store) searchIDs(t FeatureType, b Bounds) []int64 {
	if b.IsEmpty() || t < 0 || int(t) >= len(s.indexes) {
		return nil
	}

	s.idxMu.Lock()
	idx := s.indexes[t]
	if idx == nil || idx.rev != s.rev {
		idx = s.buildIndex(t)
		s.indexes[t] = idx
	}
	s.idxMu.Unlock()

	// Query the R-tree, then apply the exact bounds check that the epsilon
	// padding of degenerate rectangles makes necessary.
	results := idx.rtree.SearchIntersect(b.rect())
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		obj := r.(*indexedObject)
		if obj.bounds.Intersects(b) {
			ids = append(ids, obj.id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) buildIndex(t FeatureType) *spatialIndex {
	// Create R-tree (2D, min=25 children, max=50 children)
	rtree := rtreego.NewTree(2, 25, 50)

	insert := func(id int64, b Bounds) {
		if b.IsEmpty() {
			return
		}
		rtree.Insert(&indexedObject{id: id, bounds: b})
	}

	switch t {
	case WaypointType:
		for i := range s.waypoints {
			insert(s.waypoints[i].ID, s.waypoints[i].Bounds())
		}
	case RouteType:
		for i := range s.routes {
			insert(s.routes[i].ID, s.routes[i].Bounds())
		}
	case TrackType:
		for i := range s.tracks {
			insert(s.tracks[i].ID, s.tracks[i].Bounds())
		}
	}

	return &spatialIndex{rev: s.rev, rtree: rtree}
}
