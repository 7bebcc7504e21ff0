package gpx

import (
	"testing"
)

func TestEmptyBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.IsEmpty() {
		t.Fatal("EmptyBounds should be empty")
	}
	if b.Intersects(Bounds{MinLon: -180, MaxLon: 180, MinLat: -90, MaxLat: 90}) {
		t.Error("empty bounds should not intersect anything")
	}

	p := Bounds{MinLon: 1, MaxLon: 1, MinLat: 2, MaxLat: 2}
	if got := b.Union(p); got != p {
		t.Errorf("Union with empty = %+v, want %+v", got, p)
	}
	if got := p.Union(b); got != p {
		t.Errorf("Union of empty = %+v, want %+v", got, p)
	}
	if got := b.Expand(5); !got.IsEmpty() {
		t.Errorf("Expand of empty = %+v, want empty", got)
	}
}

func TestBoundsExtendPoint(t *testing.T) {
	b := EmptyBounds().
		ExtendPoint(10, 5).
		ExtendPoint(-3, 7).
		ExtendPoint(4, -2)

	want := Bounds{MinLon: -3, MaxLon: 10, MinLat: -2, MaxLat: 7}
	if b != want {
		t.Errorf("ExtendPoint = %+v, want %+v", b, want)
	}
	if !b.Contains(0, 0) {
		t.Error("bounds should contain origin")
	}
	if b.Contains(11, 0) {
		t.Error("bounds should not contain (11, 0)")
	}
}

func TestBoundsIntersects(t *testing.T) {
	a := Bounds{MinLon: 0, MaxLon: 10, MinLat: 0, MaxLat: 10}

	tests := []struct {
		name  string
		other Bounds
		want  bool
	}{
		{"overlap", Bounds{MinLon: 5, MaxLon: 15, MinLat: 5, MaxLat: 15}, true},
		{"touching edge", Bounds{MinLon: 10, MaxLon: 20, MinLat: 0, MaxLat: 10}, true},
		{"inside", Bounds{MinLon: 2, MaxLon: 3, MinLat: 2, MaxLat: 3}, true},
		{"degenerate point inside", Bounds{MinLon: 4, MaxLon: 4, MinLat: 4, MaxLat: 4}, true},
		{"disjoint east", Bounds{MinLon: 11, MaxLon: 20, MinLat: 0, MaxLat: 10}, false},
		{"disjoint south", Bounds{MinLon: 0, MaxLon: 10, MinLat: -5, MaxLat: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestBoundsOrbConversion(t *testing.T) {
	b := Bounds{MinLon: -1, MaxLon: 2, MinLat: -3, MaxLat: 4}
	if got := BoundsFromOrb(b.Bound()); got != b {
		t.Errorf("round trip through orb.Bound = %+v, want %+v", got, b)
	}
}
