package shapefile

import (
	"testing"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 5, 5, true},
		{"on edge", 0, 5, true},
		{"on corner", 10, 10, true},
		{"outside x", 11, 5, false},
		{"outside y", 5, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Expected Contains(%g, %g) = %v, got %v", tt.x, tt.y, tt.want, got)
			}
		})
	}
}

func TestBoundsIntersects(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		name  string
		other Bounds
		want  bool
	}{
		{"overlapping", Bounds{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}, true},
		{"contained", Bounds{MinX: 2, MinY: 2, MaxX: 8, MaxY: 8}, true},
		{"containing", Bounds{MinX: -5, MinY: -5, MaxX: 15, MaxY: 15}, true},
		{"touching edge", Bounds{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, true},
		{"disjoint right", Bounds{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}, false},
		{"disjoint above", Bounds{MinX: 0, MinY: 11, MaxX: 10, MaxY: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Intersects(tt.other); got != tt.want {
				t.Errorf("Expected Intersects(%+v) = %v, got %v", tt.other, tt.want, got)
			}
			// Intersection is symmetric.
			if got := tt.other.Intersects(b); got != tt.want {
				t.Errorf("Expected symmetric Intersects = %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}
	b := Bounds{MinX: 3, MinY: -2, MaxX: 8, MaxY: 4}

	got := a.Union(b)
	want := Bounds{MinX: 0, MinY: -2, MaxX: 8, MaxY: 5}
	if got != want {
		t.Errorf("Expected union %+v, got %+v", want, got)
	}
}

func TestBoundsExpand(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	got := b.Expand(2)
	want := Bounds{MinX: -2, MinY: -2, MaxX: 12, MaxY: 12}
	if got != want {
		t.Errorf("Expected expanded %+v, got %+v", want, got)
	}
}

func TestGeometryBounds(t *testing.T) {
	g := Geometry{
		Type:        GeometryTypePolyLine,
		Coordinates: [][]float64{{3, -1}, {-2, 4}, {7, 0}},
	}
	got := g.Bounds()
	want := Bounds{MinX: -2, MinY: -1, MaxX: 7, MaxY: 4}
	if got != want {
		t.Errorf("Expected bounds %+v, got %+v", want, got)
	}

	if (Geometry{Type: GeometryTypeNull}).Bounds() != (Bounds{}) {
		t.Error("Expected zero bounds for null geometry")
	}
}
