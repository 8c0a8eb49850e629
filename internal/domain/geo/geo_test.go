package geo

import "testing"

func TestCrossSign(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 1}
	left := Point{Lat: 1, Lng: 0}
	right := Point{Lat: -1, Lng: 0}

	if Cross(a, b, left) <= 0 {
		t.Fatalf("expected positive orientation for left turn")
	}
	if Cross(a, b, right) >= 0 {
		t.Fatalf("expected negative orientation for right turn")
	}
}

func TestSegmentsIntersectCrossing(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 2}
	c := Point{Lat: -1, Lng: 1}
	d := Point{Lat: 1, Lng: 1}

	if !SegmentsIntersect(a, b, c, d) {
		t.Fatalf("expected segments to intersect")
	}
}

func TestSegmentsIntersectParallelNonTouching(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 2}
	c := Point{Lat: 1, Lng: 0}
	d := Point{Lat: 1, Lng: 2}

	if SegmentsIntersect(a, b, c, d) {
		t.Fatalf("expected parallel segments not to intersect")
	}
}

func TestSegmentsIntersectCollinearTouchIsStrictlyFalse(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 2}
	c := Point{Lat: 0, Lng: 2}
	d := Point{Lat: 0, Lng: 4}

	if SegmentsIntersect(a, b, c, d) {
		t.Fatalf("expected collinear touch to be strictly non-intersecting")
	}
}

func TestSegmentsIntersectSharedEndpointGeometry(t *testing.T) {
	// Two segments that meet exactly at a shared point (b == c) must not be
	// reported as an interior crossing; the simulator is responsible for
	// filtering out shared-endpoint pairs before calling this, but the pure
	// geometric test on touching, non-crossing segments should agree.
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 1}
	c := Point{Lat: 0, Lng: 1}
	d := Point{Lat: 1, Lng: 1}

	if SegmentsIntersect(a, b, c, d) {
		t.Fatalf("expected touching-at-endpoint segments not to intersect")
	}
}
