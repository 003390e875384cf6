package hallway

import (
	"math"
	"math/rand"
	"testing"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

func conn(id string, from, to geometry.Point, width float64) models.Connection {
	return models.Connection{
		ID:       id,
		From:     id + "-a",
		To:       id + "-b",
		FromDoor: models.DoorRef{Position: from, Width: width},
		ToDoor:   models.DoorRef{Position: to, Width: width},
	}
}

func TestBuildOneSegmentPerConnection(t *testing.T) {
	conns := []models.Connection{
		conn("a", geometry.Point{X: 0, Y: 0}, geometry.Point{X: 10, Y: 0}, 2),
		conn("b", geometry.Point{X: 0, Y: 5}, geometry.Point{X: 10, Y: 5}, 2),
	}
	n := Build(conns, Options{Width: 3})
	if len(n.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(n.Segments))
	}
	for i, s := range n.Segments {
		if s.Start != conns[i].FromDoor.Position || s.End != conns[i].ToDoor.Position {
			t.Errorf("segment %s does not follow its connection", s.ID)
		}
		if s.Width != 3 {
			t.Errorf("segment width = %v, want 3", s.Width)
		}
		if s.Connections[0] != conns[i].ID {
			t.Errorf("segment %s not tagged with its connection", s.ID)
		}
	}
	if len(n.Intersections) != 0 {
		t.Errorf("parallel segments reported %d intersections", len(n.Intersections))
	}
	if len(n.DeadEnds) != 0 {
		t.Errorf("dead ends generated without a chance configured")
	}
}

func TestCrossingHallwaysIntersectOnce(t *testing.T) {
	conns := []models.Connection{
		conn("we", geometry.Point{X: -20, Y: 10}, geometry.Point{X: 20, Y: 10}, 0),
		conn("ns", geometry.Point{X: 5, Y: -10}, geometry.Point{X: 5, Y: 30}, 0),
	}
	n := Build(conns, Options{})

	if len(n.Intersections) != 1 {
		t.Fatalf("intersections = %d, want 1", len(n.Intersections))
	}
	x := n.Intersections[0]
	if x.Position != (geometry.Point{X: 5, Y: 10}) {
		t.Errorf("crossing at %v, want (5,10)", x.Position)
	}
	if x.Radius != DefaultWidth/2 {
		t.Errorf("radius = %v, want %v", x.Radius, DefaultWidth/2)
	}
	if x.Segments != [2]string{"seg-we", "seg-ns"} {
		t.Errorf("segments = %v", x.Segments)
	}
}

func TestIntersectionRadiusUsesWiderSegment(t *testing.T) {
	segs := []models.HallwaySegment{
		{ID: "narrow", Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 10}, Width: 2},
		{ID: "wide", Start: geometry.Point{X: 0, Y: 10}, End: geometry.Point{X: 10, Y: 0}, Width: 8},
	}
	xs := DetectIntersections(segs)
	if len(xs) != 1 || xs[0].Radius != 4 {
		t.Fatalf("unexpected intersections %+v", xs)
	}
}

func TestDeadEnds(t *testing.T) {
	conns := []models.Connection{
		conn("a", geometry.Point{X: 0, Y: 0}, geometry.Point{X: 100, Y: 0}, 2),
		conn("b", geometry.Point{X: 0, Y: 50}, geometry.Point{X: 0, Y: 150}, 2),
		conn("zero", geometry.Point{X: 9, Y: 9}, geometry.Point{X: 9, Y: 9}, 2),
	}
	for seed := int64(0); seed < 20; seed++ {
		n := Build(conns, Options{DeadEndChance: 1, Rand: rand.New(rand.NewSource(seed))})
		if len(n.DeadEnds) != 2 {
			t.Fatalf("seed=%d: dead ends = %d, want 2 (zero-length segment skipped)", seed, len(n.DeadEnds))
		}
		for _, d := range n.DeadEnds {
			var seg models.HallwaySegment
			for _, s := range n.Segments {
				if s.ID == d.Segment {
					seg = s
				}
			}
			_, t0 := geometry.PointToSegment(d.Base, seg.Start, seg.End)
			if t0 < 0.3-1e-9 || t0 > 0.7+1e-9 {
				t.Errorf("seed=%d: dead end base at t=%v", seed, t0)
			}
			length := geometry.Distance(d.Base, d.Tip)
			if length < 5 || length > 15 {
				t.Errorf("seed=%d: dead end length %v", seed, length)
			}
			dir := seg.End.Sub(seg.Start).Normalize()
			if math.Abs(d.Tip.Sub(d.Base).Dot(dir)) > 1e-9 {
				t.Errorf("seed=%d: dead end not perpendicular", seed)
			}
		}
	}
}

func TestPiecesSplitAtIntersections(t *testing.T) {
	conns := []models.Connection{
		conn("we", geometry.Point{X: 0, Y: 0}, geometry.Point{X: 20, Y: 0}, 0),
		conn("ns", geometry.Point{X: 10, Y: -10}, geometry.Point{X: 10, Y: 10}, 0),
		conn("far", geometry.Point{X: 100, Y: 100}, geometry.Point{X: 120, Y: 100}, 0),
	}
	pieces := Build(conns, Options{}).Pieces()
	if len(pieces) != 5 {
		t.Fatalf("pieces = %d, want 5", len(pieces))
	}
	if pieces[0].ID != "seg-we_1" || pieces[0].End != (geometry.Point{X: 10, Y: 0}) {
		t.Errorf("first piece = %+v", pieces[0])
	}
	if pieces[4].ID != "seg-far" {
		t.Errorf("untouched segment should keep its id, got %s", pieces[4].ID)
	}
}

func TestJointsAreNotIntersections(t *testing.T) {
	segs := []models.HallwaySegment{
		{ID: "body", Start: geometry.Point{X: 0, Y: 10}, End: geometry.Point{X: 0, Y: 30}, Width: 4},
		{ID: "link", Start: geometry.Point{X: 0, Y: 30}, End: geometry.Point{X: 20, Y: 30}, Width: 4},
		{ID: "tee", Start: geometry.Point{X: -10, Y: 20}, End: geometry.Point{X: 0, Y: 20}, Width: 4},
	}
	xs := DetectIntersections(segs)
	if len(xs) != 1 {
		t.Fatalf("intersections = %+v, want only the T-junction", xs)
	}
	if xs[0].Segments != [2]string{"body", "tee"} || xs[0].Position != (geometry.Point{X: 0, Y: 20}) {
		t.Errorf("unexpected intersection %+v", xs[0])
	}
}

func TestBuildKeepsSegmentIDsUnique(t *testing.T) {
	conns := []models.Connection{
		conn("a-b-c", geometry.Point{X: 0, Y: 0}, geometry.Point{X: 20, Y: 0}, 0),
		conn("a-b-c", geometry.Point{X: 10, Y: -10}, geometry.Point{X: 10, Y: 10}, 0),
	}
	n := Build(conns, Options{})
	if n.Segments[0].ID == n.Segments[1].ID {
		t.Fatalf("duplicate segment id %s", n.Segments[0].ID)
	}
	if n.Segments[1].ID != "seg-a-b-c#2" {
		t.Errorf("second id = %s", n.Segments[1].ID)
	}

	pieces := n.Pieces()
	if len(pieces) != 4 {
		t.Fatalf("pieces = %d, want 4 (each segment split once)", len(pieces))
	}
	for _, p := range pieces {
		if p.Length() != 10 {
			t.Errorf("piece %s has length %v, want 10", p.ID, p.Length())
		}
	}
}
