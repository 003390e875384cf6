package connectivity

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/planner"
	"dungeon-layout/internal/layout/shape"
)

func placedRoom(name string, x, y float64) models.ResolvedRoom {
	return models.ResolvedRoom{
		Node:     models.Node{Name: name, IsRoom: true, RoomWidth: 6, RoomHeight: 6},
		Position: geometry.Point{X: x, Y: y},
	}
}

func names(rooms []models.ResolvedRoom) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.Name
	}
	return out
}

func totalDistance(conns []models.Connection) float64 {
	sum := 0.0
	for _, c := range conns {
		sum += c.Distance
	}
	return sum
}

func TestSpanningTreeFourRoomsIsMinimal(t *testing.T) {
	rooms := []models.ResolvedRoom{
		placedRoom("A", 0, 0),
		placedRoom("B", 40, 5),
		placedRoom("C", 10, 60),
		placedRoom("D", 70, 70),
	}
	tree := SpanningTree(rooms)
	if len(tree) != 3 {
		t.Fatalf("got %d edges, want 3", len(tree))
	}
	if !Connected(names(rooms), tree) {
		t.Fatal("spanning tree does not connect every room")
	}

	// Перебор всех 3-рёберных остовных подмножеств полного графа.
	type pair struct{ a, b int }
	var all []pair
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			all = append(all, pair{i, j})
		}
	}
	best := math.Inf(1)
	for x := 0; x < len(all); x++ {
		for y := x + 1; y < len(all); y++ {
			for z := y + 1; z < len(all); z++ {
				var conns []models.Connection
				sum := 0.0
				for _, p := range []pair{all[x], all[y], all[z]} {
					d := geometry.Distance(rooms[p.a].Position, rooms[p.b].Position)
					sum += d
					conns = append(conns, models.Connection{From: rooms[p.a].Name, To: rooms[p.b].Name})
				}
				if Connected(names(rooms), conns) && sum < best {
					best = sum
				}
			}
		}
	}
	if got := totalDistance(tree); math.Abs(got-best) > 1e-9 {
		t.Fatalf("tree length %v, optimum %v", got, best)
	}
}

func TestSpanningTreeConnectsRandomRooms(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 2 + rng.Intn(15)
		rooms := make([]models.ResolvedRoom, n)
		for i := range rooms {
			rooms[i] = placedRoom(fmt.Sprintf("R%d", i), rng.Float64()*200, rng.Float64()*200)
		}
		tree := SpanningTree(rooms)
		if len(tree) != n-1 {
			t.Errorf("seed=%d: %d edges for %d rooms", seed, len(tree), n)
		}
		if !Connected(names(rooms), tree) {
			t.Errorf("seed=%d: tree is not connected", seed)
		}
	}
}

func TestSpanningTreeTrivialInputs(t *testing.T) {
	if got := SpanningTree(nil); len(got) != 0 {
		t.Fatalf("nil rooms gave %d edges", len(got))
	}
	if got := SpanningTree([]models.ResolvedRoom{placedRoom("A", 0, 0)}); len(got) != 0 {
		t.Fatalf("single room gave %d edges", len(got))
	}
}

func TestAddLoopsNeverDuplicatesPairs(t *testing.T) {
	rooms := make([]models.ResolvedRoom, 8)
	for i := range rooms {
		rooms[i] = placedRoom(fmt.Sprintf("R%d", i), float64(i%3)*30, float64(i/3)*30)
	}
	tree := SpanningTree(rooms)
	all := AddLoops(rand.New(rand.NewSource(7)), rooms, tree, LoopOptions{Chance: 1})

	seen := map[string]bool{}
	for _, c := range all {
		if seen[c.From+"|"+c.To] || seen[c.To+"|"+c.From] {
			t.Fatalf("pair %s/%s added twice", c.From, c.To)
		}
		seen[c.From+"|"+c.To] = true
	}
	want := len(rooms) * (len(rooms) - 1) / 2
	if len(all) != want {
		t.Fatalf("with chance 1 expected the complete graph (%d edges), got %d", want, len(all))
	}
	if len(tree) != len(rooms)-1 {
		t.Fatal("AddLoops must not modify the tree slice")
	}
}

func TestAddLoopsRespectsMaxLength(t *testing.T) {
	rooms := []models.ResolvedRoom{
		placedRoom("A", 0, 0),
		placedRoom("B", 10, 0),
		placedRoom("C", 20, 0),
		placedRoom("D", 500, 0),
	}
	tree := SpanningTree(rooms)
	all := AddLoops(rand.New(rand.NewSource(1)), rooms, tree, LoopOptions{Chance: 1, MaxLength: 25})
	for _, c := range all[len(tree):] {
		if c.Distance > 25 {
			t.Errorf("loop %s longer than cutoff: %v", c.ID, c.Distance)
		}
	}
	if len(all) != len(tree)+1 {
		t.Fatalf("expected only A-C as an extra loop, got %d extras", len(all)-len(tree))
	}
}

func TestBestDoorPairPicksClosestDoors(t *testing.T) {
	s := shape.Rectangle(10, 10)
	s.Doors = []models.Door{
		{Edge: 0, Position: 0.5, Width: 2}, // низ
		{Edge: 1, Position: 0.5, Width: 2}, // право
		{Edge: 3, Position: 0.5, Width: 2}, // лево
	}
	a := placedRoom("A", 0, 0)
	a.Shape = s
	b := placedRoom("B", 50, 0)
	b.Shape = s

	from, to := BestDoorPair(a, b)
	if from.Position != (geometry.Point{X: 5, Y: 0}) {
		t.Errorf("A should use its right door, got %v", from.Position)
	}
	if to.Position != (geometry.Point{X: 45, Y: 0}) {
		t.Errorf("B should use its left door, got %v", to.Position)
	}
	if from.Width != 2 || to.Width != 2 {
		t.Errorf("door widths not carried: %v %v", from.Width, to.Width)
	}
}

func TestFromHierarchy(t *testing.T) {
	nodes := []models.Node{
		{Name: "Start", IsRoom: true, RoomWidth: 10, RoomHeight: 10, Children: []string{"Hall", "Missing"}},
		{Name: "Hall", HallwayLength: 20, ParentDirection: models.DirectionCenter, Children: []string{"End"}},
		{Name: "End", IsRoom: true, RoomWidth: 6, RoomHeight: 6, ParentDirection: models.DirectionCenter},
	}
	layout := planner.ComputeLayout(nodes)
	conns := FromHierarchy(layout, nodes)

	if len(conns) != 2 {
		t.Fatalf("got %d connections, want 2", len(conns))
	}
	hall, _ := layout.Hallway("Hall")
	end, _ := layout.Room("End")

	first := conns[0]
	if first.From != "Start" || first.To != "Hall" {
		t.Fatalf("first connection %s→%s", first.From, first.To)
	}
	if first.ToDoor.Position != hall.Start {
		t.Errorf("child side should attach to hallway start")
	}
	start, _ := layout.Room("Start")
	if !start.Bounds().Contains(first.FromDoor.Position) {
		t.Errorf("parent side %v should lie on the Start room boundary", first.FromDoor.Position)
	}

	second := conns[1]
	if second.FromDoor.Position != hall.End || second.ToDoor.Position != end.DoorPosition {
		t.Errorf("hallway→room connection uses %v→%v", second.FromDoor.Position, second.ToDoor.Position)
	}
	if !Connected([]string{"Start", "Hall", "End"}, conns) {
		t.Error("hierarchy connections should connect the DAG")
	}
}

func TestBoundaryPoint(t *testing.T) {
	p := BoundaryPoint(geometry.Point{}, 10, 4, geometry.Point{X: 100, Y: 0})
	if p != (geometry.Point{X: 5, Y: 0}) {
		t.Errorf("east boundary = %v", p)
	}
	p = BoundaryPoint(geometry.Point{}, 10, 4, geometry.Point{X: 0, Y: -50})
	if p != (geometry.Point{X: 0, Y: -2}) {
		t.Errorf("south boundary = %v", p)
	}
}

func TestFromHierarchyDisambiguatesIDs(t *testing.T) {
	nodes := []models.Node{
		{Name: "a", IsRoom: true, RoomWidth: 6, RoomHeight: 6, Children: []string{"a-b", "b-c"}},
		{Name: "a-b", IsRoom: true, RoomWidth: 6, RoomHeight: 6, Children: []string{"c"}},
		{Name: "b-c", IsRoom: true, RoomWidth: 6, RoomHeight: 6},
		{Name: "c", IsRoom: true, RoomWidth: 6, RoomHeight: 6},
	}
	layout := planner.ComputeLayout(nodes)
	conns := FromHierarchy(layout, nodes)
	if len(conns) != 3 {
		t.Fatalf("connections = %d, want 3", len(conns))
	}

	ids := map[string]bool{}
	for _, c := range conns {
		if ids[c.ID] {
			t.Fatalf("duplicate connection id %s", c.ID)
		}
		ids[c.ID] = true
	}
	if !ids["a-b-c"] || !ids["a-b-c#2"] {
		t.Errorf("ids = %v", ids)
	}
}
