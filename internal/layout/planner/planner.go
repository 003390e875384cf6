package planner

import (
	"log"
	"math"

	"github.com/zyedidia/generic/mapset"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Floor Layout Planner
// ============================================================

const (
	Spacing             = 25.0 // зазор между родителем и ребёнком
	Padding             = 10.0 // поле вокруг этажа
	DefaultHallwayWidth = 4.0
)

var north = geometry.Point{X: 0, Y: 1}

// ComputeLayout раскладывает DAG этажа в мировые координаты обходом в ширину от корня.
// Случайности нет: одинаковый вход даёт побитно одинаковый результат.
func ComputeLayout(nodes []models.Node) *models.FloorLayout {
	layout := &models.FloorLayout{
		Rooms:         []models.ResolvedRoom{},
		Hallways:      []models.ResolvedHallway{},
		Connections:   []models.Connection{},
		Segments:      []models.HallwaySegment{},
		Intersections: []models.Intersection{},
		DeadEnds:      []models.DeadEnd{},
	}
	if len(nodes) == 0 {
		layout.Bounds = layout.ComputeBounds(Padding)
		return layout
	}

	p := &planState{
		nodes:   indexNodes(nodes),
		placed:  make(map[string]*placement, len(nodes)),
		visited: mapset.New[string](),
		layout:  layout,
	}

	root := FindRoot(nodes)
	layout.Root = root.Name
	p.placeRoot(root)

	queue := &workQueue{}
	p.enqueueChildren(queue, root)

	for {
		item, ok := queue.pop()
		if !ok {
			break
		}
		if p.visited.Has(item.name) {
			continue
		}

		node, ok := p.nodes[item.name]
		if !ok {
			log.Printf("[PLANNER] child %q of %q not found, skipped", item.name, item.parent)
			continue
		}

		p.placeChild(node, p.placed[item.parent], item.index)
		p.enqueueChildren(queue, node)
	}

	layout.Bounds = layout.ComputeBounds(Padding)
	return layout
}

// FindRoot возвращает узел, которого нет ни в одном списке children.
// Если такого нет, корнем становится первый узел.
func FindRoot(nodes []models.Node) models.Node {
	referenced := mapset.New[string]()
	for _, n := range nodes {
		for _, c := range n.Children {
			referenced.Put(c)
		}
	}
	for _, n := range nodes {
		if !referenced.Has(n.Name) {
			return n
		}
	}
	log.Printf("[PLANNER] no root found among %d nodes, using %q", len(nodes), nodes[0].Name)
	return nodes[0]
}

func indexNodes(nodes []models.Node) map[string]models.Node {
	out := make(map[string]models.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := out[n.Name]; dup {
			continue
		}
		out[n.Name] = n
	}
	return out
}

// ============================================================
// Work queue
// ============================================================

type queueItem struct {
	name   string
	parent string
	index  int // позиция ребёнка в children родителя
}

type workQueue struct {
	items []queueItem
	head  int
}

func (q *workQueue) push(it queueItem) { q.items = append(q.items, it) }

func (q *workQueue) pop() (queueItem, bool) {
	if q.head >= len(q.items) {
		return queueItem{}, false
	}
	it := q.items[q.head]
	q.head++
	return it, true
}

// ============================================================
// Placement
// ============================================================

type placement struct {
	node     models.Node
	position geometry.Point // центр комнаты
	start    geometry.Point // коридор
	end      geometry.Point
	dir      geometry.Point
}

type planState struct {
	nodes   map[string]models.Node
	placed  map[string]*placement
	visited mapset.Set[string]
	layout  *models.FloorLayout
}

func (p *planState) enqueueChildren(q *workQueue, parent models.Node) {
	for i, child := range parent.Children {
		q.push(queueItem{name: child, parent: parent.Name, index: i})
	}
}

func (p *planState) placeRoot(root models.Node) {
	p.visited.Put(root.Name)

	if !root.IsRoom {
		p.addHallway(root, geometry.Point{}, north.Scale(root.HallwayLength), north)
		return
	}

	room := models.ResolvedRoom{Node: root}
	if root.ParentDoorOffset != nil {
		offset := DoorOffset(root.ParentDoorOffset, root.RoomWidth, root.RoomHeight)
		room.DoorSide = models.DoorSideBottom
		room.DoorPosition = DoorPoint(room.Position, root.RoomWidth, root.RoomHeight, room.DoorSide, offset)
		room.HasDoor = true
	}
	p.placed[root.Name] = &placement{node: root}
	p.layout.AddRoom(room)
}

func (p *planState) placeChild(node models.Node, parent *placement, index int) {
	p.visited.Put(node.Name)

	if parent.node.IsRoom {
		p.placeFromRoom(node, parent, index)
		return
	}
	p.placeFromHallway(node, parent)
}

// placeFromRoom: один ребёнок выходит влево/вправо/на север, несколько ставятся по окружности.
func (p *planState) placeFromRoom(node models.Node, parent *placement, index int) {
	dir, extent := exitFromRoom(parent.node, node.ParentDirection, index)
	exit := parent.position.Add(dir.Scale(extent))

	if !node.IsRoom {
		start := parent.position.Add(dir.Scale(extent + Spacing/2))
		end := parent.position.Add(dir.Scale(extent + Spacing))
		p.addHallway(node, start, end, dir)
		return
	}

	childExtent := supportExtent(node, dir)
	center := parent.position.Add(dir.Scale(extent + Spacing + childExtent))
	p.addRoom(node, center, exit)
}

// placeFromHallway: направление родителя поворачивается по parentDirection.
func (p *planState) placeFromHallway(node models.Node, parent *placement) {
	dir := Rotate(parent.dir, node.ParentDirection)

	if !node.IsRoom {
		p.addHallway(node, parent.end, parent.end.Add(dir.Scale(node.HallwayLength)), dir)
		return
	}

	center := parent.end.Add(dir.Scale(Spacing))
	p.addRoom(node, center, parent.end)
}

func (p *planState) addRoom(node models.Node, center, toward geometry.Point) {
	side := FacingSide(center, toward)
	offset := DoorOffset(node.ParentDoorOffset, node.RoomWidth, node.RoomHeight)

	room := models.ResolvedRoom{
		Node:         node,
		Position:     center,
		DoorSide:     side,
		DoorPosition: DoorPoint(center, node.RoomWidth, node.RoomHeight, side, offset),
		HasDoor:      true,
	}
	p.placed[node.Name] = &placement{node: node, position: center}
	p.layout.AddRoom(room)
}

func (p *planState) addHallway(node models.Node, start, end, dir geometry.Point) {
	dir = dir.Normalize()
	hall := models.ResolvedHallway{
		Node:      node,
		Start:     start,
		End:       end,
		Direction: dir,
		Segments: []models.HallwaySegment{{
			ID:          node.Name,
			Start:       start,
			End:         end,
			Width:       DefaultHallwayWidth,
			Connections: []string{node.Name},
		}},
	}
	p.placed[node.Name] = &placement{node: node, start: start, end: end, dir: dir}
	p.layout.AddHallway(hall)
}

// ============================================================
// Relative placement helpers
// ============================================================

// exitFromRoom возвращает направление выхода из комнаты и расстояние от центра до края.
func exitFromRoom(parent models.Node, direction models.Direction, index int) (geometry.Point, float64) {
	total := len(parent.Children)
	if total > 1 {
		angle := float64(index) * (2 * math.Pi / float64(total))
		return geometry.FromAngle(angle), math.Max(parent.RoomWidth, parent.RoomHeight) / 2
	}

	switch direction {
	case models.DirectionLeft:
		return geometry.Point{X: -1, Y: 0}, parent.RoomWidth / 2
	case models.DirectionRight:
		return geometry.Point{X: 1, Y: 0}, parent.RoomWidth / 2
	default:
		return north, parent.RoomHeight / 2
	}
}

func supportExtent(n models.Node, dir geometry.Point) float64 {
	return math.Abs(dir.X)*n.RoomWidth/2 + math.Abs(dir.Y)*n.RoomHeight/2
}

// Rotate: center без изменений, left +90°, right −90°.
func Rotate(dir geometry.Point, direction models.Direction) geometry.Point {
	switch direction {
	case models.DirectionLeft:
		return dir.RotateLeft()
	case models.DirectionRight:
		return dir.RotateRight()
	default:
		return dir
	}
}

// FacingSide выбирает сторону комнаты с центром center, обращённую к точке toward.
func FacingSide(center, toward geometry.Point) models.DoorSide {
	d := toward.Sub(center)
	if d.IsZero() {
		return models.DoorSideBottom
	}
	if math.Abs(d.X) > math.Abs(d.Y) {
		if d.X > 0 {
			return models.DoorSideRight
		}
		return models.DoorSideLeft
	}
	if d.Y > 0 {
		return models.DoorSideTop
	}
	return models.DoorSideBottom
}

// DoorOffset ограничивает смещение двери диапазоном [0, min(w,h)-1].
// Без заданного смещения дверь ставится в середину допустимого диапазона.
func DoorOffset(offset *float64, w, h float64) float64 {
	limit := math.Max(0, math.Min(w, h)-1)
	if offset == nil {
		return limit / 2
	}
	return geometry.Clamp(*offset, 0, limit)
}

// DoorPoint считает мировую позицию двери на стороне side, offset отсчитывается от нижнего/левого угла.
func DoorPoint(center geometry.Point, w, h float64, side models.DoorSide, offset float64) geometry.Point {
	r := geometry.RectAround(center, w, h)
	switch side {
	case models.DoorSideTop:
		return geometry.Point{X: r.MinX + offset, Y: r.MaxY}
	case models.DoorSideLeft:
		return geometry.Point{X: r.MinX, Y: r.MinY + offset}
	case models.DoorSideRight:
		return geometry.Point{X: r.MaxX, Y: r.MinY + offset}
	default:
		return geometry.Point{X: r.MinX + offset, Y: r.MinY}
	}
}
