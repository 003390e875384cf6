package connectivity

import (
	"fmt"
	"log"
	"math"

	"github.com/zyedidia/generic/mapset"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/planner"
)

// ============================================================
// Hierarchy mode
// ============================================================

// FromHierarchy строит по одному соединению на каждое ребро родитель→ребёнок DAG.
// Рёбра к неразмещённым узлам пропускаются.
func FromHierarchy(layout *models.FloorLayout, nodes []models.Node) []models.Connection {
	out := []models.Connection{}
	seen := mapset.New[string]()

	for _, parent := range nodes {
		if seen.Has(parent.Name) || !layout.Has(parent.Name) {
			continue
		}
		seen.Put(parent.Name)

		for _, child := range parent.Children {
			if !layout.Has(child) {
				log.Printf("[CONNECT] edge %s→%s skipped: child not placed", parent.Name, child)
				continue
			}
			childPoint := childAttachPoint(layout, child, parent.Name)
			parentPoint := parentAttachPoint(layout, parent.Name, childPoint)

			out = append(out, models.Connection{
				ID:       fmt.Sprintf("%s-%s", parent.Name, child),
				From:     parent.Name,
				To:       child,
				FromDoor: models.DoorRef{Position: parentPoint, Width: planner.DefaultHallwayWidth},
				ToDoor:   models.DoorRef{Position: childPoint, Width: planner.DefaultHallwayWidth},
			})
		}
	}
	return UniqueIDs(out)
}

// UniqueIDs делает идентификаторы соединений различными: имена узлов могут
// содержать дефис, поэтому "a-b"→"c" и "a"→"b-c" дают один и тот же ID.
func UniqueIDs(conns []models.Connection) []models.Connection {
	used := mapset.New[string]()
	for i := range conns {
		id := conns[i].ID
		for k := 2; used.Has(id); k++ {
			id = fmt.Sprintf("%s#%d", conns[i].ID, k)
		}
		conns[i].ID = id
		used.Put(id)
	}
	return conns
}

// childAttachPoint: начало коридора либо дверь комнаты.
func childAttachPoint(layout *models.FloorLayout, child, parent string) geometry.Point {
	if h, ok := layout.Hallway(child); ok {
		return h.Start
	}
	r, _ := layout.Room(child)
	if r.HasDoor {
		return r.DoorPosition
	}
	return BoundaryPoint(r.Position, r.RoomWidth, r.RoomHeight, nodeCenter(layout, parent))
}

// parentAttachPoint: конец коридора либо точка на стене комнаты в сторону ребёнка.
func parentAttachPoint(layout *models.FloorLayout, parent string, toward geometry.Point) geometry.Point {
	if h, ok := layout.Hallway(parent); ok {
		return h.End
	}
	r, _ := layout.Room(parent)
	return BoundaryPoint(r.Position, r.RoomWidth, r.RoomHeight, toward)
}

func nodeCenter(layout *models.FloorLayout, name string) geometry.Point {
	if h, ok := layout.Hallway(name); ok {
		return h.End
	}
	r, _ := layout.Room(name)
	return r.Position
}

// BoundaryPoint находит пересечение луча из центра прямоугольника w×h в сторону toward с его границей.
func BoundaryPoint(center geometry.Point, w, h float64, toward geometry.Point) geometry.Point {
	d := toward.Sub(center)
	if d.IsZero() {
		return center
	}
	tx, ty := math.Inf(1), math.Inf(1)
	if d.X != 0 {
		tx = (w / 2) / math.Abs(d.X)
	}
	if d.Y != 0 {
		ty = (h / 2) / math.Abs(d.Y)
	}
	return center.Add(d.Scale(math.Min(tx, ty)))
}

// ============================================================
// Connectivity check
// ============================================================

// Connected проверяет, что из первого узла достижимы все остальные.
func Connected(ids []string, conns []models.Connection) bool {
	if len(ids) < 2 {
		return true
	}

	adj := make(map[string][]string, len(ids))
	for _, c := range conns {
		adj[c.From] = append(adj[c.From], c.To)
		adj[c.To] = append(adj[c.To], c.From)
	}

	visited := mapset.New[string]()
	queue := []string{ids[0]}
	visited.Put(ids[0])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited.Has(next) {
				continue
			}
			visited.Put(next)
			queue = append(queue, next)
		}
	}

	for _, id := range ids {
		if !visited.Has(id) {
			return false
		}
	}
	return true
}
