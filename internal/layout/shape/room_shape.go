package shape

import (
	"log"
	"math/rand"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Room Shape Builder
// ============================================================

const (
	maxDoorAttempts  = 20
	doorLengthFactor = 1.5
	doorMinPosition  = 0.2
	doorMaxPosition  = 0.8
)

// Constraints задаёт диапазоны размеров комнаты и числа дверей.
type Constraints struct {
	MinWidth  float64 `json:"minWidth"`
	MaxWidth  float64 `json:"maxWidth"`
	MinHeight float64 `json:"minHeight"`
	MaxHeight float64 `json:"maxHeight"`
	MinDoors  int     `json:"minDoors"`
	MaxDoors  int     `json:"maxDoors"`
	DoorWidth float64 `json:"doorWidth"`
}

// BuildRoomShape строит прямоугольную комнату с дверями на разных рёбрах.
// Дверь, для которой за 20 попыток не нашлось свободного ребра, отбрасывается.
func BuildRoomShape(rng *rand.Rand, c Constraints) *models.RoomShape {
	width := uniform(rng, c.MinWidth, c.MaxWidth)
	height := uniform(rng, c.MinHeight, c.MaxHeight)

	s := Rectangle(width, height)

	doorCount := c.MinDoors
	if c.MaxDoors > c.MinDoors {
		doorCount += rng.Intn(c.MaxDoors - c.MinDoors + 1)
	}

	used := make(map[int]bool, len(s.Edges))
	for i := 0; i < doorCount; i++ {
		placed := false
		for attempt := 0; attempt < maxDoorAttempts; attempt++ {
			edge := rng.Intn(len(s.Edges))
			if used[edge] || s.Edges[edge].Length < c.DoorWidth*doorLengthFactor {
				continue
			}
			used[edge] = true
			s.Doors = append(s.Doors, models.Door{
				Edge:     edge,
				Position: doorMinPosition + rng.Float64()*(doorMaxPosition-doorMinPosition),
				Width:    c.DoorWidth,
			})
			placed = true
			break
		}
		if !placed {
			log.Printf("[SHAPE] door %d/%d dropped: no free edge for width %.1f", i+1, doorCount, c.DoorWidth)
		}
	}

	return s
}

// Rectangle возвращает прямоугольник w×h без дверей, вершины против часовой стрелки.
func Rectangle(width, height float64) *models.RoomShape {
	hw, hh := width/2, height/2
	vertices := []geometry.Point{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}

	edges := make([]models.Edge, len(vertices))
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		edges[i] = models.Edge{Start: a, End: b, Length: geometry.Distance(a, b)}
	}

	return &models.RoomShape{
		Width:    width,
		Height:   height,
		Vertices: vertices,
		Edges:    edges,
		Doors:    []models.Door{},
	}
}

// DoorCenter считает мировую позицию центра двери для комнаты с центром center.
func DoorCenter(s *models.RoomShape, d models.Door, center geometry.Point) geometry.Point {
	edge := s.Edges[d.Edge]
	dir := edge.End.Sub(edge.Start).Normalize()
	return center.Add(edge.Start).Add(dir.Scale(d.Position * edge.Length))
}

// DoorSpan возвращает концы проёма двери в мировых координатах.
func DoorSpan(s *models.RoomShape, d models.Door, center geometry.Point) (geometry.Point, geometry.Point) {
	edge := s.Edges[d.Edge]
	dir := edge.End.Sub(edge.Start).Normalize()
	mid := DoorCenter(s, d, center)
	half := dir.Scale(d.Width / 2)
	return mid.Sub(half), mid.Add(half)
}

// DoorRefs возвращает все двери комнаты как точки крепления.
func DoorRefs(s *models.RoomShape, center geometry.Point) []models.DoorRef {
	if s == nil {
		return nil
	}
	refs := make([]models.DoorRef, 0, len(s.Doors))
	for _, d := range s.Doors {
		refs = append(refs, models.DoorRef{Position: DoorCenter(s, d, center), Width: d.Width})
	}
	return refs
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
