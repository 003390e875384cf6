package validator

import (
	"fmt"
	"math"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

const (
	MinRooms         = 2
	SeparationFactor = 1.2
	BoundsMargin     = 5.0
)

type Result struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Validate проверяет число комнат, попарное расстояние между ними и попадание в габарит этажа.
func Validate(layout *models.FloorLayout) Result {
	res := Result{Valid: true, Issues: []string{}}
	if layout == nil {
		res.fail("layout is empty")
		return res
	}

	rooms := layout.Rooms
	if len(rooms) < MinRooms {
		res.fail(fmt.Sprintf("too few rooms: %d, need at least %d", len(rooms), MinRooms))
	}

	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			if !Separated(rooms[i], rooms[j]) {
				res.fail(fmt.Sprintf("rooms %s and %s are too close: %.2f < %.2f",
					rooms[i].Name, rooms[j].Name,
					geometry.Distance(rooms[i].Position, rooms[j].Position),
					MinDistance(rooms[i], rooms[j])))
			}
		}
	}

	for _, r := range rooms {
		if !Contained(r, layout.Bounds.Rect) {
			res.fail(fmt.Sprintf("room %s extends outside floor bounds", r.Name))
		}
	}

	return res
}

func (r *Result) fail(issue string) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// Radius возвращает половину диагонали габарита комнаты.
func Radius(r models.ResolvedRoom) float64 {
	return math.Hypot(r.RoomWidth, r.RoomHeight) / 2
}

func MinDistance(a, b models.ResolvedRoom) float64 {
	return SeparationFactor * (Radius(a) + Radius(b))
}

func Separated(a, b models.ResolvedRoom) bool {
	return geometry.Distance(a.Position, b.Position) >= MinDistance(a, b)
}

// Contained: квадрат со стороной 2(radius+margin) вокруг центра лежит внутри bounds.
func Contained(r models.ResolvedRoom, bounds geometry.Rect) bool {
	reach := Radius(r) + BoundsMargin
	return r.Position.X-reach >= bounds.MinX &&
		r.Position.X+reach <= bounds.MaxX &&
		r.Position.Y-reach >= bounds.MinY &&
		r.Position.Y+reach <= bounds.MaxY
}
