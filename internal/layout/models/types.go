package models

import "dungeon-layout/internal/layout/geometry"

// ============================================================
// DAG input
// ============================================================

type Direction string

const (
	DirectionLeft   Direction = "left"
	DirectionRight  Direction = "right"
	DirectionCenter Direction = "center"
)

type DoorSide string

const (
	DoorSideTop    DoorSide = "top"
	DoorSideRight  DoorSide = "right"
	DoorSideBottom DoorSide = "bottom"
	DoorSideLeft   DoorSide = "left"
)

// Node описывает одну запись графа этажа от сервера (комната или коридор).
// Name одновременно является идентификатором.
type Node struct {
	Name             string    `json:"name"`
	Children         []string  `json:"children"`
	IsRoom           bool      `json:"isRoom"`
	RoomWidth        float64   `json:"roomWidth,omitempty"`
	RoomHeight       float64   `json:"roomHeight,omitempty"`
	HallwayLength    float64   `json:"hallwayLength,omitempty"`
	HasUpwardStair   bool      `json:"hasUpwardStair,omitempty"`
	HasDownwardStair bool      `json:"hasDownwardStair,omitempty"`
	StairLocationX   *float64  `json:"stairLocationX,omitempty"`
	StairLocationY   *float64  `json:"stairLocationY,omitempty"`
	ParentDirection  Direction `json:"parentDirection,omitempty"`
	ParentDoorOffset *float64  `json:"parentDoorOffset,omitempty"`
}

// ============================================================
// Room shapes
// ============================================================

type Edge struct {
	Start  geometry.Point `json:"start"`
	End    geometry.Point `json:"end"`
	Length float64        `json:"length"`
}

// Door описывает проём на ребре; Position задаёт долю длины ребра, где стоит центр двери.
type Door struct {
	Edge     int     `json:"edge"`
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
}

// RoomShape описывает прямоугольник с центром в начале координат.
type RoomShape struct {
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Vertices []geometry.Point `json:"vertices"`
	Edges    []Edge           `json:"edges"`
	Doors    []Door           `json:"doors"`
}

// ============================================================
// Resolved layout
// ============================================================

type ResolvedRoom struct {
	Node
	Position     geometry.Point `json:"position"`
	DoorPosition geometry.Point `json:"doorPosition"`
	DoorSide     DoorSide       `json:"doorSide"`
	HasDoor      bool           `json:"hasDoor"`
	Shape        *RoomShape     `json:"shape,omitempty"`
}

// Bounds возвращает габарит комнаты в мировых координатах.
func (r ResolvedRoom) Bounds() geometry.Rect {
	return geometry.RectAround(r.Position, r.RoomWidth, r.RoomHeight)
}

func (r ResolvedRoom) HasStair() bool { return r.HasUpwardStair || r.HasDownwardStair }

// StairPoint возвращает положение лестницы: координаты сетки отсчитываются от левого нижнего угла,
// без них лестница стоит в центре.
func (r ResolvedRoom) StairPoint() geometry.Point {
	if r.StairLocationX == nil || r.StairLocationY == nil {
		return r.Position
	}
	b := r.Bounds()
	return geometry.Point{
		X: geometry.Clamp(b.MinX+*r.StairLocationX, b.MinX, b.MaxX),
		Y: geometry.Clamp(b.MinY+*r.StairLocationY, b.MinY, b.MaxY),
	}
}

type ResolvedHallway struct {
	Node
	Start     geometry.Point   `json:"start"`
	End       geometry.Point   `json:"end"`
	Direction geometry.Point   `json:"direction"`
	Segments  []HallwaySegment `json:"segments"`
}

func (h ResolvedHallway) Length() float64 {
	return geometry.Distance(h.Start, h.End)
}

type HallwaySegment struct {
	ID          string         `json:"id"`
	Start       geometry.Point `json:"start"`
	End         geometry.Point `json:"end"`
	Width       float64        `json:"width"`
	Connections []string       `json:"connections"`
}

func (s HallwaySegment) Length() float64 {
	return geometry.Distance(s.Start, s.End)
}

// DoorRef указывает точку крепления соединения к узлу.
type DoorRef struct {
	Position geometry.Point `json:"position"`
	Width    float64        `json:"width"`
}

type Connection struct {
	ID       string  `json:"id"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	FromDoor DoorRef `json:"fromDoor"`
	ToDoor   DoorRef `json:"toDoor"`
	Distance float64 `json:"distance,omitempty"`
}

type Intersection struct {
	Position geometry.Point `json:"position"`
	Radius   float64        `json:"radius"`
	Segments [2]string      `json:"segments"`
}

// DeadEnd описывает декоративный тупик; в геометрию коридоров не входит.
type DeadEnd struct {
	Segment string         `json:"segment"`
	Base    geometry.Point `json:"base"`
	Tip     geometry.Point `json:"tip"`
}
