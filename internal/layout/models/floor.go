package models

import "dungeon-layout/internal/layout/geometry"

// ============================================================
// Floor layout
// ============================================================

type Bounds struct {
	geometry.Rect
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// NewBounds расширяет габарит на padding и фиксирует ширину/высоту.
func NewBounds(r geometry.Rect, padding float64) Bounds {
	if r.IsEmpty() {
		r = geometry.Rect{}
	}
	r = r.Inflate(padding)
	return Bounds{Rect: r, Width: r.Width(), Height: r.Height(), Padding: padding}
}

// FloorLayout хранит результат одного расчёта этажа. После сборки не изменяется.
type FloorLayout struct {
	Root          string            `json:"root"`
	Rooms         []ResolvedRoom    `json:"rooms"`
	Hallways      []ResolvedHallway `json:"hallways"`
	Connections   []Connection      `json:"connections"`
	Segments      []HallwaySegment  `json:"segments"`
	Intersections []Intersection    `json:"intersections"`
	DeadEnds      []DeadEnd         `json:"deadEnds"`
	Bounds        Bounds            `json:"bounds"`

	rooms    map[string]int
	hallways map[string]int
}

// AddRoom добавляет комнату; повторное имя игнорируется.
func (f *FloorLayout) AddRoom(r ResolvedRoom) bool {
	if f.Has(r.Name) {
		return false
	}
	if f.rooms == nil {
		f.rooms = make(map[string]int)
	}
	f.rooms[r.Name] = len(f.Rooms)
	f.Rooms = append(f.Rooms, r)
	return true
}

// AddHallway добавляет коридор; повторное имя игнорируется.
func (f *FloorLayout) AddHallway(h ResolvedHallway) bool {
	if f.Has(h.Name) {
		return false
	}
	if f.hallways == nil {
		f.hallways = make(map[string]int)
	}
	f.hallways[h.Name] = len(f.Hallways)
	f.Hallways = append(f.Hallways, h)
	return true
}

func (f *FloorLayout) Room(name string) (ResolvedRoom, bool) {
	idx, ok := f.rooms[name]
	if !ok {
		return ResolvedRoom{}, false
	}
	return f.Rooms[idx], true
}

func (f *FloorLayout) Hallway(name string) (ResolvedHallway, bool) {
	idx, ok := f.hallways[name]
	if !ok {
		return ResolvedHallway{}, false
	}
	return f.Hallways[idx], true
}

func (f *FloorLayout) Has(name string) bool {
	if _, ok := f.rooms[name]; ok {
		return true
	}
	_, ok := f.hallways[name]
	return ok
}

// Reindex восстанавливает индекс имён после декодирования из JSON.
func (f *FloorLayout) Reindex() {
	f.rooms = make(map[string]int, len(f.Rooms))
	for i, r := range f.Rooms {
		f.rooms[r.Name] = i
	}
	f.hallways = make(map[string]int, len(f.Hallways))
	for i, h := range f.Hallways {
		f.hallways[h.Name] = i
	}
}

// ComputeBounds считает габарит всех комнат, коридоров и тупиков плюс padding.
func (f *FloorLayout) ComputeBounds(padding float64) Bounds {
	r := geometry.EmptyRect()
	for _, room := range f.Rooms {
		r = r.Union(room.Bounds())
	}
	for _, h := range f.Hallways {
		r = r.Extend(h.Start).Extend(h.End)
	}
	for _, s := range f.Segments {
		r = r.Extend(s.Start).Extend(s.End)
	}
	for _, d := range f.DeadEnds {
		r = r.Extend(d.Tip)
	}
	return NewBounds(r, padding)
}
