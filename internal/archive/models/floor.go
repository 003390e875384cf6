package models

import layout "dungeon-layout/internal/layout/models"

// ============================================================
// Floor Record
// ============================================================

// FloorRecord хранит сохранённый этаж: исходный DAG и посчитанная раскладка.
type FloorRecord struct {
	ID        string              `json:"id"`
	DungeonID string              `json:"dungeonId"`
	Floor     int                 `json:"floor"`
	Nodes     []layout.Node       `json:"nodes"`
	Layout    *layout.FloorLayout `json:"layout"`
	RoomCount int                 `json:"roomCount"`
	SVGPath   string              `json:"-"`
	CreatedAt string              `json:"createdAt"`
}

type FloorSummary struct {
	ID        string `json:"id"`
	DungeonID string `json:"dungeonId"`
	Floor     int    `json:"floor"`
	RoomCount int    `json:"roomCount"`
	CreatedAt string `json:"createdAt"`
}

type SaveFloorRequest struct {
	DungeonID string        `json:"dungeonId"`
	Floor     int           `json:"floor"`
	Nodes     []layout.Node `json:"nodes"`
}
