package mapper

import (
	"fmt"
	"io"
	"log"

	"dungeon-layout/internal/layout/connectivity"
	"dungeon-layout/internal/layout/hallway"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/parser"
	"dungeon-layout/internal/layout/planner"
)

// ============================================================
// Converter
// ============================================================

// Converter собирает полный FloorLayout из DAG этажа: планировщик → связи иерархии → сеть коридоров.
type Converter struct {
	hallwayWidth float64
}

func New() *Converter {
	return &Converter{hallwayWidth: planner.DefaultHallwayWidth}
}

// ConvertReader: JSON графа → FloorLayout.
func (c *Converter) ConvertReader(r io.Reader) (*models.FloorLayout, error) {
	nodes, err := parser.ParseDAG(r)
	if err != nil {
		return nil, fmt.Errorf("parse dag: %w", err)
	}
	return c.Convert(nodes), nil
}

func (c *Converter) Convert(nodes []models.Node) *models.FloorLayout {
	layout := planner.ComputeLayout(nodes)

	conns := connectivity.FromHierarchy(layout, nodes)
	network := hallway.Build(conns, hallway.Options{Width: c.hallwayWidth})

	// Тела коридоров плюс ненулевые перемычки между узлами.
	var segments []models.HallwaySegment
	for _, h := range layout.Hallways {
		segments = append(segments, h.Segments...)
	}
	for _, s := range network.Segments {
		if s.Length() < 1e-9 {
			continue
		}
		segments = append(segments, s)
	}
	if segments == nil {
		segments = []models.HallwaySegment{}
	}

	layout.Connections = conns
	layout.Segments = hallway.UniqueIDs(segments)
	layout.Intersections = hallway.DetectIntersections(layout.Segments)
	layout.Bounds = layout.ComputeBounds(planner.Padding)

	log.Printf("[LAYOUT] root=%s rooms=%d hallways=%d connections=%d intersections=%d",
		layout.Root, len(layout.Rooms), len(layout.Hallways), len(conns), len(layout.Intersections))
	return layout
}
