package mapper

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/shape"
)

// ============================================================
// Renderer
// ============================================================

const defaultCanvas = 1000.0

// Renderer рисует отладочный SVG этажа. Мир Y-вверх, SVG Y-вниз: ось переворачивается по границам этажа.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

type frame struct {
	minX, maxY float64
}

func (f frame) point(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X - f.minX, Y: f.maxY - p.Y}
}

// Render собирает SVG из FloorLayout.
func (r *Renderer) Render(layout *models.FloorLayout) (string, error) {
	if layout == nil {
		return "", fmt.Errorf("layout is nil")
	}

	width, height := layout.Bounds.Width, layout.Bounds.Height
	f := frame{minX: layout.Bounds.MinX, maxY: layout.Bounds.MaxY}
	if width <= 0 || height <= 0 {
		width, height = defaultCanvas, defaultCanvas
		f = frame{minX: -defaultCanvas / 2, maxY: defaultCanvas / 2}
	}

	var elements []string
	elements = append(elements, r.renderSegments(layout, f)...)
	elements = append(elements, r.renderRooms(layout, f)...)
	elements = append(elements, r.renderDoors(layout, f)...)
	elements = append(elements, r.renderIntersections(layout, f)...)
	elements = append(elements, r.renderDeadEnds(layout, f)...)
	elements = append(elements, r.renderStairs(layout, f)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderRooms(layout *models.FloorLayout, f frame) []string {
	var out []string

	for _, room := range layout.Rooms {
		var points []geometry.Point
		if room.Shape != nil && len(room.Shape.Vertices) >= 3 {
			for _, v := range room.Shape.Vertices {
				points = append(points, f.point(room.Position.Add(v)))
			}
		} else {
			b := room.Bounds()
			points = []geometry.Point{
				f.point(geometry.Point{X: b.MinX, Y: b.MinY}),
				f.point(geometry.Point{X: b.MaxX, Y: b.MinY}),
				f.point(geometry.Point{X: b.MaxX, Y: b.MaxY}),
				f.point(geometry.Point{X: b.MinX, Y: b.MaxY}),
			}
		}

		var path strings.Builder
		path.WriteString(`<path id="room-`)
		path.WriteString(html.EscapeString(room.Name))
		path.WriteString(`" d="M `)
		path.WriteString(formatPoint(points[0]))
		for _, p := range points[1:] {
			path.WriteString(" L ")
			path.WriteString(formatPoint(p))
		}
		path.WriteString(` Z" fill="#f4f1ea" stroke="#333" />`)
		out = append(out, path.String())

		c := f.point(room.Position)
		out = append(out, fmt.Sprintf(`<text x="%s" y="%s" font-size="4" text-anchor="middle">%s</text>`,
			formatFloat(c.X), formatFloat(c.Y), html.EscapeString(room.Name)))
	}

	return out
}

func (r *Renderer) renderDoors(layout *models.FloorLayout, f frame) []string {
	var out []string

	for _, room := range layout.Rooms {
		if room.Shape != nil {
			for i, d := range room.Shape.Doors {
				a, b := shape.DoorSpan(room.Shape, d, room.Position)
				out = append(out, line(fmt.Sprintf("door-%s-%d", room.Name, i), f.point(a), f.point(b), 1.5, "#d62728", ""))
			}
		}
		if room.HasDoor {
			p := f.point(room.DoorPosition)
			out = append(out, fmt.Sprintf(`<circle id="door-%s" cx="%s" cy="%s" r="1.5" fill="#d62728" data-side="%s" />`,
				html.EscapeString(room.Name), formatFloat(p.X), formatFloat(p.Y), room.DoorSide))
		}
	}

	return out
}

// renderSegments: сначала тела коридоров, сверху соединения пунктиром.
func (r *Renderer) renderSegments(layout *models.FloorLayout, f frame) []string {
	var out []string

	bodies := make(map[string]bool, len(layout.Hallways))
	for _, h := range layout.Hallways {
		for _, s := range h.Segments {
			bodies[s.ID] = true
		}
	}

	for _, s := range layout.Segments {
		if bodies[s.ID] {
			out = append(out, line("hall-"+s.ID, f.point(s.Start), f.point(s.End), s.Width, "#8c7b6b", ""))
		}
	}
	for _, s := range layout.Segments {
		if !bodies[s.ID] {
			out = append(out, line(s.ID, f.point(s.Start), f.point(s.End), s.Width/2, "#1f77b4", "3 2"))
		}
	}

	return out
}

func (r *Renderer) renderIntersections(layout *models.FloorLayout, f frame) []string {
	var out []string

	for i, x := range layout.Intersections {
		p := f.point(x.Position)
		out = append(out, fmt.Sprintf(`<circle id="intersection-%d" cx="%s" cy="%s" r="%s" fill="none" stroke="#ff7f0e" />`,
			i, formatFloat(p.X), formatFloat(p.Y), formatFloat(x.Radius)))
	}

	return out
}

func (r *Renderer) renderDeadEnds(layout *models.FloorLayout, f frame) []string {
	var out []string

	for i, d := range layout.DeadEnds {
		out = append(out, line(fmt.Sprintf("deadend-%d", i), f.point(d.Base), f.point(d.Tip), 2, "#999", ""))
	}

	return out
}

func (r *Renderer) renderStairs(layout *models.FloorLayout, f frame) []string {
	var out []string

	for _, room := range layout.Rooms {
		if !room.HasStair() {
			continue
		}
		p := f.point(room.StairPoint())
		glyph := "&#9650;"
		if room.HasDownwardStair {
			glyph = "&#9660;"
		}
		out = append(out, fmt.Sprintf(`<text id="stair-%s" x="%s" y="%s" font-size="6" text-anchor="middle">%s</text>`,
			html.EscapeString(room.Name), formatFloat(p.X), formatFloat(p.Y), glyph))
	}

	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func line(id string, a, b geometry.Point, width float64, stroke, dash string) string {
	extra := ""
	if dash != "" {
		extra = fmt.Sprintf(` stroke-dasharray="%s"`, dash)
	}
	return fmt.Sprintf(`<line id="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s />`,
		html.EscapeString(id), formatFloat(a.X), formatFloat(a.Y), formatFloat(b.X), formatFloat(b.Y),
		stroke, formatFloat(width), extra)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p geometry.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
