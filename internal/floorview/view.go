package floorview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Terminal floor view
// ============================================================

// cellAspect: терминальная ячейка примерно вдвое выше, чем шире.
const cellAspect = 2.0

var (
	styleRoom     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHall     = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleLink     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleDoor     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStair    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCrossing = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

// View рисует FloorLayout на tcell-экране, вписывая габарит этажа в окно.
// Нижняя строка отдана под статус.
type View struct {
	screen tcell.Screen
	layout *models.FloorLayout
	floor  int
	status string

	panX, panY int
}

func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// SetFloor заменяет показываемый этаж целиком и сбрасывает сдвиг.
func (v *View) SetFloor(floor int, layout *models.FloorLayout) {
	v.floor = floor
	v.layout = layout
	v.panX, v.panY = 0, 0
}

func (v *View) Floor() int { return v.floor }

func (v *View) SetStatus(s string) { v.status = s }

func (v *View) Pan(dx, dy int) {
	v.panX += dx
	v.panY += dy
}

// ============================================================
// Projection
// ============================================================

func (v *View) viewport() (int, int) {
	w, h := v.screen.Size()
	return w, h - 1
}

func (v *View) scale() float64 {
	w, h := v.viewport()
	b := v.layout.Bounds
	if b.Width <= 0 || b.Height <= 0 || w <= 1 || h <= 1 {
		return 1
	}
	return math.Min(float64(w-1)/(b.Width*cellAspect), float64(h-1)/b.Height)
}

// WorldToScreen переводит мировую точку (Y вверх) в ячейку экрана (Y вниз).
func (v *View) WorldToScreen(p geometry.Point) (int, int, bool) {
	if v.layout == nil {
		return 0, 0, false
	}
	k := v.scale()
	b := v.layout.Bounds
	x := int(math.Round((p.X-b.MinX)*k*cellAspect)) + v.panX
	y := int(math.Round((b.MaxY-p.Y)*k)) + v.panY

	w, h := v.viewport()
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}

// ============================================================
// Drawing
// ============================================================

func (v *View) Draw() {
	v.screen.Clear()
	if v.layout != nil {
		v.drawSegments()
		v.drawRooms()
		v.drawIntersections()
		v.drawDeadEnds()
	}
	v.drawStatus()
	v.screen.Show()
}

func (v *View) drawSegments() {
	bodies := make(map[string]bool, len(v.layout.Hallways))
	for _, h := range v.layout.Hallways {
		for _, s := range h.Segments {
			bodies[s.ID] = true
		}
	}
	for _, s := range v.layout.Segments {
		ch, style := '·', styleLink
		if bodies[s.ID] {
			ch, style = '#', styleHall
		}
		v.line(s.Start, s.End, ch, style)
	}
}

func (v *View) drawRooms() {
	for _, r := range v.layout.Rooms {
		b := r.Bounds()
		x0, y0, _ := v.WorldToScreen(geometry.Point{X: b.MinX, Y: b.MaxY})
		x1, y1, _ := v.WorldToScreen(geometry.Point{X: b.MaxX, Y: b.MinY})
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}
		v.box(x0, y0, x1, y1)

		if r.HasDoor {
			v.plot(r.DoorPosition, '+', styleDoor)
		}
		if r.HasStair() {
			ch := '<'
			if r.HasDownwardStair {
				ch = '>'
			}
			v.plot(r.StairPoint(), ch, styleStair)
		}

		if inner := x1 - x0 - 1; inner > 0 && y1-y0 > 1 {
			label := runewidth.Truncate(r.Name, inner, "…")
			lx := x0 + 1 + (inner-runewidth.StringWidth(label))/2
			v.text(lx, y0+1, label, styleLabel)
		}
	}
}

func (v *View) drawIntersections() {
	for _, x := range v.layout.Intersections {
		v.plot(x.Position, '*', styleCrossing)
	}
}

func (v *View) drawDeadEnds() {
	for _, d := range v.layout.DeadEnds {
		v.line(d.Base, d.Tip, '.', styleHall)
	}
}

func (v *View) drawStatus() {
	w, h := v.screen.Size()
	rooms := 0
	if v.layout != nil {
		rooms = len(v.layout.Rooms)
	}
	line := fmt.Sprintf(" floor %d | rooms %d | %s", v.floor, rooms, v.status)
	line = runewidth.FillRight(runewidth.Truncate(line, w, "…"), w)
	v.text(0, h-1, line, styleStatus)
}

// ============================================================
// Primitives
// ============================================================

func (v *View) plot(p geometry.Point, ch rune, style tcell.Style) {
	if x, y, ok := v.WorldToScreen(p); ok {
		v.screen.SetContent(x, y, ch, nil, style)
	}
}

// line рисует Брезенхемом отрезок между проекциями двух мировых точек.
func (v *View) line(a, b geometry.Point, ch rune, style tcell.Style) {
	x0, y0, _ := v.WorldToScreen(a)
	x1, y1, _ := v.WorldToScreen(b)
	w, h := v.viewport()

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h {
			v.screen.SetContent(x0, y0, ch, nil, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (v *View) box(x0, y0, x1, y1 int) {
	for x := x0 + 1; x < x1; x++ {
		v.set(x, y0, tcell.RuneHLine, styleRoom)
		v.set(x, y1, tcell.RuneHLine, styleRoom)
	}
	for y := y0 + 1; y < y1; y++ {
		v.set(x0, y, tcell.RuneVLine, styleRoom)
		v.set(x1, y, tcell.RuneVLine, styleRoom)
	}
	v.set(x0, y0, tcell.RuneULCorner, styleRoom)
	v.set(x1, y0, tcell.RuneURCorner, styleRoom)
	v.set(x0, y1, tcell.RuneLLCorner, styleRoom)
	v.set(x1, y1, tcell.RuneLRCorner, styleRoom)
}

func (v *View) set(x, y int, ch rune, style tcell.Style) {
	w, h := v.viewport()
	if x >= 0 && x < w && y >= 0 && y < h {
		v.screen.SetContent(x, y, ch, nil, style)
	}
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	col := x
	for _, ch := range s {
		v.screen.SetContent(col, y, ch, nil, style)
		col += runewidth.RuneWidth(ch)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
