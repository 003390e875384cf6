package geometry

import "math"

// ============================================================
// Geometry primitives
// ============================================================

// parallelEpsilon: порог определителя, ниже которого отрезки считаются параллельными.
const parallelEpsilon = 1e-4

// Point описывает точку мировой плоскости, она же 2D-вектор.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

func (p Point) Dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }

// Cross возвращает z-компоненту векторного произведения.
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }

func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Normalize возвращает единичный вектор; нулевой вектор остаётся нулевым.
func (p Point) Normalize() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// RotateLeft поворачивает на +90°: (x,y) → (-y,x).
func (p Point) RotateLeft() Point { return Point{X: -p.Y, Y: p.X} }

// RotateRight поворачивает на −90°: (x,y) → (y,-x).
func (p Point) RotateRight() Point { return Point{X: p.Y, Y: -p.X} }

func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Distance считает евклидово расстояние между двумя точками.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp возвращает точку a + (b-a)*t.
func Lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// FromAngle возвращает единичный вектор под углом rad.
func FromAngle(rad float64) Point {
	return Point{X: math.Cos(rad), Y: math.Sin(rad)}
}

// ============================================================
// Segments
// ============================================================

// LineIntersection ищет точку пересечения отрезков AB и CD.
// Результат не зависит от порядка отрезков.
func LineIntersection(a, b, c, d Point) (Point, bool) {
	if segmentLess(c, d, a, b) {
		a, b, c, d = c, d, a, b
	}

	r := b.Sub(a)
	s := d.Sub(c)
	det := r.Cross(s)
	if math.Abs(det) < parallelEpsilon {
		return Point{}, false
	}

	ac := c.Sub(a)
	t := ac.Cross(s) / det
	u := ac.Cross(r) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}

	return Lerp(a, b, t), true
}

func segmentLess(a, b, c, d Point) bool {
	for _, pair := range [4][2]float64{{a.X, c.X}, {a.Y, c.Y}, {b.X, d.X}, {b.Y, d.Y}} {
		if pair[0] != pair[1] {
			return pair[0] < pair[1]
		}
	}
	return false
}

// PointToSegment возвращает расстояние от p до отрезка AB и параметр проекции t ∈ [0,1].
func PointToSegment(p, a, b Point) (float64, float64) {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return Distance(p, a), 0
	}

	t := p.Sub(a).Dot(ab) / lenSq
	t = clamp(t, 0, 1)

	return Distance(p, Lerp(a, b, t)), t
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Clamp ограничивает v диапазоном [min, max].
func Clamp(v, min, max float64) float64 { return clamp(v, min, max) }
