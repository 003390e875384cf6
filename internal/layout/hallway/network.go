package hallway

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Hallway Network Builder
// ============================================================

const (
	DefaultWidth = 4.0

	deadEndMinT      = 0.3
	deadEndMaxT      = 0.7
	deadEndMinLength = 5.0
	deadEndMaxLength = 15.0
)

type Options struct {
	Width         float64    // ширина сегментов; 0 значит DefaultWidth
	DeadEndChance float64    // вероятность тупика на сегмент; 0 без тупиков
	Rand          *rand.Rand // нужен только при DeadEndChance > 0
}

type Network struct {
	Segments      []models.HallwaySegment `json:"segments"`
	Intersections []models.Intersection   `json:"intersections"`
	DeadEnds      []models.DeadEnd        `json:"deadEnds"`
}

// Build превращает каждое соединение в один прямой сегмент, ищет пересечения
// и при необходимости добавляет декоративные тупики.
func Build(conns []models.Connection, opts Options) *Network {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	segments := make([]models.HallwaySegment, 0, len(conns))
	for _, c := range conns {
		segments = append(segments, models.HallwaySegment{
			ID:          "seg-" + c.ID,
			Start:       c.FromDoor.Position,
			End:         c.ToDoor.Position,
			Width:       width,
			Connections: []string{c.ID, c.From, c.To},
		})
	}

	segments = UniqueIDs(segments)

	n := &Network{
		Segments:      segments,
		Intersections: DetectIntersections(segments),
		DeadEnds:      []models.DeadEnd{},
	}
	if opts.DeadEndChance > 0 && opts.Rand != nil {
		n.DeadEnds = deadEnds(opts.Rand, segments, opts.DeadEndChance)
	}
	return n
}

// UniqueIDs делает идентификаторы сегментов различными: повтор получает суффикс #2, #3...
func UniqueIDs(segments []models.HallwaySegment) []models.HallwaySegment {
	used := mapset.New[string]()
	for i := range segments {
		id := segments[i].ID
		for k := 2; used.Has(id); k++ {
			id = fmt.Sprintf("%s#%d", segments[i].ID, k)
		}
		segments[i].ID = id
		used.Put(id)
	}
	return segments
}

// DetectIntersections проверяет все неупорядоченные пары сегментов.
// Стык, где сходятся концы обоих сегментов, пересечением не считается.
func DetectIntersections(segments []models.HallwaySegment) []models.Intersection {
	out := []models.Intersection{}
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			a, b := segments[i], segments[j]
			p, ok := geometry.LineIntersection(a.Start, a.End, b.Start, b.End)
			if !ok || (isEndpoint(p, a) && isEndpoint(p, b)) {
				continue
			}
			out = append(out, models.Intersection{
				Position: p,
				Radius:   math.Max(a.Width, b.Width) / 2,
				Segments: [2]string{a.ID, b.ID},
			})
		}
	}
	return out
}

func isEndpoint(p geometry.Point, s models.HallwaySegment) bool {
	return geometry.Distance(p, s.Start) < 1e-6 || geometry.Distance(p, s.End) < 1e-6
}

func deadEnds(rng *rand.Rand, segments []models.HallwaySegment, chance float64) []models.DeadEnd {
	out := []models.DeadEnd{}
	for _, s := range segments {
		if rng.Float64() >= chance {
			continue
		}
		dir := s.End.Sub(s.Start).Normalize()
		if dir.IsZero() {
			continue
		}

		t := deadEndMinT + rng.Float64()*(deadEndMaxT-deadEndMinT)
		length := deadEndMinLength + rng.Float64()*(deadEndMaxLength-deadEndMinLength)
		perp := dir.RotateLeft()
		if rng.Intn(2) == 0 {
			perp = dir.RotateRight()
		}

		base := geometry.Lerp(s.Start, s.End, t)
		out = append(out, models.DeadEnd{
			Segment: s.ID,
			Base:    base,
			Tip:     base.Add(perp.Scale(length)),
		})
	}
	return out
}

// ============================================================
// Splitting at intersections
// ============================================================

// Pieces режет сегменты в точках пересечения: рендеру нужны куски между развилками.
func (n *Network) Pieces() []models.HallwaySegment {
	splits := make(map[string][]float64, len(n.Segments))
	byID := make(map[string]models.HallwaySegment, len(n.Segments))
	for _, s := range n.Segments {
		byID[s.ID] = s
		splits[s.ID] = []float64{0, 1}
	}
	for _, x := range n.Intersections {
		for _, id := range x.Segments {
			s, ok := byID[id]
			if !ok {
				continue
			}
			_, t := geometry.PointToSegment(x.Position, s.Start, s.End)
			splits[id] = append(splits[id], t)
		}
	}

	var out []models.HallwaySegment
	for _, s := range n.Segments {
		points := splits[s.ID]
		sort.Float64s(points)
		points = uniquePoints(points)

		parts := len(points) - 1
		counter := 0
		for i := 0; i < parts; i++ {
			a := geometry.Lerp(s.Start, s.End, points[i])
			b := geometry.Lerp(s.Start, s.End, points[i+1])
			if geometry.Distance(a, b) < 1e-6 {
				continue
			}
			counter++
			id := s.ID
			if parts > 1 {
				id = fmt.Sprintf("%s_%d", s.ID, counter)
			}
			out = append(out, models.HallwaySegment{
				ID:          id,
				Start:       a,
				End:         b,
				Width:       s.Width,
				Connections: s.Connections,
			})
		}
	}
	return out
}

func uniquePoints(points []float64) []float64 {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if !almostEqual(points[i], points[i-1]) {
			out = append(out, points[i])
		}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
