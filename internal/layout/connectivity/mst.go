package connectivity

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/shape"
)

// ============================================================
// Spanning tree (Kruskal)
// ============================================================

type candidate struct {
	a, b int
	dist float64
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) findRoot(x int) int {
	if u.parent[x] != x {
		u.parent[x] = u.findRoot(u.parent[x])
	}
	return u.parent[x]
}

// union объединяет множества; false, если они уже совпадают.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.findRoot(a), u.findRoot(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}

// SpanningTree выбирает ровно N−1 соединений минимальной суммарной длины между центрами комнат.
// Конкретные двери на каждой стороне выбираются парой с минимальным расстоянием дверь-дверь.
func SpanningTree(rooms []models.ResolvedRoom) []models.Connection {
	n := len(rooms)
	out := make([]models.Connection, 0, max(n-1, 0))
	if n < 2 {
		return out
	}

	edges := make([]candidate, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, candidate{a: i, b: j, dist: geometry.Distance(rooms[i].Position, rooms[j].Position)})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].dist < edges[j].dist })

	uf := newUnionFind(n)
	for _, e := range edges {
		if !uf.union(e.a, e.b) {
			continue
		}
		out = append(out, Connect(rooms[e.a], rooms[e.b], e.dist))
		if len(out) == n-1 {
			break
		}
	}
	return UniqueIDs(out)
}

// ============================================================
// Extra loops
// ============================================================

type LoopOptions struct {
	Chance    float64 // вероятность добавить ребро вне дерева
	MaxLength float64 // длиннее не добавляем; 0 без ограничения
}

// AddLoops дополняет дерево случайными рёбрами для циклов, не повторяя существующие пары.
func AddLoops(rng *rand.Rand, rooms []models.ResolvedRoom, tree []models.Connection, opts LoopOptions) []models.Connection {
	out := append([]models.Connection{}, tree...)
	if opts.Chance <= 0 || len(rooms) < 3 {
		return out
	}

	pairs := mapset.New[string]()
	for _, c := range tree {
		pairs.Put(pairKey(c.From, c.To))
		pairs.Put(pairKey(c.To, c.From))
	}

	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = math.Inf(1)
	}

	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			a, b := rooms[i], rooms[j]
			if pairs.Has(pairKey(a.Name, b.Name)) || pairs.Has(pairKey(b.Name, a.Name)) {
				continue
			}
			dist := geometry.Distance(a.Position, b.Position)
			if dist > maxLength {
				continue
			}
			if rng.Float64() >= opts.Chance {
				continue
			}
			out = append(out, Connect(a, b, dist))
			pairs.Put(pairKey(a.Name, b.Name))
			pairs.Put(pairKey(b.Name, a.Name))
		}
	}
	return UniqueIDs(out)
}

func pairKey(a, b string) string { return a + "\x00" + b }

// ============================================================
// Door selection
// ============================================================

// Connect строит соединение между двумя комнатами по ближайшей паре дверей.
func Connect(a, b models.ResolvedRoom, dist float64) models.Connection {
	from, to := BestDoorPair(a, b)
	return models.Connection{
		ID:       fmt.Sprintf("%s-%s", a.Name, b.Name),
		From:     a.Name,
		To:       b.Name,
		FromDoor: from,
		ToDoor:   to,
		Distance: dist,
	}
}

// BestDoorPair перебирает все пары дверей и возвращает пару с минимальным расстоянием.
func BestDoorPair(a, b models.ResolvedRoom) (models.DoorRef, models.DoorRef) {
	da, db := doorsOf(a), doorsOf(b)

	best := math.Inf(1)
	var from, to models.DoorRef
	for _, x := range da {
		for _, y := range db {
			if d := geometry.Distance(x.Position, y.Position); d < best {
				best = d
				from, to = x, y
			}
		}
	}
	return from, to
}

// doorsOf: двери формы, иначе дверь из иерархии, иначе центр комнаты.
func doorsOf(r models.ResolvedRoom) []models.DoorRef {
	if refs := shape.DoorRefs(r.Shape, r.Position); len(refs) > 0 {
		return refs
	}
	if r.HasDoor {
		return []models.DoorRef{{Position: r.DoorPosition}}
	}
	return []models.DoorRef{{Position: r.Position}}
}
