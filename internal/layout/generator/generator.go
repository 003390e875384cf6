package generator

import (
	"fmt"
	"log"
	"math/rand"

	"dungeon-layout/internal/layout/connectivity"
	"dungeon-layout/internal/layout/geometry"
	"dungeon-layout/internal/layout/hallway"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/shape"
	"dungeon-layout/internal/layout/validator"
)

// ============================================================
// Random (MST) floor generation
// ============================================================

const (
	DefaultMaxAttempts = 10
	placementTries     = 100
)

// Config управляет генерацией одного этажа без данных сервера.
type Config struct {
	RoomCount             int               `json:"roomCount"`
	Width                 float64           `json:"width"`
	Height                float64           `json:"height"`
	Room                  shape.Constraints `json:"room"`
	ExtraConnectionChance float64           `json:"extraConnectionChance"`
	MaxExtraLength        float64           `json:"maxExtraLength"`
	DeadEndChance         float64           `json:"deadEndChance"`
	HallwayWidth          float64           `json:"hallwayWidth"`
	MaxAttempts           int               `json:"maxAttempts"`
	Seed                  int64             `json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		RoomCount: 8,
		Width:     300,
		Height:    300,
		Room: shape.Constraints{
			MinWidth: 12, MaxWidth: 30,
			MinHeight: 12, MaxHeight: 30,
			MinDoors: 1, MaxDoors: 4,
			DoorWidth: 3,
		},
		ExtraConnectionChance: 0.15,
		MaxExtraLength:        120,
		DeadEndChance:         0.2,
		HallwayWidth:          hallway.DefaultWidth,
		MaxAttempts:           DefaultMaxAttempts,
	}
}

type Result struct {
	Layout     *models.FloorLayout `json:"layout"`
	Validation validator.Result    `json:"validation"`
	Attempts   int                 `json:"attempts"`
}

// Generate перегенерирует этаж, пока он не пройдёт проверку, но не больше MaxAttempts раз.
// Если все попытки неудачны, возвращается последняя с предупреждением в логе.
func Generate(cfg Config) *Result {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var res *Result
	for i := 1; i <= attempts; i++ {
		layout := generateOnce(rng, cfg)
		res = &Result{Layout: layout, Validation: validator.Validate(layout), Attempts: i}
		if res.Validation.Valid {
			return res
		}
	}

	log.Printf("[GENERATOR] warning: no valid layout after %d attempts (seed=%d): %v",
		attempts, cfg.Seed, res.Validation.Issues)
	return res
}

func generateOnce(rng *rand.Rand, cfg Config) *models.FloorLayout {
	layout := &models.FloorLayout{}

	rooms := placeRooms(rng, cfg)
	for _, r := range rooms {
		layout.AddRoom(r)
	}
	if len(rooms) > 0 {
		layout.Root = rooms[0].Name
	}

	tree := connectivity.SpanningTree(rooms)
	conns := connectivity.AddLoops(rng, rooms, tree, connectivity.LoopOptions{
		Chance:    cfg.ExtraConnectionChance,
		MaxLength: cfg.MaxExtraLength,
	})

	network := hallway.Build(conns, hallway.Options{
		Width:         cfg.HallwayWidth,
		DeadEndChance: cfg.DeadEndChance,
		Rand:          rng,
	})

	layout.Connections = conns
	layout.Segments = network.Segments
	layout.Intersections = network.Intersections
	layout.DeadEnds = network.DeadEnds
	layout.Bounds = models.NewBounds(geometry.Rect{MaxX: cfg.Width, MaxY: cfg.Height}, 0)
	return layout
}

// placeRooms делает выборку с отклонением: кандидат принимается, если он в границах
// и достаточно далеко от уже размещённых комнат.
func placeRooms(rng *rand.Rand, cfg Config) []models.ResolvedRoom {
	bounds := geometry.Rect{MaxX: cfg.Width, MaxY: cfg.Height}
	rooms := make([]models.ResolvedRoom, 0, cfg.RoomCount)

	for i := 0; i < cfg.RoomCount; i++ {
		s := shape.BuildRoomShape(rng, cfg.Room)
		room := models.ResolvedRoom{
			Node: models.Node{
				Name:       fmt.Sprintf("room-%d", i+1),
				IsRoom:     true,
				RoomWidth:  s.Width,
				RoomHeight: s.Height,
			},
			Shape: s,
		}

		for try := 0; try < placementTries; try++ {
			room.Position = geometry.Point{X: rng.Float64() * cfg.Width, Y: rng.Float64() * cfg.Height}
			if fits(room, rooms, bounds) {
				break
			}
		}
		rooms = append(rooms, room)
	}

	markStairs(rooms)
	return rooms
}

func fits(room models.ResolvedRoom, placed []models.ResolvedRoom, bounds geometry.Rect) bool {
	if !validator.Contained(room, bounds) {
		return false
	}
	for _, other := range placed {
		if !validator.Separated(room, other) {
			return false
		}
	}
	return true
}

// markStairs: подъём в первой комнате, спуск в последней.
func markStairs(rooms []models.ResolvedRoom) {
	if len(rooms) == 0 {
		return
	}
	rooms[0].HasUpwardStair = true
	rooms[len(rooms)-1].HasDownwardStair = true
}
