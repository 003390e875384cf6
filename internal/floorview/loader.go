package floorview

import (
	"context"
	"fmt"
	"sync"

	"dungeon-layout/internal/layout/feed"
	"dungeon-layout/internal/layout/generator"
	"dungeon-layout/internal/layout/mapper"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Floor loaders
// ============================================================

// FloorLoader получает готовую раскладку этажа.
type FloorLoader interface {
	LoadFloor(ctx context.Context, floor int) (*models.FloorLayout, error)
}

// FeedLoader тянет DAG этажа по WebSocket-фиду и раскладывает его локально.
type FeedLoader struct {
	client    *feed.Client
	dungeonID string
	converter *mapper.Converter
}

func NewFeedLoader(client *feed.Client, dungeonID string) *FeedLoader {
	return &FeedLoader{client: client, dungeonID: dungeonID, converter: mapper.New()}
}

func (l *FeedLoader) LoadFloor(ctx context.Context, floor int) (*models.FloorLayout, error) {
	nodes, err := l.client.FetchFloor(ctx, l.dungeonID, floor)
	if err != nil {
		return nil, fmt.Errorf("fetch floor %d: %w", floor, err)
	}
	return l.converter.Convert(nodes), nil
}

// RandomLoader строит этажи генератором; сид этажа = базовый сид + номер этажа.
// Загрузки идут в фоне, поэтому конфиг читается и меняется под мьютексом.
type RandomLoader struct {
	mu  sync.Mutex
	cfg generator.Config
}

func NewRandomLoader(cfg generator.Config) *RandomLoader {
	return &RandomLoader{cfg: cfg}
}

func (l *RandomLoader) LoadFloor(_ context.Context, floor int) (*models.FloorLayout, error) {
	l.mu.Lock()
	cfg := l.cfg
	l.mu.Unlock()

	cfg.Seed += int64(floor)
	return generator.Generate(cfg).Layout, nil
}

// Reseed сдвигает базовый сид, чтобы следующая загрузка дала новый этаж.
func (l *RandomLoader) Reseed(delta int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Seed += delta
}
