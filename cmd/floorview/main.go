// floorview shows dungeon floors in the terminal. Floors come either from the
// archive's WebSocket feed or from the offline generator.
//
// Usage:
//
//	floorview [--feed ws://localhost:3003/feed --dungeon d1] [--floor 1] [--seed 42]
package main

import (
	"context"
	"flag"
	"log"

	"github.com/gdamore/tcell/v2"

	"dungeon-layout/internal/archive/service"
	"dungeon-layout/internal/floorview"
	"dungeon-layout/internal/layout/feed"
	"dungeon-layout/internal/layout/generator"
)

func main() {
	feedURL := flag.String("feed", "", "WebSocket feed URL; empty means offline generation")
	dungeonID := flag.String("dungeon", "", "Dungeon id requested from the feed")
	floor := flag.Int("floor", 1, "Floor to open first")
	seed := flag.Int64("seed", 1, "Generator seed for offline mode")
	rooms := flag.Int("rooms", 8, "Rooms per generated floor")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader, closeLoader := buildLoader(ctx, *feedURL, *dungeonID, *seed, *rooms)
	defer closeLoader()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()

	view := floorview.NewView(screen)
	session := floorview.NewSession(view, loader, service.NewFloorTracker(), "local")
	session.Load(ctx, *floor)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	view.Draw()
	for {
		select {
		case res := <-session.Results():
			session.Apply(res)
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if session.Handle(ctx, floorview.KeyAction(ev)) {
					return
				}
			}
		}
		view.Draw()
	}
}

func buildLoader(ctx context.Context, feedURL, dungeonID string, seed int64, rooms int) (floorview.FloorLoader, func()) {
	if feedURL == "" {
		cfg := generator.DefaultConfig()
		cfg.Seed = seed
		cfg.RoomCount = rooms
		return floorview.NewRandomLoader(cfg), func() {}
	}

	if dungeonID == "" {
		log.Fatal("--dungeon is required with --feed")
	}
	client, err := feed.Dial(ctx, feedURL)
	if err != nil {
		log.Fatalf("connect feed: %v", err)
	}
	return floorview.NewFeedLoader(client, dungeonID), func() { client.Close() }
}
