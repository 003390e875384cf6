package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"dungeon-layout/internal/archive/models"
	"dungeon-layout/internal/archive/repository"
	layout "dungeon-layout/internal/layout/models"
)

func nodes() []layout.Node {
	return []layout.Node{
		{Name: "Start", IsRoom: true, RoomWidth: 10, RoomHeight: 10, Children: []string{"Hall"}},
		{Name: "Hall", HallwayLength: 20, ParentDirection: layout.DirectionCenter, Children: []string{"End"}},
		{Name: "End", IsRoom: true, RoomWidth: 6, RoomHeight: 6, ParentDirection: layout.DirectionCenter},
	}
}

func newArchive(t *testing.T, layoutURL string) (*Archive, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := repository.OpenSQLite(filepath.Join(dir, "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	if err := repo.Init(context.Background(), "../../../migrations/001_init_archive.sql"); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(dir, "floors")
	return NewArchive(repo, NewFileStorage(root), layoutURL), root
}

// ============================================================
// Floor Tracker
// ============================================================

func TestTrackerDiscardsSupersededLoads(t *testing.T) {
	tr := NewFloorTracker()
	floor1 := &layout.FloorLayout{Root: "floor-1"}
	floor2 := &layout.FloorLayout{Root: "floor-2"}

	old := tr.Begin("player")
	fresh := tr.Begin("player")
	if !tr.Loading("player") {
		t.Fatal("load should be pending")
	}

	if tr.Commit("player", old, floor1) {
		t.Fatal("superseded load must be discarded")
	}
	if !tr.Commit("player", fresh, floor2) {
		t.Fatal("current load must be accepted")
	}
	if tr.Loading("player") {
		t.Fatal("nothing should be pending after commit")
	}

	got, ok := tr.Current("player")
	if !ok || got.Root != "floor-2" {
		t.Fatalf("current = %+v", got)
	}

	if tr.Commit("player", fresh, floor1) {
		t.Fatal("a token can be committed only once")
	}
	if tr.Commit("player", "", floor1) {
		t.Fatal("empty token must be rejected")
	}
}

func TestTrackerKeepsClientsApart(t *testing.T) {
	tr := NewFloorTracker()
	a := tr.Begin("a")
	b := tr.Begin("b")
	if !tr.Commit("a", a, &layout.FloorLayout{Root: "A"}) || !tr.Commit("b", b, &layout.FloorLayout{Root: "B"}) {
		t.Fatal("independent clients should not supersede each other")
	}
	if _, ok := tr.Current("c"); ok {
		t.Fatal("unknown client has no floor")
	}
}

func TestTrackerCancelKeepsCurrentFloor(t *testing.T) {
	tr := NewFloorTracker()
	first := tr.Begin("p")
	tr.Commit("p", first, &layout.FloorLayout{Root: "floor-1"})

	failed := tr.Begin("p")
	if !tr.Cancel("p", failed) {
		t.Fatal("current token should cancel")
	}
	if tr.Loading("p") {
		t.Fatal("cancelled load still pending")
	}
	if got, _ := tr.Current("p"); got.Root != "floor-1" {
		t.Fatalf("cancel replaced the floor: %+v", got)
	}

	old := tr.Begin("p")
	tr.Begin("p")
	if tr.Cancel("p", old) {
		t.Fatal("stale token must not cancel the newer load")
	}
	if !tr.Loading("p") {
		t.Fatal("newer load should still be pending")
	}
}

func TestTrackerConcurrentLoads(t *testing.T) {
	tr := NewFloorTracker()
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	tokens := make([]string, 20)
	for i := range tokens {
		tokens[i] = tr.Begin("p")
	}
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			if tr.Commit("p", tok, &layout.FloorLayout{}) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(tok)
	}
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("accepted %d loads, only the latest should win", accepted)
	}
}

// ============================================================
// File Storage
// ============================================================

func TestFileStoragePaths(t *testing.T) {
	s := NewFileStorage("/data")
	if got := s.SVGPath("d1", 3); got != filepath.Join("/data", "d1", "floor-3.svg") {
		t.Errorf("svg path = %s", got)
	}
	if got := s.DungeonDir("../../etc"); got != filepath.Join("/data", "etc") {
		t.Errorf("dungeon dir escapes root: %s", got)
	}
}

// ============================================================
// Archive
// ============================================================

func TestStoreRendersLocally(t *testing.T) {
	a, root := newArchive(t, "")
	ctx := context.Background()

	rec, err := a.Store(ctx, models.SaveFloorRequest{DungeonID: "d1", Floor: 1, Nodes: nodes()})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if rec.RoomCount != 2 || rec.Layout == nil || len(rec.Layout.Connections) != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}

	svg, err := os.ReadFile(filepath.Join(root, "d1", "floor-1.svg"))
	if err != nil {
		t.Fatalf("preview not written: %v", err)
	}
	if !strings.Contains(string(svg), "room-Start") {
		t.Error("preview does not show the floor")
	}

	got, err := a.FloorNodes(ctx, "d1", 1)
	if err != nil || len(got) != 3 {
		t.Fatalf("FloorNodes: %v, %d nodes", err, len(got))
	}
	if _, err := a.FloorNodes(ctx, "d1", 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing floor: %v", err)
	}
}

func TestStoreRendersRemotely(t *testing.T) {
	var gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" {
			http.NotFound(w, r)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		gotFile = string(data)
		w.Header().Set("Content-Type", "image/svg+xml")
		io.WriteString(w, "<svg>remote</svg>")
	}))
	defer srv.Close()

	a, root := newArchive(t, srv.URL)
	if _, err := a.Store(context.Background(), models.SaveFloorRequest{DungeonID: "d1", Floor: 2, Nodes: nodes()}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.Contains(gotFile, `"name":"Start"`) {
		t.Errorf("layout service did not receive the DAG: %s", gotFile)
	}
	svg, _ := os.ReadFile(filepath.Join(root, "d1", "floor-2.svg"))
	if string(svg) != "<svg>remote</svg>" {
		t.Errorf("preview = %q", svg)
	}
}

func TestStoreRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, _ := newArchive(t, srv.URL)
	if _, err := a.Store(context.Background(), models.SaveFloorRequest{DungeonID: "d1", Nodes: nodes()}); err == nil {
		t.Fatal("expected error when the layout service fails")
	}
}

func TestStoreRejectsInvalidRequests(t *testing.T) {
	a, _ := newArchive(t, "")
	ctx := context.Background()
	if _, err := a.Store(ctx, models.SaveFloorRequest{Nodes: nodes()}); !errors.Is(err, ErrInvalidFloor) {
		t.Errorf("missing dungeon: %v", err)
	}
	if _, err := a.Store(ctx, models.SaveFloorRequest{DungeonID: "d1"}); !errors.Is(err, ErrInvalidFloor) {
		t.Errorf("missing nodes: %v", err)
	}
}

func TestStoreRejectsUnsafeDungeonIDs(t *testing.T) {
	for _, id := range []string{"x/d1", "..", ".", `a\b`, "d\x001"} {
		if err := ValidateDungeonID(id); !errors.Is(err, ErrInvalidFloor) {
			t.Errorf("ValidateDungeonID(%q) = %v", id, err)
		}
	}
	if err := ValidateDungeonID("d1"); err != nil {
		t.Fatalf("d1: %v", err)
	}

	a, root := newArchive(t, "")
	if _, err := a.Store(context.Background(), models.SaveFloorRequest{DungeonID: "x/d1", Floor: 1, Nodes: nodes()}); !errors.Is(err, ErrInvalidFloor) {
		t.Fatalf("store x/d1: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "d1")); !os.IsNotExist(err) {
		t.Fatalf("rejected request touched the disk: %v", err)
	}
}

func TestStoreFailedSaveKeepsPreviousPreview(t *testing.T) {
	dir := t.TempDir()
	db, err := repository.OpenSQLite(filepath.Join(dir, "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.New(db)
	if err := repo.Init(context.Background(), "../../../migrations/001_init_archive.sql"); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(dir, "floors")
	a := NewArchive(repo, NewFileStorage(root), "")
	ctx := context.Background()

	if _, err := a.Store(ctx, models.SaveFloorRequest{DungeonID: "d1", Floor: 1, Nodes: nodes()}); err != nil {
		t.Fatalf("store: %v", err)
	}
	preview := filepath.Join(root, "d1", "floor-1.svg")
	before, err := os.ReadFile(preview)
	if err != nil {
		t.Fatal(err)
	}

	db.Close()
	if _, err := a.Store(ctx, models.SaveFloorRequest{DungeonID: "d1", Floor: 1, Nodes: nodes()}); err == nil {
		t.Fatal("store should fail on a closed database")
	}
	if _, err := a.Store(ctx, models.SaveFloorRequest{DungeonID: "d1", Floor: 2, Nodes: nodes()}); err == nil {
		t.Fatal("store should fail on a closed database")
	}

	after, err := os.ReadFile(preview)
	if err != nil || string(after) != string(before) {
		t.Fatalf("previous preview changed: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, "d1"))
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("orphaned files left behind: %v", names)
	}
}

func TestRemoveFileIgnoresMissing(t *testing.T) {
	s := NewFileStorage(t.TempDir())
	if err := s.RemoveFile(s.SVGPath("d1", 9)); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}
