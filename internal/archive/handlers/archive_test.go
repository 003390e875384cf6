package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"dungeon-layout/internal/archive/models"
	"dungeon-layout/internal/archive/repository"
	"dungeon-layout/internal/archive/service"

	"github.com/gofiber/fiber/v3"
)

const floorBody = `{"dungeonId":"d1","floor":1,"nodes":[
	{"name":"Start","isRoom":true,"roomWidth":10,"roomHeight":10,"children":["Hall"]},
	{"name":"Hall","hallwayLength":20,"parentDirection":"center","children":["End"]},
	{"name":"End","isRoom":true,"roomWidth":6,"roomHeight":6,"parentDirection":"center"}
]}`

func newApp(t *testing.T) *fiber.App {
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

	archive := service.NewArchive(repo, service.NewFileStorage(filepath.Join(dir, "floors")), "")
	app := fiber.New()
	NewArchiveHandler(archive).Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestArchiveRoundTrip(t *testing.T) {
	app := newApp(t)

	resp := do(t, app, http.MethodPost, "/floors", floorBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	var rec models.FloorRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" || rec.RoomCount != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}

	resp = do(t, app, http.MethodGet, "/floors/"+rec.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}

	resp = do(t, app, http.MethodGet, "/floors/"+rec.ID+"/svg", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("svg status = %d", resp.StatusCode)
	}
	svg, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg body missing")
	}

	resp = do(t, app, http.MethodGet, "/dungeons/d1/floors", "")
	var list []models.FloorSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Fatalf("list = %+v", list)
	}

	resp = do(t, app, http.MethodGet, "/dungeons/d1/floors/1/nodes", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("nodes status = %d", resp.StatusCode)
	}
	var payload struct {
		Floor int `json:"floor"`
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Floor != 1 || len(payload.Nodes) != 3 {
		t.Fatalf("nodes payload = %+v", payload)
	}
}

func TestArchiveErrors(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"empty body", http.MethodPost, "/floors", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/floors", "{", http.StatusBadRequest},
		{"no dungeon", http.MethodPost, "/floors", `{"floor":1,"nodes":[{"name":"A","isRoom":true}]}`, http.StatusBadRequest},
		{"unknown floor", http.MethodGet, "/floors/missing", "", http.StatusNotFound},
		{"unknown svg", http.MethodGet, "/floors/missing/svg", "", http.StatusNotFound},
		{"bad floor number", http.MethodGet, "/dungeons/d1/floors/x/nodes", "", http.StatusBadRequest},
		{"missing floor nodes", http.MethodGet, "/dungeons/d1/floors/4/nodes", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := do(t, app, tt.method, tt.path, tt.body); resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}
