package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dungeon-layout/internal/archive/models"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("floor not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграцию схемы.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Save записывает этаж. Этаж с тем же (dungeon, floor) заменяется целиком.
func (r *Repository) Save(ctx context.Context, rec *models.FloorRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	nodes, err := json.Marshal(rec.Nodes)
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	layout, err := json.Marshal(rec.Layout)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO floors (id, dungeon_id, floor, nodes, layout, room_count, svg_path, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (dungeon_id, floor) DO UPDATE SET
            id = excluded.id,
            nodes = excluded.nodes,
            layout = excluded.layout,
            room_count = excluded.room_count,
            svg_path = excluded.svg_path,
            created_at = excluded.created_at
    `, rec.ID, rec.DungeonID, rec.Floor, string(nodes), string(layout), rec.RoomCount, rec.SVGPath, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("save floor %s/%d: %w", rec.DungeonID, rec.Floor, err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.FloorRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, dungeon_id, floor, nodes, layout, room_count, svg_path, created_at
        FROM floors
        WHERE id = ?
    `, id)
	return scanFloor(row)
}

func (r *Repository) GetByFloor(ctx context.Context, dungeonID string, floor int) (*models.FloorRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, dungeon_id, floor, nodes, layout, room_count, svg_path, created_at
        FROM floors
        WHERE dungeon_id = ? AND floor = ?
    `, dungeonID, floor)
	return scanFloor(row)
}

// ListByDungeon возвращает этажи подземелья по возрастанию номера.
func (r *Repository) ListByDungeon(ctx context.Context, dungeonID string) ([]models.FloorSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, dungeon_id, floor, room_count, created_at
        FROM floors
        WHERE dungeon_id = ?
        ORDER BY floor
    `, dungeonID)
	if err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	defer rows.Close()

	out := []models.FloorSummary{}
	for rows.Next() {
		var s models.FloorSummary
		if err := rows.Scan(&s.ID, &s.DungeonID, &s.Floor, &s.RoomCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan floor: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanFloor(row *sql.Row) (*models.FloorRecord, error) {
	var (
		rec         models.FloorRecord
		nodes, plan string
	)
	if err := row.Scan(&rec.ID, &rec.DungeonID, &rec.Floor, &nodes, &plan, &rec.RoomCount, &rec.SVGPath, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(nodes), &rec.Nodes); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &rec.Layout); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if rec.Layout != nil {
		rec.Layout.Reindex()
	}
	return &rec, nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
