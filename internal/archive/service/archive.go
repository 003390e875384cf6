package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"dungeon-layout/internal/archive/models"
	"dungeon-layout/internal/archive/repository"
	"dungeon-layout/internal/layout/mapper"
	layout "dungeon-layout/internal/layout/models"
)

// ============================================================
// Floor Archive
// ============================================================

var ErrInvalidFloor = errors.New("invalid floor")

// Archive считает раскладку присланного DAG, сохраняет её и SVG-превью.
// Если задан layoutURL, превью рисует сервис раскладки, иначе локальный рендерер.
type Archive struct {
	repo      *repository.Repository
	storage   *FileStorage
	converter *mapper.Converter
	renderer  *mapper.Renderer
	layoutURL string
	client    *http.Client
}

func NewArchive(repo *repository.Repository, storage *FileStorage, layoutURL string) *Archive {
	return &Archive{
		repo:      repo,
		storage:   storage,
		converter: mapper.New(),
		renderer:  mapper.NewRenderer(),
		layoutURL: layoutURL,
		client:    http.DefaultClient,
	}
}

func (a *Archive) Store(ctx context.Context, req models.SaveFloorRequest) (*models.FloorRecord, error) {
	if err := ValidateDungeonID(req.DungeonID); err != nil {
		return nil, err
	}
	if len(req.Nodes) == 0 {
		return nil, fmt.Errorf("%w: nodes required", ErrInvalidFloor)
	}

	plan := a.converter.Convert(req.Nodes)

	svg, err := a.preview(ctx, req.Nodes, plan)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	// Превью пишется во временный файл и заменяет прежнее только после записи в БД.
	svgPath := a.storage.SVGPath(req.DungeonID, req.Floor)
	tmpPath := svgPath + ".tmp"
	if err := a.storage.SaveFile(req.DungeonID, tmpPath, svg); err != nil {
		return nil, fmt.Errorf("save preview: %w", err)
	}

	rec := &models.FloorRecord{
		DungeonID: req.DungeonID,
		Floor:     req.Floor,
		Nodes:     req.Nodes,
		Layout:    plan,
		RoomCount: len(plan.Rooms),
		SVGPath:   svgPath,
	}
	if err := a.repo.Save(ctx, rec); err != nil {
		if rmErr := a.storage.RemoveFile(tmpPath); rmErr != nil {
			log.Printf("[ARCHIVE] cleanup after failed save: %v", rmErr)
		}
		return nil, err
	}
	if err := a.storage.Promote(tmpPath, svgPath); err != nil {
		return nil, err
	}

	log.Printf("[ARCHIVE] stored %s floor %d as %s (%d rooms)", rec.DungeonID, rec.Floor, rec.ID, rec.RoomCount)
	return rec, nil
}

func (a *Archive) Floor(ctx context.Context, id string) (*models.FloorRecord, error) {
	return a.repo.GetByID(ctx, id)
}

func (a *Archive) Floors(ctx context.Context, dungeonID string) ([]models.FloorSummary, error) {
	return a.repo.ListByDungeon(ctx, dungeonID)
}

// FloorNodes отдаёт сохранённый DAG этажа; через него WebSocket-фид обслуживает клиентов.
func (a *Archive) FloorNodes(ctx context.Context, dungeonID string, floor int) ([]layout.Node, error) {
	rec, err := a.repo.GetByFloor(ctx, dungeonID, floor)
	if err != nil {
		return nil, err
	}
	return rec.Nodes, nil
}

// ============================================================
// Preview rendering
// ============================================================

func (a *Archive) preview(ctx context.Context, nodes []layout.Node, plan *layout.FloorLayout) ([]byte, error) {
	if a.layoutURL == "" {
		svg, err := a.renderer.Render(plan)
		if err != nil {
			return nil, err
		}
		return []byte(svg), nil
	}
	return a.remoteRender(ctx, nodes)
}

// remoteRender отправляет DAG в Layout /render как multipart-файл и возвращает SVG.
func (a *Archive) remoteRender(ctx context.Context, nodes []layout.Node) ([]byte, error) {
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "floor.json")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.layoutURL+"/render", bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	svg, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("layout status %d", resp.StatusCode)
	}

	return svg, nil
}
