package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"dungeon-layout/internal/archive/models"
	"dungeon-layout/internal/archive/repository"
	"dungeon-layout/internal/archive/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Archive Handler
// ============================================================

type ArchiveHandler struct {
	archive *service.Archive
}

func NewArchiveHandler(archive *service.Archive) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

func (h *ArchiveHandler) Register(r fiber.Router) {
	r.Post("/floors", h.SaveFloor)
	r.Get("/floors/:id", h.GetFloor)
	r.Get("/floors/:id/svg", h.GetFloorSVG)
	r.Get("/dungeons/:id/floors", h.ListFloors)
	r.Get("/dungeons/:id/floors/:floor/nodes", h.GetFloorNodes)
}

// SaveFloor считает и сохраняет этаж вместе с превью.
func (h *ArchiveHandler) SaveFloor(c fiber.Ctx) error {
	log.Printf("[ARCHIVE] Save floor request, %d bytes", len(c.Body()))

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var req models.SaveFloorRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	rec, err := h.archive.Store(context.Background(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFloor) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("[ARCHIVE] store error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store floor"})
	}

	return c.Status(http.StatusCreated).JSON(rec)
}

func (h *ArchiveHandler) GetFloor(c fiber.Ctx) error {
	rec, err := h.archive.Floor(context.Background(), c.Params("id"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(rec)
}

// GetFloorSVG отдаёт сохранённое превью этажа.
func (h *ArchiveHandler) GetFloorSVG(c fiber.Ctx) error {
	rec, err := h.archive.Floor(context.Background(), c.Params("id"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	if _, err := os.Stat(rec.SVGPath); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendFile(rec.SVGPath)
}

func (h *ArchiveHandler) ListFloors(c fiber.Ctx) error {
	list, err := h.archive.Floors(context.Background(), c.Params("id"))
	if err != nil {
		log.Printf("[ARCHIVE] list error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list floors"})
	}
	return c.JSON(list)
}

// GetFloorNodes отдаёт исходный DAG этажа, тот же ответ, что и WebSocket-фид.
func (h *ArchiveHandler) GetFloorNodes(c fiber.Ctx) error {
	floor, err := strconv.Atoi(c.Params("floor"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "floor must be a number"})
	}

	nodes, err := h.archive.FloorNodes(context.Background(), c.Params("id"), floor)
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(fiber.Map{"dungeonId": c.Params("id"), "floor": floor, "nodes": nodes})
}

func notFoundOr500(c fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "floor not found"})
	}
	log.Printf("[ARCHIVE] lookup error: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
