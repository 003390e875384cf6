package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"dungeon-layout/internal/layout/generator"
	"dungeon-layout/internal/layout/models"
	"dungeon-layout/internal/layout/validator"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Random mode & validation
// ============================================================

// Ограничения одного запроса к генератору.
const (
	MaxRoomCount = 100
	MaxDoors     = 4 // по двери на ребро прямоугольника
)

// GenerateFloor: параметры генератора поверх значений по умолчанию → этаж + результат проверки.
func GenerateFloor(c fiber.Ctx) error {
	cfg := generator.DefaultConfig()
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &cfg); err != nil {
			log.Printf("[GENERATOR] Decode error: %v", err)
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON payload"})
		}
	}
	if cfg.RoomCount < 0 || cfg.Width <= 0 || cfg.Height <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "roomCount, width and height must be positive"})
	}
	if cfg.RoomCount > MaxRoomCount {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("roomCount must not exceed %d", MaxRoomCount)})
	}
	if cfg.MaxAttempts < 0 || cfg.MaxAttempts > generator.DefaultMaxAttempts {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("maxAttempts must be within [0, %d]", generator.DefaultMaxAttempts)})
	}
	if cfg.Room.MinDoors < 0 || cfg.Room.MaxDoors > MaxDoors {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("room doors must be within [0, %d]", MaxDoors)})
	}

	res := generator.Generate(cfg)
	log.Printf("[GENERATOR] seed=%d rooms=%d valid=%v attempts=%d",
		cfg.Seed, len(res.Layout.Rooms), res.Validation.Valid, res.Attempts)
	return c.JSON(res)
}

// ValidateLayout проверяет присланный FloorLayout.
func ValidateLayout(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "body required"})
	}

	var layout models.FloorLayout
	if err := json.Unmarshal(c.Body(), &layout); err != nil {
		log.Printf("[VALIDATE] Decode error: %v", err)
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	layout.Reindex()

	return c.JSON(validator.Validate(&layout))
}
