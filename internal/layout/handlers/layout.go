package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"dungeon-layout/internal/layout/mapper"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Layout Handlers
// ============================================================

// Register вешает маршруты сервиса раскладки на роутер.
func Register(r fiber.Router) {
	r.Post("/layout", ComputeLayout)
	r.Post("/render", RenderLayout)
	r.Post("/generate", GenerateFloor)
	r.Post("/validate", ValidateLayout)
}

// ComputeLayout: DAG этажа → FloorLayout JSON.
func ComputeLayout(c fiber.Ctx) error {
	log.Printf("[LAYOUT] Received layout request, %d bytes", len(c.Body()))

	data, err := dagBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	layout, err := mapper.New().ConvertReader(bytes.NewReader(data))
	if err != nil {
		log.Printf("[LAYOUT] Conversion error: %v", err)
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(layout)
}

// RenderLayout: DAG этажа → SVG превью.
func RenderLayout(c fiber.Ctx) error {
	log.Printf("[RENDER] Received request, %d bytes", len(c.Body()))

	data, err := dagBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	layout, err := mapper.New().ConvertReader(bytes.NewReader(data))
	if err != nil {
		log.Printf("[RENDER] Conversion error: %v", err)
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	svg, err := mapper.NewRenderer().Render(layout)
	if err != nil {
		log.Printf("[RENDER] Render error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// dagBody достаёт JSON графа из тела запроса либо из multipart-поля file.
func dagBody(c fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(c.Get("Content-Type"), fiber.MIMEMultipartForm) {
		file, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("file required in multipart/form-data")
		}
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read file")
		}
		return data, nil
	}

	if len(c.Body()) == 0 {
		return nil, fmt.Errorf("body required")
	}
	return c.Body(), nil
}
