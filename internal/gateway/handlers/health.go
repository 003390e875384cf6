package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

var probeClient = &http.Client{Timeout: 2 * time.Second}

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe готов, когда все нижележащие сервисы отвечают на /health/ready.
func ReadinessProbe(upstreams map[string]string) fiber.Handler {
	return func(c fiber.Ctx) error {
		services := fiber.Map{}
		ready := true
		for name, baseURL := range upstreams {
			status := "ready"
			resp, err := probeClient.Get(strings.TrimRight(baseURL, "/") + "/health/ready")
			if err != nil {
				log.Printf("[PROXY] %s not ready: %v", name, err)
				status = "unreachable"
			} else {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					status = "not ready"
				}
			}
			if status != "ready" {
				ready = false
			}
			services[name] = status
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "not ready",
				"services": services,
			})
		}
		return c.JSON(fiber.Map{
			"status":   "ready",
			"services": services,
		})
	}
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
