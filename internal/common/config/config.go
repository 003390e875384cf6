package config

import (
	"os"
	"strconv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	// Адреса сервисов для шлюза и межсервисных вызовов
	LayoutURL  string
	ArchiveURL string

	// Архив этажей
	ArchiveDBPath     string
	ArchiveMigrations string
	StorageRoot       string
	FeedPort          string
	RemoteRender      bool // превью через LAYOUT_URL/render вместо локального рендера
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "3000"),
		Environment:       getEnv("ENV", "development"),
		ReadTimeout:       getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:      getEnvAsInt("WRITE_TIMEOUT", 10),
		LayoutURL:         getEnv("LAYOUT_URL", "http://localhost:3001"),
		ArchiveURL:        getEnv("ARCHIVE_URL", "http://localhost:3002"),
		ArchiveDBPath:     getEnv("ARCHIVE_DB_PATH", "data/db/archive.db"),
		ArchiveMigrations: getEnv("ARCHIVE_MIGRATIONS", "migrations/001_init_archive.sql"),
		StorageRoot:       getEnv("STORAGE_ROOT", "data/floors"),
		FeedPort:          getEnv("FEED_PORT", "3003"),
		RemoteRender:      getEnvAsBool("REMOTE_RENDER", false),
	}
}

// PortOr возвращает PORT из окружения или порт сервиса по умолчанию.
func (c *Config) PortOr(defaultPort string) string {
	if os.Getenv("PORT") == "" {
		return defaultPort
	}
	return c.Port
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
