package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage хранит SVG-превью этажей: <root>/<dungeon>/floor-<n>.svg.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

// ValidateDungeonID проверяет, что id подземелья годится как имя каталога:
// без разделителей путей, не "." и не "..".
func ValidateDungeonID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: dungeonId required", ErrInvalidFloor)
	case id == "." || id == "..", strings.ContainsAny(id, `/\`), strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: dungeonId %q is not a valid directory name", ErrInvalidFloor, id)
	}
	return nil
}

func (s *FileStorage) DungeonDir(dungeonID string) string {
	return filepath.Join(s.root, filepath.Base(filepath.Clean("/"+dungeonID)))
}

func (s *FileStorage) SVGPath(dungeonID string, floor int) string {
	return filepath.Join(s.DungeonDir(dungeonID), "floor-"+strconv.Itoa(floor)+".svg")
}

func (s *FileStorage) EnsureDir(dungeonID string) error {
	if err := os.MkdirAll(s.DungeonDir(dungeonID), 0o755); err != nil {
		return fmt.Errorf("mkdir dungeon dir: %w", err)
	}
	return nil
}

func (s *FileStorage) SaveFile(dungeonID, target string, data []byte) error {
	if err := s.EnsureDir(dungeonID); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

// RemoveFile удаляет превью; отсутствующий файл не ошибка.
func (s *FileStorage) RemoveFile(target string) error {
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", target, err)
	}
	return nil
}

// Promote переносит временный файл на место превью.
func (s *FileStorage) Promote(tmp, target string) error {
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("promote %s: %w", target, err)
	}
	return nil
}
