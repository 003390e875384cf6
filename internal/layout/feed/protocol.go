package feed

import (
	"context"
	"errors"

	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Wire format (JSON text frames)
// ============================================================

const (
	TypeGetFloor = "get_floor"
	TypeFloor    = "floor"
	TypeError    = "error"
)

// ErrUpstream: сервер ответил сообщением об ошибке.
var ErrUpstream = errors.New("feed: upstream error")

type Request struct {
	Type      string `json:"type"`
	DungeonID string `json:"dungeonId"`
	Floor     int    `json:"floor"`
}

type Reply struct {
	Type      string        `json:"type"`
	DungeonID string        `json:"dungeonId,omitempty"`
	Floor     int           `json:"floor"`
	Nodes     []models.Node `json:"nodes,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// FloorSource отдаёт DAG этажа по подземелью и номеру этажа.
type FloorSource interface {
	FloorNodes(ctx context.Context, dungeonID string, floor int) ([]models.Node, error)
}

func errorReply(msg string) Reply {
	return Reply{Type: TypeError, Error: msg}
}
