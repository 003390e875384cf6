package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"dungeon-layout/internal/layout/models"
)

// ============================================================
// JSON Structures
// ============================================================

// envelope описывает ответ сервера с графом этажа.
type envelope struct {
	DungeonID string        `json:"dungeonId,omitempty"`
	Floor     int           `json:"floor,omitempty"`
	Nodes     []models.Node `json:"nodes"`
}

// ============================================================
// Parser
// ============================================================

// ParseDAG принимает либо голый массив узлов, либо объект {"nodes": [...]}.
func ParseDAG(r io.Reader) ([]models.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dag: %w", err)
	}
	return DecodeDAG(data)
}

func DecodeDAG(data []byte) ([]models.Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode dag: empty body")
	}

	var nodes []models.Node
	if data[0] == '[' {
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("decode dag array: %w", err)
		}
	} else {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode dag object: %w", err)
		}
		nodes = env.Nodes
	}

	return normalize(nodes), nil
}

// normalize отбрасывает узлы без имени и повторы (остаётся первая запись).
func normalize(nodes []models.Node) []models.Node {
	out := make([]models.Node, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))

	for i, n := range nodes {
		if n.Name == "" {
			log.Printf("[PARSER] node #%d dropped: empty name", i)
			continue
		}
		if seen[n.Name] {
			log.Printf("[PARSER] duplicate node %q ignored", n.Name)
			continue
		}
		seen[n.Name] = true
		out = append(out, n)
	}
	return out
}
