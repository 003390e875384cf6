package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Feed client
// ============================================================

// Client запрашивает DAG этажей у сервера. Запросы по одному соединению идут последовательно.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial feed %s: %w", url, err)
	}
	conn.SetReadLimit(4 << 20)
	return &Client{conn: conn}, nil
}

// FetchFloor ждёт ответ на один get_floor. Ошибка сервера возвращается как ErrUpstream.
func (c *Client) FetchFloor(ctx context.Context, dungeonID string, floor int) ([]models.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Request{Type: TypeGetFloor, DungeonID: dungeonID, Floor: floor}
	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		return nil, fmt.Errorf("send get_floor: %w", err)
	}

	var reply Reply
	if err := wsjson.Read(ctx, c.conn, &reply); err != nil {
		return nil, fmt.Errorf("read floor reply: %w", err)
	}

	switch reply.Type {
	case TypeFloor:
		if reply.DungeonID != dungeonID || reply.Floor != floor {
			return nil, fmt.Errorf("floor reply for %s/%d, asked %s/%d", reply.DungeonID, reply.Floor, dungeonID, floor)
		}
		if reply.Nodes == nil {
			return []models.Node{}, nil
		}
		return reply.Nodes, nil
	case TypeError:
		return nil, fmt.Errorf("%w: %s", ErrUpstream, reply.Error)
	default:
		return nil, fmt.Errorf("unexpected reply type %q", reply.Type)
	}
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
