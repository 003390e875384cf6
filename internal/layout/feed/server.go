package feed

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ============================================================
// Feed server
// ============================================================

// Server отвечает на запросы get_floor по WebSocket, беря данные из FloorSource.
type Server struct {
	source FloorSource
}

func NewServer(source FloorSource) *Server {
	return &Server{source: source}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Printf("[FEED] accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.Printf("[FEED] read: %v", err)
			}
			return
		}

		reply := s.handle(r, data)
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			log.Printf("[FEED] write: %v", err)
			return
		}
	}
}

func (s *Server) handle(r *http.Request, data []byte) Reply {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply("invalid JSON payload")
	}

	switch req.Type {
	case TypeGetFloor:
		if req.DungeonID == "" {
			return errorReply("dungeonId required")
		}
		nodes, err := s.source.FloorNodes(r.Context(), req.DungeonID, req.Floor)
		if err != nil {
			log.Printf("[FEED] floor %s/%d: %v", req.DungeonID, req.Floor, err)
			return errorReply(err.Error())
		}
		log.Printf("[FEED] floor %s/%d served, %d nodes", req.DungeonID, req.Floor, len(nodes))
		return Reply{Type: TypeFloor, DungeonID: req.DungeonID, Floor: req.Floor, Nodes: nodes}
	default:
		return errorReply("unknown message type: " + req.Type)
	}
}
