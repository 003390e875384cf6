package service

import (
	"sync"

	"github.com/google/uuid"

	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Floor Tracker
// ============================================================

// FloorTracker держит текущий этаж каждого клиента. Каждая загрузка этажа получает токен;
// результат загрузки принимается, только если её токен ещё актуален.
type FloorTracker struct {
	mu      sync.Mutex
	pending map[string]string // client -> token последней начатой загрузки
	current map[string]*models.FloorLayout
}

func NewFloorTracker() *FloorTracker {
	return &FloorTracker{
		pending: make(map[string]string),
		current: make(map[string]*models.FloorLayout),
	}
}

// Begin начинает загрузку этажа; все ранее выданные токены клиента устаревают.
func (t *FloorTracker) Begin(client string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	token := uuid.NewString()
	t.pending[client] = token
	return token
}

// Commit заменяет текущий этаж целиком. Устаревшая загрузка отбрасывается, возвращается false.
func (t *FloorTracker) Commit(client, token string, layout *models.FloorLayout) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token == "" || t.pending[client] != token {
		return false
	}
	delete(t.pending, client)
	t.current[client] = layout
	return true
}

func (t *FloorTracker) Current(client string) (*models.FloorLayout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	layout, ok := t.current[client]
	return layout, ok
}

// Loading сообщает, есть ли у клиента незавершённая загрузка.
func (t *FloorTracker) Loading(client string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[client]
	return ok
}

// Cancel снимает незавершённую загрузку, не трогая текущий этаж. false, если токен уже устарел.
func (t *FloorTracker) Cancel(client, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token == "" || t.pending[client] != token {
		return false
	}
	delete(t.pending, client)
	return true
}
