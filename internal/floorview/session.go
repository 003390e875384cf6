package floorview

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"dungeon-layout/internal/archive/service"
	"dungeon-layout/internal/layout/models"
)

// ============================================================
// Session
// ============================================================

type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionFloorUp
	ActionFloorDown
	ActionRegenerate
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
)

const panStep = 4

// KeyAction сопоставляет клавишу действию.
func KeyAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyPgUp:
		return ActionFloorUp
	case tcell.KeyPgDn:
		return ActionFloorDown
	case tcell.KeyLeft:
		return ActionPanLeft
	case tcell.KeyRight:
		return ActionPanRight
	case tcell.KeyUp:
		return ActionPanUp
	case tcell.KeyDown:
		return ActionPanDown
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return ActionQuit
		case '<', 'u':
			return ActionFloorUp
		case '>', 'd':
			return ActionFloorDown
		case 'r':
			return ActionRegenerate
		case 'h':
			return ActionPanLeft
		case 'l':
			return ActionPanRight
		case 'k':
			return ActionPanUp
		case 'j':
			return ActionPanDown
		}
	}
	return ActionNone
}

// LoadResult содержит итог фоновой загрузки этажа.
type LoadResult struct {
	Token  string
	Floor  int
	Layout *models.FloorLayout
	Err    error
}

// Session связывает загрузчик, трекер этажей и экран одного клиента.
// Загрузки идут в фоне; применяется только последняя начатая.
type Session struct {
	view    *View
	loader  FloorLoader
	tracker *service.FloorTracker
	client  string
	floor   int // показанный этаж; 0, пока ни один не загружен
	pending int // этаж последней начатой загрузки
	results chan LoadResult
}

func NewSession(view *View, loader FloorLoader, tracker *service.FloorTracker, client string) *Session {
	return &Session{
		view:    view,
		loader:  loader,
		tracker: tracker,
		client:  client,
		results: make(chan LoadResult, 8),
	}
}

func (s *Session) Results() <-chan LoadResult { return s.results }

func (s *Session) Floor() int { return s.floor }

// Load запускает фоновую загрузку этажа, отменяя по смыслу все предыдущие.
func (s *Session) Load(ctx context.Context, floor int) {
	s.pending = floor
	token := s.tracker.Begin(s.client)
	s.view.SetStatus(fmt.Sprintf("loading floor %d…", floor))

	go func() {
		layout, err := s.loader.LoadFloor(ctx, floor)
		s.results <- LoadResult{Token: token, Floor: floor, Layout: layout, Err: err}
	}()
}

// Apply применяет результат загрузки; устаревший результат отбрасывается.
// Номер текущего этажа меняется только вместе с показанной раскладкой.
func (s *Session) Apply(res LoadResult) bool {
	if res.Err != nil {
		if s.tracker.Cancel(s.client, res.Token) {
			s.view.SetStatus(fmt.Sprintf("floor %d: %v", res.Floor, res.Err))
		}
		return false
	}
	if !s.tracker.Commit(s.client, res.Token, res.Layout) {
		return false
	}
	s.floor = res.Floor
	s.view.SetFloor(res.Floor, res.Layout)
	s.view.SetStatus("PgUp/PgDn floors, arrows pan, r regenerate, q quit")
	return true
}

// Handle выполняет действие; true означает выход.
func (s *Session) Handle(ctx context.Context, a Action) bool {
	switch a {
	case ActionQuit:
		return true
	case ActionFloorUp:
		if s.floor > 1 {
			s.Load(ctx, s.floor-1)
		}
	case ActionFloorDown:
		s.Load(ctx, s.floor+1)
	case ActionRegenerate:
		if r, ok := s.loader.(*RandomLoader); ok {
			r.Reseed(1000)
		}
		if s.floor > 0 {
			s.Load(ctx, s.floor)
		} else {
			s.Load(ctx, s.pending)
		}
	case ActionPanLeft:
		s.view.Pan(panStep, 0)
	case ActionPanRight:
		s.view.Pan(-panStep, 0)
	case ActionPanUp:
		s.view.Pan(0, panStep)
	case ActionPanDown:
		s.view.Pan(0, -panStep)
	}
	return false
}
