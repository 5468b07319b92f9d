package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/grid-escape/game/engine"
)

const defaultHistoryPage = 20

// gameServiceImpl implements the GameService interface. A single mutex
// serialises every engine call across all sessions.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.Mutex
	now      func() time.Time
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
		now:      time.Now,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if configID != "" {
		var err error
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, cfg := range available {
						ids = append(ids, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, ids)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	} else {
		configID, config = s.configs.GetDefault()
	}

	// Let session manager generate a short ID
	sess, err := s.sessions.Create(ctx, "", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session", sess.ID),
		zap.String("config", configID),
		zap.Int("grid_size", config.GridSize))

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns active sessions sorted and limited per opts
func (s *gameServiceImpl) ListSessions(ctx context.Context, opts ListOptions) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}

	if opts.Sort == "" {
		opts.Sort = "accessed"
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	sort.Slice(result, func(i, j int) bool {
		var less bool
		switch opts.Sort {
		case "created":
			less = result[i].CreatedAt.Before(result[j].CreatedAt)
		case "id":
			less = result[i].ID < result[j].ID
		default:
			less = result[i].LastAccessedAt.Before(result[j].LastAccessedAt)
		}
		if opts.Order == "asc" {
			return less
		}
		return !less
	})

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Place puts a token on a starting cell
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, req PlaceRequest) (*ActionResult, error) {
	cell := engine.Cell{X: req.X, Y: req.Y}
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		if req.TokenID == nil {
			return e.PlaceNext(req.Player, cell)
		}
		return e.Place(req.Player, *req.TokenID, cell)
	})
}

// Move advances a token
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req MoveRequest) (*ActionResult, error) {
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		return e.Move(req.Player, req.TokenID, engine.Cell{X: req.X, Y: req.Y})
	})
}

// Escape confirms a token's exit from an escape cell
func (s *gameServiceImpl) Escape(ctx context.Context, sessionID string, req TokenRequest) (*ActionResult, error) {
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		return e.Escape(req.Player, req.TokenID)
	})
}

// Select records advisory focus on a token
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, req TokenRequest) (*ActionResult, error) {
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		return e.Select(req.Player, req.TokenID)
	})
}

// SwitchTurn runs the turn advance without an action
func (s *gameServiceImpl) SwitchTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		return e.SwitchTurn()
	})
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(ctx, sessionID, func(e *engine.GameEngine) engine.ActionOutcome {
		return e.Reset()
	})
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Engine.Snapshot()
	return &snap, nil
}

// LegalActions lists the current player's legal actions
func (s *gameServiceImpl) LegalActions(ctx context.Context, sessionID string) (*LegalActionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	actions := sess.Engine.LegalActions()
	if actions == nil {
		actions = []engine.Action{}
	}
	return &LegalActionsResponse{
		SessionID:     sess.ID,
		CurrentPlayer: sess.Engine.State().CurrentPlayer().ID(),
		GameOver:      sess.Engine.IsGameOver(),
		Actions:       actions,
	}, nil
}

// GetActionHistory returns paginated action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if opts.Segment != "current" {
		opts.Segment = "all"
	}
	h := sess.Engine.History()
	history := h.All
	if opts.Segment == "current" {
		history = h.Current
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryPage
	}
	if opts.Limit > engine.MaxHistoryPage {
		opts.Limit = engine.MaxHistoryPage
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []engine.ActionRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				actions = append(actions, history[i])
			}
		} else {
			actions = append(actions, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Segment:      opts.Segment,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", zap.String("config", configName))
	return nil
}

// act runs one engine call under the service lock and persists the session
func (s *gameServiceImpl) act(ctx context.Context, sessionID string, fn func(*engine.GameEngine) engine.ActionOutcome) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	recorded := sess.Engine.History().Total
	out := fn(sess.Engine)
	snap := sess.Engine.Snapshot()

	// A rejection folded into the previous record only bumps its counter
	if out.Success || sess.Engine.History().Total != recorded {
		if err := s.sessions.Save(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to persist session", zap.String("session", sess.ID), zap.Error(err))
		}
	}

	s.logger.Info("action",
		zap.String("session", sess.ID),
		zap.String("action", string(out.Action)),
		zap.Int("player", int(out.Player)),
		zap.Int("token", out.TokenID),
		zap.Bool("success", out.Success),
		zap.String("reason", out.Reason),
		zap.Bool("game_over", out.GameOver))

	return &ActionResult{
		EventID:   uuid.NewString(),
		SessionID: sess.ID,
		Success:   out.Success,
		Reason:    out.Reason,
		Message:   out.Message,
		Outcome:   out,
		State:     &snap,
		Events:    s.eventsFor(out, sess.Engine.Config().Messages.TurnSkipped),
	}, nil
}

// touch loads a session and refreshes its access time
func (s *gameServiceImpl) touch(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		s.logger.Warn("failed to update access time", zap.String("session", sess.ID), zap.Error(err))
	}
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	snap := sess.Engine.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          &snap,
		GameConfig:     sess.Config,
	}
}

// eventsFor expands an outcome into the events shown to players.
// turnSkipped is the config's message format for a skipped player.
func (s *gameServiceImpl) eventsFor(out engine.ActionOutcome, turnSkipped string) []GameEvent {
	now := s.now()
	if !out.Success {
		return []GameEvent{{Type: "rejected", Message: out.Message, Player: out.Player, Timestamp: now}}
	}

	events := []GameEvent{{Type: string(out.Action), Message: describeAction(out), Player: out.Player, Timestamp: now}}
	if out.TurnSkipped {
		events = append(events, GameEvent{
			Type:      "turn_skipped",
			Message:   fmt.Sprintf(turnSkipped, int(out.SkippedPlayer)),
			Player:    out.SkippedPlayer,
			Timestamp: now,
		})
	}
	switch {
	case out.Winner != engine.NoPlayer:
		events = append(events, GameEvent{Type: "victory", Message: out.Message, Player: out.Winner, Timestamp: now})
	case out.Stalemate:
		events = append(events, GameEvent{Type: "stalemate", Message: out.Message, Timestamp: now})
	}
	return events
}

func describeAction(out engine.ActionOutcome) string {
	switch out.Action {
	case engine.ActionPlace:
		return fmt.Sprintf("Player %d placed token %d", out.Player, out.TokenID)
	case engine.ActionMove:
		if out.Escaped {
			return fmt.Sprintf("Player %d moved token %d off the board", out.Player, out.TokenID)
		}
		return fmt.Sprintf("Player %d moved token %d", out.Player, out.TokenID)
	case engine.ActionEscape:
		return fmt.Sprintf("Player %d escaped token %d", out.Player, out.TokenID)
	case engine.ActionSelect:
		return fmt.Sprintf("Player %d selected token %d", out.Player, out.TokenID)
	case engine.ActionReset:
		return "Game reset to initial state"
	default:
		return "Turn passed"
	}
}
