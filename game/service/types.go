package service

import (
	"time"

	"github.com/wricardo/grid-escape/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          *engine.Snapshot   `json:"state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ListOptions configures session listing
type ListOptions struct {
	Sort  string `json:"sort"`  // "accessed" (default), "created" or "id"
	Order string `json:"order"` // "asc" or "desc" (default)
	Limit int    `json:"limit"` // 0 means no limit
}

// PlaceRequest asks to put a token on a starting cell. A nil TokenID places
// the lowest-id unplaced token.
type PlaceRequest struct {
	Player  engine.PlayerID `json:"player"`
	TokenID *int            `json:"token_id,omitempty"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
}

// MoveRequest asks to advance a token to a neighbouring cell
type MoveRequest struct {
	Player  engine.PlayerID `json:"player"`
	TokenID int             `json:"token_id"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
}

// TokenRequest names a single token
type TokenRequest struct {
	Player  engine.PlayerID `json:"player"`
	TokenID int             `json:"token_id"`
}

// ActionResult contains the result of one engine call. Rejected actions
// are results with Success false, never errors.
type ActionResult struct {
	EventID   string               `json:"event_id"`
	SessionID string               `json:"session_id"`
	Success   bool                 `json:"success"`
	Reason    string               `json:"reason,omitempty"`
	Message   string               `json:"message"`
	Outcome   engine.ActionOutcome `json:"outcome"`
	State     *engine.Snapshot     `json:"state"`
	Events    []GameEvent          `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "place", "move", "escape", "select", "switch_turn", "turn_skipped", "victory", "stalemate", "reset", "rejected"
	Message   string          `json:"message"`
	Player    engine.PlayerID `json:"player,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// LegalActionsResponse lists what the current player may do
type LegalActionsResponse struct {
	SessionID     string          `json:"session_id"`
	CurrentPlayer engine.PlayerID `json:"current_player"`
	GameOver      bool            `json:"game_over"`
	Actions       []engine.Action `json:"actions"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Order   string `json:"order"`   // "asc" or "desc"
	Segment string `json:"segment"` // "all" (default) or "current"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionRecord `json:"actions"`
	TotalActions int                   `json:"total_actions"`
	Segment      string                `json:"segment"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename            string `json:"filename"`
	ConfigID            string `json:"config_id"` // The identifier to use for session creation
	Name                string `json:"name"`      // Display name
	Description         string `json:"description"`
	GridSize            int    `json:"grid_size"`
	PlacementAvoidsSkip bool   `json:"placement_avoids_skip"`
}
