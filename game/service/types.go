package service

import (
	"strings"
	"time"

	"github.com/wricardo/dragon-caves-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// FlipResult contains the result of a flip operation
type FlipResult struct {
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	Flip      *engine.FlipResult `json:"flip,omitempty"`
}

// PreviewResult describes where the current dragon would go for a card
type PreviewResult struct {
	Dragon          engine.Dragon     `json:"dragon"`
	Resolution      engine.Resolution `json:"resolution"`
	DestinationTile *engine.Tile      `json:"destination_tile,omitempty"`
	WouldBump       *int              `json:"would_bump,omitempty"`
	Message         string            `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "flip", "move", "bump", "stay", "turn_end", "victory", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Dragon    int       `json:"dragon"`
	Position  int       `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Players      int    `json:"players"`
	Volcanoes    int    `json:"volcanoes"`
	BoardLength  int    `json:"board_length"`
	CaveDistance int    `json:"cave_distance"`
}

// NewConfigInfo summarizes a configuration stored under filename
func NewConfigInfo(filename string, config *engine.GameConfig) *ConfigInfo {
	caves := config.CaveCount()
	return &ConfigInfo{
		Filename:     filename,
		ConfigID:     strings.TrimSuffix(filename, ".json"),
		Name:         config.Name,
		Description:  config.Description,
		Players:      config.Players,
		Volcanoes:    config.Volcanoes,
		BoardLength:  config.Volcanoes + caves,
		CaveDistance: config.Volcanoes/caves + 1,
	}
}
