package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/dragon-caves-game/game/engine"
)

// ErrConfigNotFound is returned when a session is requested for an unknown config
var ErrConfigNotFound = errors.New("configuration not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
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
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created",
		zap.String("session", session.ID),
		zap.String("config", configID),
		zap.Int("players", config.Players))

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Public(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Public(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState().Public(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Flip reveals one chit card for the session's current dragon
func (s *gameServiceImpl) Flip(ctx context.Context, sessionID string, card int, reset bool) (*FlipResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	flip, err := sess.Engine.Flip(card)
	if err != nil {
		if errors.Is(err, engine.ErrNoFreeVolcano) || errors.Is(err, engine.ErrUnknownDragon) {
			s.logger.Error("flip aborted on broken board",
				zap.String("session", sessionID),
				zap.Int("card", card),
				zap.Error(err))
		}
		return nil, fmt.Errorf("flip card %d: %w", card, err)
	}

	state := sess.Engine.GetState()
	result := &FlipResult{
		Success:   true,
		GameState: state.Public(),
		Message:   flip.Message,
		Events:    append(events, flipEvents(flip)...),
		Flip:      flip,
	}

	s.logger.Debug("card flipped",
		zap.String("session", sessionID),
		zap.Int("dragon", flip.Player),
		zap.Int("card", card),
		zap.String("animal", string(flip.Card.Animal)),
		zap.Int("count", flip.Card.Count),
		zap.Int("from", flip.Outcome.From),
		zap.Int("to", flip.Outcome.To),
		zap.Bool("turn_ended", flip.TurnEnded),
		zap.Bool("game_over", flip.GameOver))

	// Auto-save session after flip
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session after flip", zap.String("session", sessionID), zap.Error(err))
	}

	return result, nil
}

// Preview resolves a card for the current dragon without changing the game
func (s *gameServiceImpl) Preview(ctx context.Context, sessionID string, direction engine.Direction, step int) (*PreviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	resolution, err := sess.Engine.Preview(direction, step)
	if err != nil {
		return nil, err
	}

	dragon := sess.Engine.GetCurrentDragon()
	result := &PreviewResult{Dragon: dragon, Resolution: resolution}

	switch {
	case resolution.HasDestination:
		tile := sess.Engine.Board().TileAt(resolution.Destination)
		result.DestinationTile = &tile
		if occupant, ok := tile.OccupantID(); ok && occupant != dragon.ID {
			result.WouldBump = &occupant
			result.Message = fmt.Sprintf("Dragon %d would take tile %d and bump dragon %d", dragon.ID, resolution.Destination, occupant)
		} else if resolution.GameEnds {
			result.Message = fmt.Sprintf("Dragon %d would reach its cave and win", dragon.ID)
		} else {
			result.Message = fmt.Sprintf("Dragon %d would move to tile %d", dragon.ID, resolution.Destination)
		}
	case resolution.TurnEnds:
		result.Message = fmt.Sprintf("Dragon %d would overshoot its cave and stay on tile %d", dragon.ID, dragon.Position)
	default:
		result.Message = fmt.Sprintf("Dragon %d would stay on tile %d", dragon.ID, dragon.Position)
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session after reset", zap.String("session", sessionID), zap.Error(err))
	}

	return state.Public(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Public(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
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

// flipEvents turns an engine flip into the events shown to clients
func flipEvents(flip *engine.FlipResult) []GameEvent {
	now := time.Now()
	out := flip.Outcome
	events := []GameEvent{{
		Type:      "flip",
		Message:   fmt.Sprintf("Dragon %d flipped card %d: %d %s", flip.Player, flip.CardIndex, flip.Card.Count, flip.Card.Animal),
		Timestamp: now,
		Dragon:    flip.Player,
		Position:  out.From,
	}}

	if out.Moved {
		events = append(events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Dragon %d moved from tile %d to tile %d", flip.Player, out.From, out.To),
			Timestamp: now,
			Dragon:    flip.Player,
			Position:  out.To,
		})
	}
	if out.Bumped {
		events = append(events, GameEvent{
			Type:      "bump",
			Message:   fmt.Sprintf("Dragon %d was bumped to tile %d", out.BumpedID, out.BumpedTo),
			Timestamp: now,
			Dragon:    out.BumpedID,
			Position:  out.BumpedTo,
		})
	}
	if flip.Resolution != nil && !flip.Resolution.HasDestination && flip.Resolution.TurnEnds {
		events = append(events, GameEvent{
			Type:      "stay",
			Message:   fmt.Sprintf("Dragon %d overshot its cave and stays on tile %d", flip.Player, out.From),
			Timestamp: now,
			Dragon:    flip.Player,
			Position:  out.From,
		})
	}

	switch {
	case flip.GameOver:
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   flip.Message,
			Timestamp: now,
			Dragon:    flip.Player,
			Position:  out.To,
		})
	case flip.TurnEnded:
		events = append(events, GameEvent{
			Type:      "turn_end",
			Message:   fmt.Sprintf("Turn passes to seat %d", flip.NextPlayer),
			Timestamp: now,
			Dragon:    flip.Player,
			Position:  out.To,
		})
	}

	return events
}
