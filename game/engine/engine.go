package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	GetWinner() int
	GetCurrentDragon() Dragon
	GetDragons() []Dragon

	// Turn operations
	Flip(card int) (*FlipResult, error)
	Preview(direction Direction, step int) (Resolution, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
}

// FlipResult reports everything one flipped chit card caused
type FlipResult struct {
	CardIndex  int         `json:"card_index"`
	Card       ChitCard    `json:"card"`
	Player     int         `json:"player"`
	Seat       int         `json:"seat"`
	Mismatch   bool        `json:"mismatch,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
	Outcome    MoveOutcome `json:"outcome"`
	TurnEnded  bool        `json:"turn_ended"`
	GameOver   bool        `json:"game_over"`
	NextPlayer int         `json:"next_player"`
	Message    string      `json:"message"`
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use: every Flip runs to completion before the next call may start.
type GameEngine struct {
	config *GameConfig

	gameID   string
	board    *Board
	dragons  Roster
	deck     []ChitCard
	current  int
	revealed int
	turn     int
	gameOver bool
	winner   int
	message  string

	history      []MoveHistoryEntry
	totalMoves   int
	currentMoves []MoveHistoryEntry
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

// init lays out a fresh board, roster and deck from the configuration
func (e *GameEngine) init() error {
	rng := newRNG(e.config.Seed)
	board, err := NewBoard(e.config.Players, e.config.Volcanoes, e.config.AnimalCount(), rng)
	if err != nil {
		return err
	}

	e.gameID = uuid.NewString()
	e.board = board
	e.dragons = NewRoster(e.config.Players, board)
	e.deck = NewDeck(rng)
	e.current = 0
	e.revealed = 0
	e.turn = 1
	e.gameOver = false
	e.winner = NoWinner
	e.message = e.config.Messages.Welcome + " " + e.turnMessage()
	return nil
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Board returns the live board. Callers must not mutate it.
func (e *GameEngine) Board() *Board {
	return e.board
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	dragons := make([]Dragon, len(e.dragons))
	for i, d := range e.dragons {
		dragons[i] = *d
	}
	deck := make([]ChitCard, len(e.deck))
	copy(deck, e.deck)

	return &GameState{
		GameID:            e.gameID,
		ConfigName:        e.config.Name,
		Tiles:             e.board.Tiles(),
		BoardLength:       e.board.Len(),
		CaveDistance:      e.board.CaveDistance(),
		Dragons:           dragons,
		Chits:             deck,
		CurrentPlayer:     e.current,
		CardsRevealed:     e.revealed,
		TurnNumber:        e.turn,
		GameOver:          e.gameOver,
		Winner:            e.winner,
		Message:           e.message,
		MoveHistory:       append([]MoveHistoryEntry{}, e.history...),
		TotalMoves:        e.totalMoves,
		CurrentMoves:      append([]MoveHistoryEntry{}, e.currentMoves...),
		CurrentMovesCount: len(e.currentMoves),
	}
}

// SetState restores a persisted game state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	board, err := RestoreBoard(state.Tiles, state.CaveDistance)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if len(state.Dragons) != e.config.Players {
		return fmt.Errorf("%w: expected %d dragons, got %d", ErrInvalidState, e.config.Players, len(state.Dragons))
	}
	if state.CurrentPlayer < 0 || state.CurrentPlayer >= len(state.Dragons) {
		return fmt.Errorf("%w: current player %d", ErrInvalidState, state.CurrentPlayer)
	}
	if len(state.Chits) == 0 {
		return fmt.Errorf("%w: empty chit deck", ErrInvalidState)
	}

	roster := make(Roster, len(state.Dragons))
	for i, d := range state.Dragons {
		dragon := d
		dragon.Position = board.Index(dragon.Position)
		roster[i] = &dragon
	}
	if err := roster.matchSeating(NewRoster(e.config.Players, board)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := CheckInvariants(board, roster); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	deck := make([]ChitCard, len(state.Chits))
	copy(deck, state.Chits)
	revealed := 0
	for _, c := range deck {
		if c.Revealed {
			revealed++
		}
	}

	e.gameID = state.GameID
	if e.gameID == "" {
		e.gameID = uuid.NewString()
	}
	e.board = board
	e.dragons = roster
	e.deck = deck
	e.current = state.CurrentPlayer
	e.revealed = revealed
	e.turn = max(state.TurnNumber, 1)
	e.gameOver = state.GameOver
	e.winner = state.Winner
	if !e.gameOver {
		e.winner = NoWinner
	}
	e.message = state.Message
	e.history = append([]MoveHistoryEntry{}, state.MoveHistory...)
	e.totalMoves = state.TotalMoves
	e.currentMoves = append([]MoveHistoryEntry{}, state.CurrentMoves...)
	return nil
}

// Reset starts a new game from the configuration while keeping the cumulative history
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.history
	prevTotal := e.totalMoves

	if err := e.init(); err != nil {
		// The configuration was validated when the engine was built
		panic(fmt.Sprintf("reset with validated config failed: %v", err))
	}

	e.history = prevHistory
	e.totalMoves = prevTotal
	e.currentMoves = nil
	return e.GetState()
}

// IsGameOver returns whether a dragon has returned to its cave
func (e *GameEngine) IsGameOver() bool {
	return e.gameOver
}

// GetWinner returns the winning dragon id, or NoWinner
func (e *GameEngine) GetWinner() int {
	return e.winner
}

// GetCurrentDragon returns the dragon whose turn it is
func (e *GameEngine) GetCurrentDragon() Dragon {
	return *e.dragons.BySeat(e.current)
}

// GetDragons returns a copy of every dragon in seat order
func (e *GameEngine) GetDragons() []Dragon {
	out := make([]Dragon, len(e.dragons))
	for i, d := range e.dragons {
		out[i] = *d
	}
	return out
}

// Flip reveals a chit card for the current dragon and plays it out.
//
// A dragon pirate moves the dragon backward. Any other animal moves it forward
// when it matches the tile the dragon stands on, and otherwise ends the turn.
// The turn also passes once every card is face up.
func (e *GameEngine) Flip(card int) (*FlipResult, error) {
	if e.gameOver {
		return nil, ErrGameOver
	}
	if card < 0 || card >= len(e.deck) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCard, card)
	}
	if e.deck[card].Revealed {
		return nil, fmt.Errorf("%w: %d", ErrCardRevealed, card)
	}

	dragon := e.dragons.BySeat(e.current)
	if dragon == nil {
		return nil, fmt.Errorf("%w: no dragon at seat %d", ErrInvalidState, e.current)
	}
	drawn := e.deck[card]
	drawn.Revealed = true
	result := &FlipResult{CardIndex: card, Card: drawn, Player: dragon.ID, Seat: dragon.Seat}

	var direction Direction
	switch {
	case drawn.IsPenalty():
		direction = Backward
	case e.board.TileAt(dragon.Position).Animal != drawn.Animal:
		result.Mismatch = true
	default:
		direction = Forward
	}

	outcome := MoveOutcome{From: dragon.Position, To: dragon.Position, TurnEnds: true}
	if !result.Mismatch {
		resolution, err := Resolve(direction, dragon.Position, drawn.Count, dragon.ID, e.board)
		if err != nil {
			return nil, err
		}
		outcome, err = resolution.Execute(e.board, e.dragons)
		if err != nil {
			return nil, err
		}
		result.Resolution = &resolution
	}

	e.deck[card].Revealed = true
	e.revealed++
	result.Outcome = outcome
	e.recordFlip(dragon.ID, drawn, direction, result.Mismatch, outcome)

	switch {
	case outcome.GameEnds:
		e.gameOver = true
		e.winner = dragon.ID
		e.message = fmt.Sprintf(e.config.Messages.Victory, dragon.ID)
		result.GameOver = true
	case outcome.TurnEnds || allRevealed(e.deck):
		e.message = e.describeFlip(dragon.ID, drawn, result) + " " + e.advanceTurn()
		result.TurnEnded = true
	default:
		e.message = e.describeFlip(dragon.ID, drawn, result)
	}

	result.NextPlayer = e.current
	result.Message = e.message
	return result, nil
}

// Preview resolves a move for the current dragon without applying it
func (e *GameEngine) Preview(direction Direction, step int) (Resolution, error) {
	dragon := e.dragons.BySeat(e.current)
	return Resolve(direction, dragon.Position, step, dragon.ID, e.board)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.init(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// advanceTurn passes play to the next seat and turns every card face down
func (e *GameEngine) advanceTurn() string {
	e.current = (e.current + 1) % len(e.dragons)
	e.turn++
	hideAll(e.deck)
	e.revealed = 0
	return e.turnMessage()
}

func (e *GameEngine) turnMessage() string {
	return fmt.Sprintf("%s [Dragon %d to flip]", e.config.Messages.Turn, e.dragons.BySeat(e.current).ID)
}

func (e *GameEngine) describeFlip(id int, card ChitCard, result *FlipResult) string {
	out := result.Outcome
	switch {
	case result.Mismatch:
		return e.config.Messages.Mismatch + fmt.Sprintf(" [Dragon %d drew %d %s]", id, card.Count, card.Animal)
	case result.Resolution != nil && result.Resolution.Direction == Backward && !result.Resolution.HasDestination:
		return fmt.Sprintf("Dragon %d is safe in its cave and ignores the pirate", id)
	case !out.Moved && result.Resolution != nil && !result.Resolution.HasDestination:
		return e.config.Messages.Stay + fmt.Sprintf(" [Dragon %d stays on tile %d]", id, out.From)
	case out.Bumped:
		return e.config.Messages.Bump + fmt.Sprintf(" [Dragon %d took tile %d, dragon %d moved to tile %d]",
			id, out.To, out.BumpedID, out.BumpedTo)
	case out.Moved:
		return fmt.Sprintf("Dragon %d moved %s from tile %d to tile %d", id, result.Resolution.Direction, out.From, out.To)
	default:
		return fmt.Sprintf("Dragon %d could not move", id)
	}
}

// recordFlip appends a flip to the game's move history
func (e *GameEngine) recordFlip(id int, card ChitCard, direction Direction, mismatch bool, outcome MoveOutcome) {
	entry := MoveHistoryEntry{
		MoveNumber: e.totalMoves + 1,
		Turn:       e.turn,
		Player:     id,
		Card:       card,
		Direction:  direction,
		Mismatch:   mismatch,
		Outcome:    outcome,
		Timestamp:  time.Now().Unix(),
	}
	// Append to cumulative history (never cleared by reset) and increment total
	e.history = append(e.history, entry)
	e.totalMoves++

	e.currentMoves = append(e.currentMoves, entry)
}
