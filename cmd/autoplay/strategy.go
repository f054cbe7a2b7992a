package main

import (
	"github.com/wricardo/dragon-caves-game/game/engine"
)

// Score bands for candidate cards; higher is better.
const (
	scoreWin      = 1000
	scoreUnknown  = 0
	scoreIdle     = -1
	scoreMismatch = -10
	scoreStay     = -20
	scorePirate   = -100
)

// MemoryStrategy picks chits the way a player with a perfect memory would.
// The deck keeps its order for the whole game and cards are only turned face
// down between turns, so every card seen once stays known.
type MemoryStrategy struct {
	gameID string
	known  map[int]engine.ChitCard
}

func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{known: make(map[int]engine.ChitCard)}
}

// Reset forgets every card, for a new game
func (s *MemoryStrategy) Reset() {
	s.gameID = ""
	s.known = make(map[int]engine.ChitCard)
}

// Known returns how many card positions the strategy remembers
func (s *MemoryStrategy) Known() int {
	return len(s.known)
}

// Observe records every face-up card in the state. A new game id means the
// game was reset and the deck reshuffled.
func (s *MemoryStrategy) Observe(state *engine.GameState) {
	if state == nil {
		return
	}
	if state.GameID != s.gameID {
		s.Reset()
		s.gameID = state.GameID
	}
	for i, c := range state.Chits {
		if c.Revealed && c.Animal != "" {
			s.known[i] = c
		}
	}
}

// Remember records the card drawn by a flip
func (s *MemoryStrategy) Remember(index int, card engine.ChitCard) {
	if card.Animal == "" {
		return
	}
	card.Revealed = false
	s.known[index] = card
}

// NextCard returns the face-down card to flip for the current dragon, or -1
// when every card is already face up.
func (s *MemoryStrategy) NextCard(state *engine.GameState) int {
	board, err := engine.RestoreBoard(state.Tiles, state.CaveDistance)
	if err != nil {
		return firstFaceDown(state)
	}

	var dragon *engine.Dragon
	for i := range state.Dragons {
		if state.Dragons[i].Seat == state.CurrentPlayer {
			dragon = &state.Dragons[i]
			break
		}
	}
	if dragon == nil {
		return firstFaceDown(state)
	}

	best, bestScore := -1, 0
	for i, c := range state.Chits {
		if c.Revealed {
			continue
		}
		score := scoreUnknown
		if card, ok := s.known[i]; ok {
			score = scoreCard(card, *dragon, board)
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// scoreCard rates a known card for the dragon's current position
func scoreCard(card engine.ChitCard, dragon engine.Dragon, board *engine.Board) int {
	if card.IsPenalty() {
		r, err := engine.ResolveBackward(dragon.Position, card.Count, dragon.ID, board)
		if err != nil {
			return scoreMismatch
		}
		if !r.HasDestination {
			return scoreIdle
		}
		return scorePirate - board.Index(dragon.Position-r.Destination)
	}

	if board.TileAt(dragon.Position).Animal != card.Animal {
		return scoreMismatch
	}

	r, err := engine.ResolveForward(dragon.Position, card.Count, dragon.ID, board)
	switch {
	case err != nil:
		return scoreMismatch
	case r.GameEnds:
		return scoreWin
	case !r.HasDestination:
		return scoreStay
	}
	return 1 + board.Index(r.Destination-dragon.Position)
}

func firstFaceDown(state *engine.GameState) int {
	for i, c := range state.Chits {
		if !c.Revealed {
			return i
		}
	}
	return -1
}
