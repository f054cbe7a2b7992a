package engine

import "fmt"

// Direction selects which resolver handles a drawn card
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Resolution is the destination computed for one drawn card. It is computed
// without touching the board; Execute applies it.
type Resolution struct {
	Direction      Direction `json:"direction"`
	Start          int       `json:"start"`
	Step           int       `json:"step"`
	PieceID        int       `json:"piece_id"`
	Destination    int       `json:"destination"`
	HasDestination bool      `json:"has_destination"`
	TurnEnds       bool      `json:"turn_ends"`
	GameEnds       bool      `json:"game_ends"`
}

// Resolve dispatches to the forward or backward resolver
func Resolve(direction Direction, start, step, pieceID int, board *Board) (Resolution, error) {
	switch direction {
	case Forward:
		return ResolveForward(start, step, pieceID, board)
	case Backward:
		return ResolveBackward(start, step, pieceID, board)
	default:
		return Resolution{}, fmt.Errorf("unknown direction %q", direction)
	}
}

// ResolveForward computes where a matching card takes the dragon.
//
// A dragon that passes a foreign cave is pushed one tile past its landing
// spot, and one that would land on a foreign cave steps over it. Passing its
// own cave without landing exactly on it leaves the dragon in place and ends
// the turn; landing exactly on it wins the game.
func ResolveForward(start, step, pieceID int, board *Board) (Resolution, error) {
	if step <= 0 {
		return Resolution{}, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}

	start = board.Index(start)
	r := Resolution{Direction: Forward, Start: start, Step: step, PieceID: pieceID}
	raw := board.Index(start + step)
	tile := board.TileAt(raw)

	if !tile.IsCave() {
		prevCave := (raw / board.CaveDistance()) * board.CaveDistance()
		if step > raw-prevCave {
			if !board.CanEnter(prevCave, pieceID) {
				r.Destination = board.Index(raw + 1)
				r.HasDestination = true
				return r, nil
			}
			r.TurnEnds = true
			return r, nil
		}
		r.Destination = raw
		r.HasDestination = true
		return r, nil
	}

	if owner, _ := tile.OwnerID(); owner != pieceID {
		r.Destination = board.Index(raw + 1)
		r.HasDestination = true
		return r, nil
	}

	r.Destination = raw
	r.HasDestination = true
	r.GameEnds = true
	return r, nil
}

// ResolveBackward computes where a dragon pirate card sends the dragon.
//
// A dragon in its own cave never moves. Crossing a foreign cave costs one
// extra tile; crossing its own cave stops the dragon on that cave.
func ResolveBackward(start, step, pieceID int, board *Board) (Resolution, error) {
	if step <= 0 {
		return Resolution{}, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}

	start = board.Index(start)
	r := Resolution{Direction: Backward, Start: start, Step: step, PieceID: pieceID}
	if start == board.CaveOf(pieceID) {
		return r, nil
	}

	raw := board.Index(start - step)
	tile := board.TileAt(raw)
	r.Destination = raw
	r.HasDestination = true

	if !tile.IsCave() {
		prevCave := board.Index((start / board.CaveDistance()) * board.CaveDistance())
		if step >= start-prevCave {
			if !board.CanEnter(prevCave, pieceID) {
				r.Destination = board.Index(raw - 1)
			} else {
				r.Destination = prevCave
			}
		}
		return r, nil
	}

	if !board.CanEnter(raw, pieceID) {
		r.Destination = board.Index(raw - 1)
	}
	return r, nil
}

// Execute applies the resolution to the acting dragon. A resolution without a
// destination leaves the board untouched.
func (r Resolution) Execute(board *Board, roster Roster) (MoveOutcome, error) {
	dragon := roster.ByID(r.PieceID)
	if dragon == nil {
		return MoveOutcome{}, fmt.Errorf("%w: %d", ErrUnknownDragon, r.PieceID)
	}

	if !r.HasDestination {
		return MoveOutcome{From: dragon.Position, To: dragon.Position, TurnEnds: r.TurnEnds}, nil
	}

	out, err := dragon.Move(board, r.Destination, roster)
	if err != nil {
		return out, err
	}
	out.GameEnds = r.GameEnds && out.Moved
	return out, nil
}
