package engine

import "fmt"

// Roster is the set of dragons in one game, in seat order
type Roster []*Dragon

// ByID returns the dragon with the given id, or nil
func (r Roster) ByID(id int) *Dragon {
	for _, d := range r {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// BySeat returns the dragon sitting at the given turn-order seat, or nil
func (r Roster) BySeat(seat int) *Dragon {
	for _, d := range r {
		if d.Seat == seat {
			return d
		}
	}
	return nil
}

// NewRoster seats one dragon per player on its own cave. With two players the
// second dragon takes id 2 so the pair starts on opposite caves.
func NewRoster(players int, board *Board) Roster {
	roster := make(Roster, players)
	for seat := 0; seat < players; seat++ {
		roster[seat] = &Dragon{ID: seat, Seat: seat, Position: board.CaveOf(seat)}
	}
	if players == 2 {
		remapTwoPlayer(roster, board)
	}
	return roster
}

// matchSeating checks that r seats the same dragons as want: every seat taken
// once and every seat held by the dragon id want puts there.
func (r Roster) matchSeating(want Roster) error {
	if len(r) != len(want) {
		return fmt.Errorf("expected %d dragons, got %d", len(want), len(r))
	}
	seen := make([]bool, len(want))
	for _, d := range r {
		if d.Seat < 0 || d.Seat >= len(want) {
			return fmt.Errorf("dragon %d has seat %d outside 0..%d", d.ID, d.Seat, len(want)-1)
		}
		if seen[d.Seat] {
			return fmt.Errorf("seat %d is taken twice", d.Seat)
		}
		seen[d.Seat] = true
		if expected := want.BySeat(d.Seat).ID; d.ID != expected {
			return fmt.Errorf("seat %d holds dragon %d, expected dragon %d", d.Seat, d.ID, expected)
		}
	}
	return nil
}

// remapTwoPlayer is a one-time setup step for the 2-player layout
func remapTwoPlayer(roster Roster, board *Board) {
	roster[1].ID = 2
	roster[1].Position = board.CaveOf(2)
}

// Move places the dragon on dest. An empty volcano or the dragon's own cave is
// simply entered. A volcano held by another dragon is taken and the previous
// occupant is bumped to the nearest free volcano behind dest. Any other tile
// leaves the dragon where it is and ends the turn.
func (d *Dragon) Move(board *Board, dest int, roster Roster) (MoveOutcome, error) {
	dest = board.Index(dest)
	out := MoveOutcome{From: d.Position, To: d.Position}

	if board.CanEnter(dest, d.ID) {
		board.ClearOccupant(d.Position)
		board.SetOccupant(dest, d.ID)
		d.Position = dest
		out.To = dest
		out.Moved = true
		return out, nil
	}

	occupantID, occupied := board.Occupant(dest)
	if !occupied {
		out.TurnEnds = true
		return out, nil
	}
	if occupantID == d.ID {
		return out, nil
	}

	occupant := roster.ByID(occupantID)
	if occupant == nil {
		return out, fmt.Errorf("%w: volcano %d held by dragon %d", ErrUnknownDragon, dest, occupantID)
	}
	landing, err := board.freeVolcanoBehind(dest, d.Position)
	if err != nil {
		return out, fmt.Errorf("bump dragon %d from %d: %w", occupantID, dest, err)
	}

	board.ClearOccupant(d.Position)
	board.SetOccupant(dest, d.ID)
	d.Position = dest

	board.SetOccupant(landing, occupantID)
	occupant.Position = landing

	out.To = dest
	out.Moved = true
	out.Bumped = true
	out.BumpedID = occupantID
	out.BumpedTo = landing
	return out, nil
}
