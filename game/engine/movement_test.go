package engine

import (
	"errors"
	"testing"
)

// newTestBoard builds the unshuffled 28-tile ring with caves at 0, 7, 14 and 21
func newTestBoard(t *testing.T) *Board {
	t.Helper()
	board, err := NewBoard(4, 24, 4, nil)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	return board
}

// placeDragon puts a dragon on the board outside of normal play
func placeDragon(board *Board, id, pos int) *Dragon {
	d := &Dragon{ID: id, Seat: id, Position: pos}
	board.SetOccupant(pos, id)
	return d
}

func TestResolveScenarios(t *testing.T) {
	tests := []struct {
		name        string
		direction   Direction
		piece       int
		start       int
		step        int
		wantDest    int
		wantHasDest bool
		wantTurn    bool
		wantGame    bool
	}{
		{"backward plain", Backward, 1, 20, 2, 18, true, false, false},
		{"backward onto own cave", Backward, 1, 8, 2, 7, true, false, false},
		{"backward past foreign cave", Backward, 1, 1, 2, 26, true, false, false},
		{"forward plain", Forward, 3, 22, 2, 24, true, false, false},
		{"forward exact own cave", Forward, 3, 19, 2, 21, true, false, true},
		{"forward overshoots own cave", Forward, 3, 20, 2, 0, false, true, false},
		{"forward onto foreign cave", Forward, 0, 5, 2, 8, true, false, false},
		{"forward past foreign cave", Forward, 0, 6, 3, 10, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newTestBoard(t)
			dragon := placeDragon(board, tt.piece, tt.start)
			roster := Roster{dragon}

			r, err := Resolve(tt.direction, tt.start, tt.step, tt.piece, board)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if r.HasDestination != tt.wantHasDest {
				t.Fatalf("Expected HasDestination %v, got %v", tt.wantHasDest, r.HasDestination)
			}
			if tt.wantHasDest && r.Destination != tt.wantDest {
				t.Errorf("Expected destination %d, got %d", tt.wantDest, r.Destination)
			}
			if r.TurnEnds != tt.wantTurn {
				t.Errorf("Expected TurnEnds %v, got %v", tt.wantTurn, r.TurnEnds)
			}
			if r.GameEnds != tt.wantGame {
				t.Errorf("Expected GameEnds %v, got %v", tt.wantGame, r.GameEnds)
			}

			out, err := r.Execute(board, roster)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			wantPos := tt.start
			if tt.wantHasDest {
				wantPos = tt.wantDest
			}
			if dragon.Position != wantPos {
				t.Errorf("Expected position %d after execute, got %d", wantPos, dragon.Position)
			}
			if out.TurnEnds != tt.wantTurn {
				t.Errorf("Expected outcome TurnEnds %v, got %v", tt.wantTurn, out.TurnEnds)
			}
			if out.GameEnds != tt.wantGame {
				t.Errorf("Expected outcome GameEnds %v, got %v", tt.wantGame, out.GameEnds)
			}
			if err := CheckInvariants(board, roster); err != nil {
				t.Errorf("Invariants broken after execute: %v", err)
			}
		})
	}
}

func TestResolveBackwardFromOwnCave(t *testing.T) {
	for _, players := range []int{2, 3, 4} {
		for _, volcanoes := range []int{8, 24} {
			board, err := NewBoard(players, volcanoes, 4, nil)
			if err != nil {
				t.Fatalf("Failed to create board: %v", err)
			}

			for _, d := range NewRoster(players, board) {
				for step := 1; step <= board.Len()+1; step++ {
					r, err := ResolveBackward(d.Position, step, d.ID, board)
					if err != nil {
						t.Fatalf("players=%d dragon %d step %d: %v", players, d.ID, step, err)
					}
					if r.HasDestination {
						t.Errorf("players=%d volcanoes=%d dragon %d step %d: expected no destination, got %d",
							players, volcanoes, d.ID, step, r.Destination)
					}
					if r.TurnEnds || r.GameEnds {
						t.Errorf("players=%d volcanoes=%d dragon %d step %d: expected no flags, got TurnEnds=%v GameEnds=%v",
							players, volcanoes, d.ID, step, r.TurnEnds, r.GameEnds)
					}
				}
			}
		}
	}
}

func TestResolveInvalidStep(t *testing.T) {
	board := newTestBoard(t)

	for _, step := range []int{0, -1} {
		if _, err := ResolveForward(3, step, 0, board); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("ResolveForward step %d: expected ErrInvalidStep, got %v", step, err)
		}
		if _, err := ResolveBackward(3, step, 0, board); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("ResolveBackward step %d: expected ErrInvalidStep, got %v", step, err)
		}
	}

	if _, err := Resolve(Direction("sideways"), 3, 1, 0, board); err == nil {
		t.Error("Expected error for unknown direction")
	}
}

func TestResolveNeverLandsOnForeignCave(t *testing.T) {
	board := newTestBoard(t)

	for piece := 0; piece < 4; piece++ {
		for start := 0; start < board.Len(); start++ {
			tile := board.TileAt(start)
			if owner, ok := tile.OwnerID(); ok && owner != piece {
				continue
			}
			for step := 1; step <= MaxChitCount; step++ {
				for _, dir := range []Direction{Forward, Backward} {
					r, err := Resolve(dir, start, step, piece, board)
					if err != nil {
						t.Fatalf("Resolve(%s, %d, %d, %d) failed: %v", dir, start, step, piece, err)
					}
					if !r.HasDestination {
						continue
					}
					dest := board.TileAt(r.Destination)
					if owner, ok := dest.OwnerID(); ok && owner != piece {
						t.Errorf("%s from %d step %d for dragon %d lands on cave of %d", dir, start, step, piece, owner)
					}
					if r.GameEnds && r.Destination != board.CaveOf(piece) {
						t.Errorf("GameEnds set away from own cave: %+v", r)
					}
					if r.GameEnds && dir == Backward {
						t.Errorf("Backward resolution ended the game: %+v", r)
					}
				}
			}
		}
	}
}

func TestResolveDoesNotMutateBoard(t *testing.T) {
	board := newTestBoard(t)
	placeDragon(board, 0, 3)
	placeDragon(board, 1, 5)
	before := board.Tiles()

	if _, err := ResolveForward(3, 2, 0, board); err != nil {
		t.Fatalf("ResolveForward failed: %v", err)
	}
	if _, err := ResolveBackward(5, 2, 1, board); err != nil {
		t.Fatalf("ResolveBackward failed: %v", err)
	}

	after := board.Tiles()
	for i := range before {
		b, _ := before[i].OccupantID()
		a, _ := after[i].OccupantID()
		if a != b {
			t.Errorf("Tile %d occupant changed from %d to %d", i, b, a)
		}
	}
}

func TestExecuteUnknownDragon(t *testing.T) {
	board := newTestBoard(t)
	r := Resolution{Direction: Forward, PieceID: 9, Destination: 3, HasDestination: true}

	if _, err := r.Execute(board, Roster{}); !errors.Is(err, ErrUnknownDragon) {
		t.Errorf("Expected ErrUnknownDragon, got %v", err)
	}
}
