package main

import (
	"testing"

	"github.com/wricardo/dragon-caves-game/game/engine"
)

// newGame returns a seeded four-dragon game and its public state
func newGame(t *testing.T) (*engine.GameEngine, *engine.GameState) {
	t.Helper()
	config := engine.DefaultGameConfig()
	config.Seed = 11
	eng, err := engine.NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng, eng.GetState().Public()
}

func TestMemoryStrategy_NextCard(t *testing.T) {
	eng, state := newGame(t)
	caveAnimal := eng.Board().TileAt(0).Animal
	otherAnimal := engine.Spider
	if caveAnimal == otherAnimal {
		otherAnimal = engine.Bat
	}

	tests := []struct {
		name     string
		known    map[int]engine.ChitCard
		revealed []int
		want     int
	}{
		{
			name: "nothing known flips the first card",
			want: 0,
		},
		{
			name:  "known forward card wins over unknown",
			known: map[int]engine.ChitCard{5: {Animal: caveAnimal, Count: 2}},
			want:  5,
		},
		{
			name: "longer forward move preferred",
			known: map[int]engine.ChitCard{
				3: {Animal: caveAnimal, Count: 1},
				9: {Animal: caveAnimal, Count: 3},
			},
			want: 9,
		},
		{
			name:  "known mismatch skipped",
			known: map[int]engine.ChitCard{0: {Animal: otherAnimal, Count: 1}},
			want:  1,
		},
		{
			name:     "face-up cards skipped",
			revealed: []int{0, 1},
			want:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStrategy()
			s.Observe(state)
			for i, c := range tt.known {
				s.Remember(i, c)
			}

			st := *state
			st.Chits = append([]engine.ChitCard(nil), state.Chits...)
			for _, i := range tt.revealed {
				st.Chits[i] = engine.ChitCard{Animal: otherAnimal, Count: 1, Revealed: true}
			}

			if got := s.NextCard(&st); got != tt.want {
				t.Errorf("Expected card %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMemoryStrategy_AllFaceUp(t *testing.T) {
	_, state := newGame(t)
	for i := range state.Chits {
		state.Chits[i] = engine.ChitCard{Animal: engine.Bat, Count: 1, Revealed: true}
	}

	if got := NewMemoryStrategy().NextCard(state); got != -1 {
		t.Errorf("Expected -1 when every card is face up, got %d", got)
	}
}

func TestMemoryStrategy_Observe(t *testing.T) {
	_, state := newGame(t)
	s := NewMemoryStrategy()

	state.Chits[4] = engine.ChitCard{Animal: engine.Spider, Count: 3, Revealed: true}
	s.Observe(state)
	if s.Known() != 1 {
		t.Fatalf("Expected 1 known card, got %d", s.Known())
	}

	// Hidden cards do not erase memory
	state.Chits[4] = engine.ChitCard{}
	s.Observe(state)
	if s.Known() != 1 {
		t.Errorf("Expected memory to survive cards turning face down, got %d", s.Known())
	}

	// A new game id means a new deck
	state.GameID = "another-game"
	s.Observe(state)
	if s.Known() != 0 {
		t.Errorf("Expected memory to be cleared for a new game, got %d", s.Known())
	}
}

func TestScoreCard(t *testing.T) {
	eng, _ := newGame(t)
	board := eng.Board()
	n := board.Len()

	home := engine.Dragon{ID: 0, Seat: 0, Position: 0}
	nearHome := engine.Dragon{ID: 0, Seat: 0, Position: n - 2}
	onVolcano := engine.Dragon{ID: 0, Seat: 0, Position: 3}

	tests := []struct {
		name   string
		card   engine.ChitCard
		dragon engine.Dragon
		want   func(int) bool
	}{
		{
			name:   "exact landing on own cave",
			card:   engine.ChitCard{Animal: board.TileAt(n - 2).Animal, Count: 2},
			dragon: nearHome,
			want:   func(s int) bool { return s == scoreWin },
		},
		{
			name:   "overshooting own cave stays",
			card:   engine.ChitCard{Animal: board.TileAt(n - 2).Animal, Count: 3},
			dragon: nearHome,
			want:   func(s int) bool { return s == scoreStay },
		},
		{
			name:   "pirate in own cave is idle",
			card:   engine.ChitCard{Animal: engine.DragonPirate, Count: 2},
			dragon: home,
			want:   func(s int) bool { return s == scoreIdle },
		},
		{
			name:   "pirate on a volcano costs tiles",
			card:   engine.ChitCard{Animal: engine.DragonPirate, Count: 1},
			dragon: onVolcano,
			want:   func(s int) bool { return s == scorePirate-1 },
		},
		{
			name:   "forward move scores its distance",
			card:   engine.ChitCard{Animal: board.TileAt(3).Animal, Count: 2},
			dragon: onVolcano,
			want:   func(s int) bool { return s == 3 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreCard(tt.card, tt.dragon, board); !tt.want(got) {
				t.Errorf("Unexpected score %d", got)
			}
		})
	}
}
