package engine

import "math/rand"

// NewDeck builds the standard sixteen chit cards: one card of each tile
// animal for counts 1 to 3, plus two dragon pirates with count 1 and two with
// count 2. The deck is shuffled when rng is not nil.
func NewDeck(rng *rand.Rand) []ChitCard {
	deck := make([]ChitCard, 0, 16)
	for count := 1; count <= MaxChitCount; count++ {
		for _, animal := range Animals {
			deck = append(deck, ChitCard{Animal: animal, Count: count})
		}
		if count < MaxChitCount {
			deck = append(deck,
				ChitCard{Animal: DragonPirate, Count: count},
				ChitCard{Animal: DragonPirate, Count: count},
			)
		}
	}
	if rng != nil {
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	}
	return deck
}

// hideAll turns every card face down
func hideAll(deck []ChitCard) {
	for i := range deck {
		deck[i].Revealed = false
	}
}

// allRevealed reports whether every card in the deck is face up
func allRevealed(deck []ChitCard) bool {
	for _, c := range deck {
		if !c.Revealed {
			return false
		}
	}
	return true
}
