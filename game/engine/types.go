package engine

// AnimalType is the animal printed on a tile or a chit card
type AnimalType string

const (
	Bat          AnimalType = "bat"
	BabyDragon   AnimalType = "baby_dragon"
	Salamander   AnimalType = "salamander"
	Spider       AnimalType = "spider"
	DragonPirate AnimalType = "dragon_pirate" // Penalty card, never printed on a tile

	// Validation constants
	MinPlayers   = 2
	MaxPlayers   = 4
	MinCaves     = 4
	MaxAnimals   = 4
	MaxChitCount = 3
	NoWinner     = -1
)

// Animals lists the tile animals in cave order: cave k shows Animals[k%len(Animals)]
var Animals = []AnimalType{Bat, BabyDragon, Salamander, Spider}

// TileKind distinguishes the two tile variants
type TileKind string

const (
	Cave    TileKind = "cave"
	Volcano TileKind = "volcano"
)

// Tile is a single slot on the ring. Owner is set only on caves and Occupant
// only on volcanoes.
type Tile struct {
	Kind     TileKind   `json:"kind"`
	Animal   AnimalType `json:"animal"`
	Owner    *int       `json:"owner,omitempty"`
	Occupant *int       `json:"occupant,omitempty"`
}

// NewCaveTile creates a cave owned by the given dragon id
func NewCaveTile(owner int, animal AnimalType) Tile {
	return Tile{Kind: Cave, Animal: animal, Owner: &owner}
}

// NewVolcanoTile creates an unoccupied volcano
func NewVolcanoTile(animal AnimalType) Tile {
	return Tile{Kind: Volcano, Animal: animal}
}

// IsCave reports whether the tile is a cave
func (t Tile) IsCave() bool {
	return t.Kind == Cave
}

// OwnerID returns the cave owner
func (t Tile) OwnerID() (int, bool) {
	if t.Kind != Cave || t.Owner == nil {
		return 0, false
	}
	return *t.Owner, true
}

// OccupantID returns the dragon sitting on a volcano
func (t Tile) OccupantID() (int, bool) {
	if t.Kind != Volcano || t.Occupant == nil {
		return 0, false
	}
	return *t.Occupant, true
}

// ChitCard is a face-down card flipped by the current player
type ChitCard struct {
	Animal   AnimalType `json:"animal,omitempty"`
	Count    int        `json:"count,omitempty"`
	Revealed bool       `json:"revealed"`
}

// IsPenalty reports whether the card moves the dragon backward
func (c ChitCard) IsPenalty() bool {
	return c.Animal == DragonPirate
}

// GameMessages holds the text shown for game events
type GameMessages struct {
	Welcome  string `json:"welcome"`
	Turn     string `json:"turn"`
	Mismatch string `json:"mismatch"`
	Stay     string `json:"stay"`
	Bump     string `json:"bump"`
	Victory  string `json:"victory"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Players     int          `json:"players"`
	Volcanoes   int          `json:"volcanoes"`
	Animals     int          `json:"animals,omitempty"` // 0 means all four animals
	Seed        int64        `json:"seed,omitempty"`    // 0 means seeded from the clock
	Messages    GameMessages `json:"messages"`
}

// AnimalCount returns the number of distinct volcano animals
func (c *GameConfig) AnimalCount() int {
	if c.Animals == 0 {
		return MaxAnimals
	}
	return c.Animals
}

// CaveCount returns the number of caves on the ring
func (c *GameConfig) CaveCount() int {
	return max(MinCaves, c.Players)
}

// Dragon is a player's piece. ID is the owner id of its cave; Seat is its
// place in turn order.
type Dragon struct {
	ID       int `json:"id"`
	Seat     int `json:"seat"`
	Position int `json:"position"`
}

// MoveOutcome describes what a resolved move did to the board
type MoveOutcome struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Moved    bool `json:"moved"`
	TurnEnds bool `json:"turn_ends"`
	GameEnds bool `json:"game_ends"`
	Bumped   bool `json:"bumped,omitempty"`
	BumpedID int  `json:"bumped_id,omitempty"`
	BumpedTo int  `json:"bumped_to,omitempty"`
}

// GameState represents the complete game state
type GameState struct {
	GameID        string             `json:"game_id"`
	ConfigName    string             `json:"config_name"`
	Tiles         []Tile             `json:"tiles"`
	BoardLength   int                `json:"board_length"`
	CaveDistance  int                `json:"cave_distance"`
	Dragons       []Dragon           `json:"dragons"`
	Chits         []ChitCard         `json:"chits"`
	CurrentPlayer int                `json:"current_player"` // Seat of the dragon to flip
	CardsRevealed int                `json:"cards_revealed"`
	TurnNumber    int                `json:"turn_number"`
	GameOver      bool               `json:"game_over"`
	Winner        int                `json:"winner"`
	Message       string             `json:"message"`
	MoveHistory   []MoveHistoryEntry `json:"move_history"`
	TotalMoves    int                `json:"total_moves"`

	// CurrentMoves tracks only the flips since the last reset. MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// Public returns a copy of the state with face-down chit cards hidden
func (gs *GameState) Public() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Chits = make([]ChitCard, len(gs.Chits))
	for i, c := range gs.Chits {
		if c.Revealed {
			out.Chits[i] = c
		}
	}
	return &out
}

// MoveHistoryEntry represents a single flip in the game history
type MoveHistoryEntry struct {
	MoveNumber int         `json:"move_number"`
	Turn       int         `json:"turn"`
	Player     int         `json:"player"`
	Card       ChitCard    `json:"card"`
	Direction  Direction   `json:"direction,omitempty"`
	Mismatch   bool        `json:"mismatch,omitempty"`
	Outcome    MoveOutcome `json:"outcome"`
	Timestamp  int64       `json:"timestamp"`
}
