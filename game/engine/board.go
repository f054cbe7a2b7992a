package engine

import (
	"fmt"
	"math/rand"
)

// Board is the ring of caves and volcanoes. Every index is taken modulo the
// ring length. A board is built once per game and only its volcano occupancy
// changes afterwards.
type Board struct {
	tiles        []Tile
	caveDistance int
}

// NewBoard lays out a ring for the given player count. Caves sit every
// caveDistance tiles starting at index 0, cave k belongs to dragon k, and the
// volcanoes fill the remaining slots in shuffled order.
func NewBoard(players, volcanoes, animals int, rng *rand.Rand) (*Board, error) {
	if players < MinPlayers || players > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, players)
	}
	if animals < 1 || animals > MaxAnimals {
		return nil, fmt.Errorf("%w: animals must be between 1 and %d, got %d", ErrInvalidBoardSize, MaxAnimals, animals)
	}

	caveCount := max(MinCaves, players)
	if volcanoes < caveCount || volcanoes%caveCount != 0 {
		return nil, fmt.Errorf("%w: volcanoes (%d) must be a positive multiple of the cave count (%d)",
			ErrInvalidBoardSize, volcanoes, caveCount)
	}
	if volcanoes%animals != 0 {
		return nil, fmt.Errorf("%w: volcanoes (%d) must divide evenly among %d animals",
			ErrInvalidBoardSize, volcanoes, animals)
	}
	if volcanoes <= players {
		return nil, fmt.Errorf("%w: %d dragons need more than %d volcanoes", ErrInvalidBoardSize, players, volcanoes)
	}

	caveDistance := volcanoes/caveCount + 1
	if caveDistance < 2 {
		return nil, fmt.Errorf("%w: cave stride %d", ErrInvalidBoardSize, caveDistance)
	}

	pool := make([]Tile, 0, volcanoes)
	for _, animal := range Animals[:animals] {
		for i := 0; i < volcanoes/animals; i++ {
			pool = append(pool, NewVolcanoTile(animal))
		}
	}
	if rng != nil {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	length := volcanoes + caveCount
	tiles := make([]Tile, length)
	next := 0
	for i := range tiles {
		if i%caveDistance == 0 {
			owner := i / caveDistance
			tiles[i] = NewCaveTile(owner, Animals[owner%len(Animals)])
			continue
		}
		tiles[i] = pool[next]
		next++
	}

	return &Board{tiles: tiles, caveDistance: caveDistance}, nil
}

// RestoreBoard rebuilds a board from a persisted tile list
func RestoreBoard(tiles []Tile, caveDistance int) (*Board, error) {
	if len(tiles) == 0 || caveDistance < 2 || len(tiles)%caveDistance != 0 {
		return nil, fmt.Errorf("%w: %d tiles with cave distance %d", ErrInvalidBoardSize, len(tiles), caveDistance)
	}
	restored := make([]Tile, len(tiles))
	for i, t := range tiles {
		if (i%caveDistance == 0) != t.IsCave() {
			return nil, fmt.Errorf("%w: tile %d is a %s", ErrInvalidBoardSize, i, t.Kind)
		}
		if t.IsCave() && t.Owner == nil {
			return nil, fmt.Errorf("%w: cave %d has no owner", ErrInvalidBoardSize, i)
		}
		restored[i] = cloneTile(t)
	}
	return &Board{tiles: restored, caveDistance: caveDistance}, nil
}

// Len returns the number of tiles on the ring
func (b *Board) Len() int {
	return len(b.tiles)
}

// CaveDistance returns the fixed stride between consecutive caves
func (b *Board) CaveDistance() int {
	return b.caveDistance
}

// Index wraps any integer onto the ring
func (b *Board) Index(i int) int {
	n := len(b.tiles)
	return ((i % n) + n) % n
}

// TileAt returns a copy of the tile at index i (modulo the ring length)
func (b *Board) TileAt(i int) Tile {
	return cloneTile(b.tiles[b.Index(i)])
}

// CaveOf returns the index of the cave owned by the given dragon id
func (b *Board) CaveOf(owner int) int {
	return b.Index(owner * b.caveDistance)
}

// CanEnter reports whether the dragon may rest on tile i: a volcano must be
// empty and a cave must be its own.
func (b *Board) CanEnter(i, pieceID int) bool {
	t := &b.tiles[b.Index(i)]
	if t.IsCave() {
		owner, ok := t.OwnerID()
		return ok && owner == pieceID
	}
	return t.Occupant == nil
}

// Occupant returns the dragon on volcano i, if any
func (b *Board) Occupant(i int) (int, bool) {
	return b.tiles[b.Index(i)].OccupantID()
}

// SetOccupant marks volcano i as held by the dragon. Caves are left untouched.
func (b *Board) SetOccupant(i, pieceID int) {
	t := &b.tiles[b.Index(i)]
	if t.IsCave() {
		return
	}
	id := pieceID
	t.Occupant = &id
}

// ClearOccupant empties volcano i. Caves are left untouched.
func (b *Board) ClearOccupant(i int) {
	t := &b.tiles[b.Index(i)]
	if t.IsCave() {
		return
	}
	t.Occupant = nil
}

// Tiles returns a deep copy of the ring
func (b *Board) Tiles() []Tile {
	out := make([]Tile, len(b.tiles))
	for i, t := range b.tiles {
		out[i] = cloneTile(t)
	}
	return out
}

// freeVolcanoBehind scans backward from start, one tile at a time, for the
// first volcano that is empty or held by vacating. Caves are skipped.
func (b *Board) freeVolcanoBehind(start, vacating int) (int, error) {
	n := len(b.tiles)
	for k := 1; k < n; k++ {
		i := b.Index(start - k)
		t := b.tiles[i]
		if t.IsCave() {
			continue
		}
		if t.Occupant == nil || i == vacating {
			return i, nil
		}
	}
	return 0, ErrNoFreeVolcano
}

func cloneTile(t Tile) Tile {
	out := Tile{Kind: t.Kind, Animal: t.Animal}
	if t.Owner != nil {
		owner := *t.Owner
		out.Owner = &owner
	}
	if t.Occupant != nil {
		occupant := *t.Occupant
		out.Occupant = &occupant
	}
	return out
}
