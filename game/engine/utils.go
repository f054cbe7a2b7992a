package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// CheckInvariants verifies that the board and the roster agree: every dragon
// id is unique, every dragon sits on its own cave or on a volcano marked with
// its id, and no volcano names a dragon that is elsewhere.
func CheckInvariants(board *Board, roster Roster) error {
	ids := mapset.New[int]()
	for _, d := range roster {
		if ids.Has(d.ID) {
			return fmt.Errorf("dragon id %d appears twice", d.ID)
		}
		ids.Put(d.ID)

		tile := board.TileAt(d.Position)
		if tile.IsCave() {
			if owner, _ := tile.OwnerID(); owner != d.ID {
				return fmt.Errorf("dragon %d sits in cave %d owned by %d", d.ID, d.Position, owner)
			}
			continue
		}
		if occupant, ok := tile.OccupantID(); !ok || occupant != d.ID {
			return fmt.Errorf("dragon %d is on volcano %d but the volcano does not hold it", d.ID, d.Position)
		}
	}

	held := mapset.New[int]()
	for i := 0; i < board.Len(); i++ {
		occupant, ok := board.Occupant(i)
		if !ok {
			continue
		}
		if held.Has(occupant) {
			return fmt.Errorf("dragon %d holds more than one volcano", occupant)
		}
		held.Put(occupant)

		d := roster.ByID(occupant)
		if d == nil {
			return fmt.Errorf("%w: volcano %d holds dragon %d", ErrUnknownDragon, i, occupant)
		}
		if d.Position != i {
			return fmt.Errorf("volcano %d holds dragon %d which is at %d", i, occupant, d.Position)
		}
	}
	return nil
}

// DistanceHome returns how many tiles forward the dragon is from its own cave.
// A dragon sitting in its cave is a full lap away.
func DistanceHome(board *Board, d Dragon) int {
	dist := board.Index(board.CaveOf(d.ID) - d.Position)
	if dist == 0 {
		return board.Len()
	}
	return dist
}

// CountTiles counts the tiles of one kind on the board
func CountTiles(board *Board, kind TileKind) int {
	count := 0
	for i := 0; i < board.Len(); i++ {
		if board.TileAt(i).Kind == kind {
			count++
		}
	}
	return count
}

// CountAnimal counts the volcanoes showing the given animal
func CountAnimal(board *Board, animal AnimalType) int {
	count := 0
	for i := 0; i < board.Len(); i++ {
		t := board.TileAt(i)
		if !t.IsCave() && t.Animal == animal {
			count++
		}
	}
	return count
}
