// Package engine provides the core game logic for the Dragon Caves Game.
//
// The engine package implements the game mechanics including:
//   - The ring board of caves and volcanoes
//   - Forward and backward move resolution
//   - Dragon movement with bumping of volcano occupants
//   - The chit card deck and turn rotation
//   - Configuration loading and validation
//
// Core Types:
//
// Board holds the ring of tiles. ResolveForward and ResolveBackward turn a
// drawn card into a Resolution without touching the board, and
// Resolution.Execute applies it through Dragon.Move. The Engine interface,
// implemented by GameEngine, plays whole turns on top of these pieces.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Flip the first chit card for the current dragon
//	result, err := gameEngine.Flip(0)
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each dragon starts in its own cave. On a turn the player flips face-down
// chit cards. A card showing the animal under the dragon moves it forward by
// the card's count; a dragon pirate moves it backward; any other animal ends
// the turn. The first dragon to land exactly on its own cave after a lap wins.
package engine
