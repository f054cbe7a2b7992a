// Package service provides the business logic layer for the Dragon Caves Game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Chit card flips, move previews and game events
//   - Session lifecycle management
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session maintains its own game engine
// instance with independent state.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "duo")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Flip the third chit card for the dragon whose turn it is
//	result, err := gameService.Flip(ctx, sessionInfo.ID, 2, false)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// game state. Multiple sessions can run concurrently with different
// configurations. Sessions track creation time, last access time, and move
// history for analytics and debugging.
//
// States returned by the service hide the face of every unrevealed chit card.
// The full state, deck included, only goes to session persistence.
package service
