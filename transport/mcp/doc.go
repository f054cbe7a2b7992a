// Package mcp exposes the Dragon Caves Game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON answer is rendered as plain text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: ring layout, dragons with their distance home, chits
//   - flip_card: flip one face-down chit for the current dragon
//   - preview_move: resolve a forward or backward step without flipping
//   - reset_game, move_history
//   - list_configs, game_instructions
//   - describe_tile: owner, occupant and animal of one ring tile
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", logger)
//	server.ServeStdio(client.GetMCPServer())
package mcp
