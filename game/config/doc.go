// Package config provides configuration management for the Dragon Caves Game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - The number of players (2 to 4)
//   - The number of volcanoes on the ring and how many animals they show
//   - An optional shuffle seed for reproducible boards
//   - Game messages for various events
//
// Available Configurations:
//
//   - classic: four dragons on a 28-tile ring
//   - duo: two dragons starting on opposite caves
//   - trio: three dragons on the classic ring
//   - grand: four dragons on a 36-tile ring
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("duo")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// If no valid file is found the manager falls back to a built-in four-player
// configuration.
package config
