package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate players and board size
	if config.Players < MinPlayers || config.Players > MaxPlayers {
		return fmt.Errorf("config validation: players must be between %d and %d, got %d", MinPlayers, MaxPlayers, config.Players)
	}
	if config.Animals < 0 || config.Animals > MaxAnimals {
		return fmt.Errorf("config validation: animals must be between 1 and %d, got %d", MaxAnimals, config.Animals)
	}

	caveCount := config.CaveCount()
	if config.Volcanoes <= 0 || config.Volcanoes%caveCount != 0 {
		return fmt.Errorf("config validation: volcanoes must be a positive multiple of the cave count (%d), got %d",
			caveCount, config.Volcanoes)
	}
	if config.Volcanoes%config.AnimalCount() != 0 {
		return fmt.Errorf("config validation: volcanoes (%d) must divide evenly among %d animals",
			config.Volcanoes, config.AnimalCount())
	}
	if config.Volcanoes <= config.Players {
		return fmt.Errorf("config validation: volcanoes (%d) must outnumber players (%d)", config.Volcanoes, config.Players)
	}

	// A dragon must never jump a whole cave gap with one card
	if cd := config.Volcanoes/caveCount + 1; cd <= MaxChitCount {
		return fmt.Errorf("config validation: cave distance %d must exceed the largest chit count %d; use at least %d volcanoes",
			cd, MaxChitCount, caveCount*MaxChitCount)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the winning dragon")
	}

	applyDefaultMessages(&config.Messages)
	return nil
}

// applyDefaultMessages fills the optional event messages
func applyDefaultMessages(m *GameMessages) {
	defaults := DefaultGameConfig().Messages
	if m.Turn == "" {
		m.Turn = defaults.Turn
	}
	if m.Mismatch == "" {
		m.Mismatch = defaults.Mismatch
	}
	if m.Stay == "" {
		m.Stay = defaults.Stay
	}
	if m.Bump == "" {
		m.Bump = defaults.Bump
	}
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the classic four-player setup
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Four dragons race around a ring of 24 volcanoes back to their caves",
		Players:     4,
		Volcanoes:   24,
		Messages: GameMessages{
			Welcome:  "Welcome to the caves! Flip chit cards to lead your dragon home.",
			Turn:     "Flip a chit card.",
			Mismatch: "Wrong animal! Your turn is over.",
			Stay:     "You overshot your cave and stay where you are.",
			Bump:     "Volcano taken! The dragon there is pushed back.",
			Victory:  "Dragon %d is back in its cave and wins!",
		},
	}
}
