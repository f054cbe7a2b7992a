// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory. It checks:
//   - JSON structure, unknown keys, and required fields
//   - Player count and animal count ranges
//   - Ring geometry: volcanoes fill every cave gap evenly and leave a cave
//     distance larger than the biggest chit
//   - Required messages and the %d placeholder in the victory message
//   - Setup: every dragon starts on its own cave on a consistent board
//   - Names are unique across the directory
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/zyedidia/generic/mapset"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
// Unlike the engine's own check it reports every problem it finds instead of
// stopping at the first one.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	result.Name = config.Name

	// Required fields
	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	// Players and animals
	if config.Players < engine.MinPlayers || config.Players > engine.MaxPlayers {
		result.fail("players must be between %d and %d, got %d", engine.MinPlayers, engine.MaxPlayers, config.Players)
	}
	if config.Animals < 0 || config.Animals > engine.MaxAnimals {
		result.fail("animals must be between 1 and %d, got %d", engine.MaxAnimals, config.Animals)
	}
	if config.Seed < 0 {
		result.fail("seed must not be negative, got %d", config.Seed)
	}

	// Ring geometry
	caveCount := config.CaveCount()
	if config.Volcanoes <= 0 || config.Volcanoes%caveCount != 0 {
		result.fail("volcanoes must be a positive multiple of %d caves, got %d", caveCount, config.Volcanoes)
	} else {
		if cd := config.Volcanoes/caveCount + 1; cd <= engine.MaxChitCount {
			result.fail("cave distance %d must exceed the largest chit count %d", cd, engine.MaxChitCount)
		}
		if config.Volcanoes <= config.Players {
			result.fail("volcanoes (%d) must outnumber players (%d)", config.Volcanoes, config.Players)
		}
	}
	if animals := config.AnimalCount(); animals > 0 && config.Volcanoes%animals != 0 {
		result.fail("volcanoes (%d) must divide evenly among %d animals", config.Volcanoes, animals)
	}

	// Messages
	if config.Messages.Welcome == "" {
		result.fail("Missing required message: welcome")
	}
	if config.Messages.Victory == "" {
		result.fail("Missing required message: victory")
	} else if !strings.Contains(config.Messages.Victory, "%d") {
		result.fail("victory message must contain %%d for the winning dragon")
	}

	// Cross-check with the engine and lay out the starting position
	if result.Valid {
		if err := engine.ValidateGameConfig(&config); err != nil {
			result.fail("%v", err)
		}
	}
	if result.Valid {
		setup := validateSetup(&config)
		if !setup.Valid {
			result.fail("%s", strings.Join(setup.Errors, "; "))
		} else {
			result.Errors = append(result.Errors, setup.Errors...)
		}
	}

	// Add informational data
	if result.Valid {
		cd := config.Volcanoes/caveCount + 1
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Players: %d", config.Players))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Ring: %d tiles, %d caves, cave every %d", config.Volcanoes+caveCount, caveCount, cd))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Animals: %d", config.AnimalCount()))
		if config.Seed != 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Seed: %d", config.Seed))
		}
	}

	return result
}

// validateSetup builds the starting board and roster without a shuffle and
// checks that every dragon sits on its own cave.
func validateSetup(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	board, err := engine.NewBoard(config.Players, config.Volcanoes, config.AnimalCount(), nil)
	if err != nil {
		result.fail("Cannot build board: %v", err)
		return result
	}

	roster := engine.NewRoster(config.Players, board)
	if err := engine.CheckInvariants(board, roster); err != nil {
		result.fail("Setup failure: %v", err)
		return result
	}

	for _, d := range roster {
		if owner, ok := board.TileAt(d.Position).OwnerID(); !ok || owner != d.ID {
			result.fail("Setup failure: dragon %d does not start in its cave", d.ID)
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Setup: %d dragons in their caves", len(roster)))
	}
	return result
}

// validateDirectory validates every *.json file in dir and flags configs
// that share a name, since the name identifies a config to players.
func validateDirectory(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding config files: %w", err)
	}

	names := mapset.New[string]()
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		result := validateConfig(file)
		if result.Name != "" {
			key := strings.ToLower(result.Name)
			if names.Has(key) {
				result.fail("Duplicate config name: %s", result.Name)
			}
			names.Put(key)
		}
		results = append(results, result)
	}
	return results, nil
}

// main scans ../configs (or the directory given as the first argument) for
// *.json files and validates each one, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDirectory(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
