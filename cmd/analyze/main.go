// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. It summarizes the ring geometry,
// cave positions, the animal mix on the volcanoes, and highlights layouts
// where chit cards can never match or long runs of one animal stall dragons.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/dragon-caves-game/game/engine"
)

// sampleSeed lays out boards whose config leaves the seed to the clock
const sampleSeed = 1

// BoardAnalysis is the geometry and balance summary of one configuration.
type BoardAnalysis struct {
	Name         string
	Players      int
	Caves        int
	Length       int
	CaveDistance int
	Sampled      bool
	CaveIndexes  []int
	Starts       map[int]int // dragon id -> start tile
	AnimalCounts map[engine.AnimalType]int
	DeadChits    int // forward chits whose animal is on no volcano
	LongestRun   int
	RunAnimal    engine.AnimalType
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, configFile := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(configFile))
		analyzeConfig(configFile)
	}
}

func analyzeConfig(path string) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	analysis, err := analyzeBoard(config)
	if err != nil {
		fmt.Printf("Error building board: %v\n", err)
		return
	}
	printAnalysis(analysis)
}

// analyzeBoard lays out the board the way a new game would and measures it.
func analyzeBoard(config *engine.GameConfig) (*BoardAnalysis, error) {
	sampled := config.Seed == 0
	layout := *config
	if sampled {
		layout.Seed = sampleSeed
	}

	eng, err := engine.NewEngine(&layout)
	if err != nil {
		return nil, err
	}
	board := eng.Board()

	analysis := &BoardAnalysis{
		Name:         config.Name,
		Players:      config.Players,
		Caves:        engine.CountTiles(board, engine.Cave),
		Length:       board.Len(),
		CaveDistance: board.CaveDistance(),
		Sampled:      sampled,
		Starts:       make(map[int]int),
		AnimalCounts: make(map[engine.AnimalType]int),
	}

	for i := 0; i < board.Len(); i += board.CaveDistance() {
		analysis.CaveIndexes = append(analysis.CaveIndexes, i)
	}
	for _, d := range eng.GetDragons() {
		analysis.Starts[d.ID] = d.Position
	}
	for _, animal := range engine.Animals {
		analysis.AnimalCounts[animal] = engine.CountAnimal(board, animal)
	}

	for _, card := range engine.NewDeck(nil) {
		if !card.IsPenalty() && analysis.AnimalCounts[card.Animal] == 0 {
			analysis.DeadChits++
		}
	}

	analysis.LongestRun, analysis.RunAnimal = longestRun(board)
	return analysis, nil
}

// longestRun finds the longest stretch of consecutive volcanoes showing the
// same animal. Caves break a run.
func longestRun(board *engine.Board) (int, engine.AnimalType) {
	best, run := 0, 0
	var bestAnimal, current engine.AnimalType
	for i := 0; i < board.Len(); i++ {
		tile := board.TileAt(i)
		if tile.IsCave() {
			run = 0
			continue
		}
		if run > 0 && tile.Animal == current {
			run++
		} else {
			current, run = tile.Animal, 1
		}
		if run > best {
			best, bestAnimal = run, current
		}
	}
	return best, bestAnimal
}

func printAnalysis(a *BoardAnalysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Players: %d\n", a.Players)
	fmt.Printf("Ring: %d tiles, %d caves, cave every %d tiles\n", a.Length, a.Caves, a.CaveDistance)
	fmt.Printf("Cave indexes: %v\n", a.CaveIndexes)

	ids := make([]int, 0, len(a.Starts))
	for id := range a.Starts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Printf("Dragon %d starts on tile %d\n", id, a.Starts[id])
	}

	if a.Sampled {
		fmt.Printf("Layout: shuffled per game, sampled with seed %d\n", sampleSeed)
	}
	for _, animal := range engine.Animals {
		fmt.Printf("  %-12s %d volcanoes\n", animal, a.AnimalCounts[animal])
	}

	if a.DeadChits > 0 {
		fmt.Printf("⚠️  WARNING: %d forward chits show an animal that is on no volcano and only match on a cave\n", a.DeadChits)
	} else {
		fmt.Printf("✅ Every forward chit can match a volcano\n")
	}

	if a.LongestRun > engine.MaxChitCount {
		fmt.Printf("⚠️  WARNING: %d %s volcanoes in a row; a dragon on this stretch only moves on %s chits\n",
			a.LongestRun, a.RunAnimal, a.RunAnimal)
	} else {
		fmt.Printf("✅ Longest same-animal run is %d\n", a.LongestRun)
	}
}
