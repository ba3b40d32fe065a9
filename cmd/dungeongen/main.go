// dungeongen generates a dungeon and prints it as ASCII.
//
// Usage:
//
//	go run ./cmd/dungeongen -rooms 8 -seed 42
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
)

func main() {
	rooms := flag.Int("rooms", 5, "Number of rooms to grow, start room included")
	seed := flag.Int64("seed", 0, "Generation seed (default: random based on current time)")
	gated := flag.Bool("gated", true, "Attach a gated goal room")
	templates := flag.String("templates", "", "Path to a room template YAML file (default: built-in templates)")
	retries := flag.Int("retries", dungeon.DefaultMaxRetries, "Whole-dungeon attempts before giving up")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	catalog, err := loadCatalog(*templates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading templates: %v\n", err)
		os.Exit(1)
	}

	cfg := dungeon.GeneratorConfig{Rooms: *rooms, MaxRetries: *retries, GatedGoal: *gated}
	result, err := dungeon.NewGenerator(catalog, cfg, rand.New(rand.NewSource(*seed))).Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating dungeon (seed %d): %v\n", *seed, err)
		os.Exit(1)
	}

	var output strings.Builder
	renderDungeon(&output, result, *seed)
	if *showLegend {
		output.WriteString(getLegend())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

func loadCatalog(path string) (*dungeon.Catalog, error) {
	if path == "" {
		return dungeon.DefaultCatalog()
	}
	return dungeon.LoadCatalog(path)
}

func renderDungeon(output *strings.Builder, r *dungeon.Result, seed int64) {
	fmt.Fprintf(output, "Dungeon (Seed: %d, Rooms: %d)\n", seed, len(r.Rooms))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, line := range r.Map.Lines() {
		output.WriteString(line)
		output.WriteString("\n")
	}
	output.WriteString("\n")

	fmt.Fprintf(output, "Size:        %d x %d tiles\n", r.Map.Rows(), r.Map.Cols())
	fmt.Fprintf(output, "Start:       %v (%.0f, %.0f)\n", r.StartTile, r.StartX, r.StartY)
	fmt.Fprintf(output, "Goal:        %v in room %d\n", r.GoalTile, r.GoalRoom)
	if r.Gated {
		fmt.Fprintf(output, "Gate:        %s door at %v\n", r.GateDirection, r.GateDoor)
	} else {
		output.WriteString("Gate:        none\n")
	}
	fmt.Fprintf(output, "Attempts:    %d\n", r.Attempts)
	fmt.Fprintf(output, "Sealed:      %d doors\n", r.SealedDoors)
	fmt.Fprintf(output, "Fingerprint: %s\n", r.Map.Fingerprint())
	output.WriteString("\n")

	output.WriteString("Rooms:\n")
	for _, room := range r.Rooms {
		fmt.Fprintf(output, "  %2d  %-14s at %v (%dx%d)\n",
			room.ID, room.Template.Name, room.Origin, room.Template.Height(), room.Template.Width())
	}
}

func getLegend() string {
	var b strings.Builder
	b.WriteString("\nLegend:\n")
	for _, t := range dungeon.AllTiles() {
		if t == dungeon.TileNothing {
			continue
		}
		fmt.Fprintf(&b, "  [%c] %s\n", t.Rune(), t)
	}
	return b.String()
}
