// Command analyze prints quick, human-readable facts about the game
// configuration files in a configs directory: board geometry, starting and
// escape cells per player, lane crossings and the uncontested number of
// actions each player needs to win.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-escape/game/engine"
)

// Analysis summarises one configuration
type Analysis struct {
	File                string
	Name                string
	GridSize            int
	PlacementAvoidsSkip bool
	Players             []PlayerAnalysis
	CrossingCells       int
	LaneLength          int
}

// PlayerAnalysis describes one seat's geometry
type PlayerAnalysis struct {
	ID            engine.PlayerID
	Name          string
	StartingCells []engine.Cell
	EscapeCells   []engine.Cell
	// Forward moves needed to walk every token off the board
	StepsToEscape int
	// Tokens that must wait for a free starting cell at the opening
	Waiting int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Summarise Grid Escape configuration files",
		ArgsUsage: "[config.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory scanned when no files are given"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
				if err != nil {
					return err
				}
				sort.Strings(files)
			}
			return run(os.Stdout, files)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(w io.Writer, files []string) error {
	failed := 0
	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		analysis, err := analyzeConfig(file)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			failed++
			continue
		}
		printAnalysis(w, analysis)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d configurations could not be analyzed", failed, len(files))
	}
	return nil
}

func analyzeConfig(path string) (*Analysis, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}

	state, err := engine.NewGameState(config.GridSize, config.Rules(), config.PlayerInfo())
	if err != nil {
		return nil, err
	}
	board := state.Board()

	analysis := &Analysis{
		File:                filepath.Base(path),
		Name:                config.Name,
		GridSize:            config.GridSize,
		PlacementAvoidsSkip: config.PlacementAvoidsSkip,
		CrossingCells:       len(engine.CrossingCells(board)),
	}

	for _, p := range state.Players() {
		starts := board.AllStartingCells(p.ID())
		pa := PlayerAnalysis{
			ID:            p.ID(),
			Name:          p.Name(),
			StartingCells: starts,
			EscapeCells:   board.AllEscapeCells(p.ID()),
			StepsToEscape: engine.TotalStepsToEscape(board, p),
		}
		if waiting := engine.RosterSize - len(starts); waiting > 0 {
			pa.Waiting = waiting
		}
		if len(starts) > 0 {
			analysis.LaneLength = len(engine.LanePath(board, p.ID(), starts[0]))
		}
		analysis.Players = append(analysis.Players, pa)
	}

	return analysis, nil
}

func formatCells(cells []engine.Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(w, "Lane Length: %d cells\n", a.LaneLength)
	fmt.Fprintf(w, "Crossing Cells: %d\n", a.CrossingCells)
	if a.PlacementAvoidsSkip {
		fmt.Fprintf(w, "Skip Rule: placing counts as a move\n")
	} else {
		fmt.Fprintf(w, "Skip Rule: players with no movable token are skipped\n")
	}

	for _, p := range a.Players {
		fmt.Fprintf(w, "Player %d (%s)\n", p.ID, p.Name)
		fmt.Fprintf(w, "  Starting cells: %s\n", formatCells(p.StartingCells))
		fmt.Fprintf(w, "  Escape cells:   %s\n", formatCells(p.EscapeCells))
		fmt.Fprintf(w, "  Uncontested win: %d placements + %d moves\n", engine.RosterSize, p.StepsToEscape)
		if p.Waiting > 0 {
			fmt.Fprintf(w, "  ⚠️  %d tokens wait for a free starting cell\n", p.Waiting)
		}
	}

	if a.PlacementAvoidsSkip {
		return
	}
	fmt.Fprintf(w, "Note: a player with no movable token is skipped, so waiting tokens never earn a turn by themselves\n")
}
