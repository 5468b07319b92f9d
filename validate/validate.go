// Command validate checks the game configuration JSON files in a configs
// directory. It reports:
//   - JSON structure and unknown fields
//   - Engine validation (grid size, seats, colors, messages)
//   - File names that cannot be used as configuration IDs
//   - Informational board facts for valid files
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-escape/game/config"
	"github.com/wricardo/grid-escape/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Info lines are printed for valid files.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	if !config.ValidID(result.File) {
		result.fail("File name %q cannot be used as a configuration ID", result.File)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var cfg engine.GameConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	// Typos in optional fields silently fall back to defaults
	strict := json.NewDecoder(bytes.NewReader(data))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&engine.GameConfig{}); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown field: %v", err))
	}

	if err := engine.ValidateGameConfig(&cfg); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	if cfg.Messages.Rejected == "" {
		result.Warnings = append(result.Warnings, "messages.rejected is empty, rejected actions show the reason code only")
	}
	if id := strings.TrimSuffix(result.File, ".json"); cfg.Name != id {
		result.Warnings = append(result.Warnings, fmt.Sprintf("name %q differs from the file ID %q", cfg.Name, id))
	}

	lanes := cfg.GridSize - 2
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Grid %dx%d with %d lanes per player", cfg.GridSize, cfg.GridSize, lanes),
		fmt.Sprintf("✓ Players: %s vs %s", cfg.Players[0].Name, cfg.Players[1].Name),
	)
	if lanes < engine.RosterSize {
		result.Info = append(result.Info, fmt.Sprintf("✓ %d of %d tokens start off board until a lane frees up", engine.RosterSize-lanes, engine.RosterSize))
	}
	if cfg.PlacementAvoidsSkip {
		result.Info = append(result.Info, "✓ Placing a token counts as a move")
	}

	return result
}

// validateDir validates every *.json file in dir and writes a report to w.
// It returns false when any file is invalid.
func validateDir(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no configuration files in %s", dir)
	}
	sort.Strings(files)

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+e)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate Grid Escape configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "../configs", Usage: "Configuration directory", Sources: cli.EnvVars("CONFIG_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(os.Stdout, cmd.String("dir"))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("some configurations have errors")
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
