package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GameConfig defines a board size, rule options, seat cosmetics and the
// messages shown to players. It is loaded from JSON files.
type GameConfig struct {
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	GridSize            int            `json:"grid_size"`
	PlacementAvoidsSkip bool           `json:"placement_avoids_skip"`
	Players             []PlayerConfig `json:"players"`
	Messages            struct {
		Welcome     string `json:"welcome"`
		TurnSkipped string `json:"turn_skipped"`
		Victory     string `json:"victory"`
		Stalemate   string `json:"stalemate"`
		Rejected    string `json:"rejected"`
	} `json:"messages"`
}

// PlayerConfig holds the display attributes of one seat
type PlayerConfig struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Rules returns the rule options of the config
func (c *GameConfig) Rules() Rules {
	return Rules{PlacementAvoidsSkip: c.PlacementAvoidsSkip}
}

// PlayerInfo resolves seat cosmetics, falling back to the defaults for
// missing entries.
func (c *GameConfig) PlayerInfo() [PlayerCount]PlayerInfo {
	info := DefaultPlayers()
	for i := 0; i < PlayerCount && i < len(c.Players); i++ {
		if c.Players[i].Name != "" {
			info[i].Name = c.Players[i].Name
		}
		if color, err := ParseColor(c.Players[i].Color); err == nil {
			info[i].Color = color
		}
	}
	return info
}

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate players
	if len(config.Players) != PlayerCount {
		return fmt.Errorf("config validation: players must have exactly %d entries, got %d", PlayerCount, len(config.Players))
	}
	names := make(map[string]bool, PlayerCount)
	for i, p := range config.Players {
		if p.Name == "" {
			return fmt.Errorf("config validation: players[%d].name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("config validation: players[%d].name %q is used twice", i, p.Name)
		}
		names[p.Name] = true
		if _, err := ParseColor(p.Color); err != nil {
			return fmt.Errorf("config validation: players[%d].color: %v", i, err)
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Stalemate == "" {
		return fmt.Errorf("config validation: messages.stalemate is required")
	}
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the winning player")
	}
	if !strings.Contains(config.Messages.TurnSkipped, "%d") {
		return fmt.Errorf("config validation: messages.turn_skipped must contain %%d for the skipped player")
	}

	return nil
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

	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the classic 7x7 game
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "Classic 7x7 board, seven tokens each",
		GridSize:    DefaultGridSize,
	}
	for _, p := range DefaultPlayers() {
		config.Players = append(config.Players, PlayerConfig{Name: p.Name, Color: p.Color.Hex()})
	}
	config.Messages.Welcome = "Welcome to Grid Escape! Player 1 moves first."
	config.Messages.TurnSkipped = "Player %d cannot move and is skipped"
	config.Messages.Victory = "Player %d escaped every token and wins!"
	config.Messages.Stalemate = "Stalemate! Nobody can move."
	config.Messages.Rejected = "Action rejected"
	return config
}
