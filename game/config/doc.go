// Package config provides configuration management for Grid Escape.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Validation through engine.ValidateGameConfig
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are JSON files in the configs directory. The file name
// without .json is the config ID used to create sessions. Each file defines
// the board size, the two players' names and colours, whether placing a
// token counts as being able to act, and the messages shown to players.
//
//	{
//	  "name": "classic",
//	  "description": "Classic 7x7 board, seven tokens each",
//	  "grid_size": 7,
//	  "placement_avoids_skip": false,
//	  "players": [
//	    {"name": "Player 1", "color": "#0066cc"},
//	    {"name": "Player 2", "color": "#cc0000"}
//	  ],
//	  "messages": {
//	    "welcome": "Welcome to Grid Escape! Player 1 moves first.",
//	    "turn_skipped": "Player %d cannot move and is skipped",
//	    "victory": "Player %d escaped every token and wins!",
//	    "stalemate": "Stalemate! Nobody can move.",
//	    "rejected": "Action rejected"
//	  }
//	}
//
// Default Configuration:
//
// The default is classic.json when present, otherwise the first valid file
// by ID, otherwise the built-in classic game.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("compact")
//	if err != nil {
//		log.Fatal(err)
//	}
package config
