// Package engine provides the core game logic for Grid Escape.
//
// The engine package implements the game mechanics including:
//   - Grid geometry, occupancy and starting/escape edges
//   - Token lifecycle and forward-only movement
//   - Turn sequencing with automatic skips and stalemate detection
//   - Victory detection, reset and snapshot/restore
//   - Configuration loading and validation
//
// Core Types:
//
// Board, Token, Player and GameState model the rules. GameState mediates
// every mutating action; each action commits together with the turn
// advance it triggers or changes nothing. GameEngine wraps a GameState
// with its GameConfig, an action history and id-based entry points that
// report rejections as sentinel errors.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	out := gameEngine.PlaceNext(engine.PlayerOne, engine.Cell{X: 3, Y: 6})
//	if !out.Success {
//		log.Println(out.Reason)
//	}
//
// Game Rules:
//
// Two players each own seven tokens. Player 1 enters on the bottom row and
// leaves through the top row; Player 2 enters on the right column and
// leaves through the left column. Corners are never starting or escape
// cells. A token only ever moves one cell straight toward its escape edge,
// into an empty cell. A player who cannot move is skipped; when nobody can
// move the game ends in stalemate. The first player to escape all seven
// tokens wins.
package engine
