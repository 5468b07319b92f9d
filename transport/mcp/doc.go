// Package mcp provides a Model Context Protocol server for Grid Escape.
//
// The server is a thin client: every tool call is proxied to the REST API
// of a running game server, so agents and browsers share the same sessions
// and WebSocket watchers see agent moves live.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: snapshot with a board diagram
//   - legal_actions: everything the current player may do
//   - place_token, move_token, escape_token, select_token: player actions
//   - switch_turn, reset_game: turn and game control
//   - action_history: paginated action log
//   - list_configs: available rule sets
//   - game_instructions: full rules text
//   - describe_cell: occupant and role of one cell
//
// Rejected actions are returned as normal text results carrying the reason
// code. Transport failures and missing arguments are tool errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
