// Package websocket provides WebSocket transport for Grid Escape.
//
// The websocket package implements:
//   - Session-scoped state streaming
//   - Game-over notifications
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns the client registry inside its Run goroutine. Register,
// unregister, broadcast and query requests all arrive over channels, so no
// other goroutine touches the registry. Each connection has a read pump
// (keepalive and disconnect detection) and a write pump (one JSON message
// per text frame, plus pings).
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"id": "...", "session_id": "abc1", "event": "state_update", "snapshot": {...}, "timestamp": "..."}
//
// Snapshots carry a sequence number that grows with every recorded action;
// messages can arrive out of order, so clients ignore a snapshot whose
// sequence is lower than the one they already show.
//
// Events are state_update (snapshot after every action) and game_over
// (data carries winner, stalemate and message). Clients do not send
// actions over the socket; they use the REST API.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	// in an HTTP handler
//	hub.ServeWS(w, r, sessionID, func() *engine.Snapshot { return currentState(sessionID) })
//
//	// after an action
//	hub.BroadcastToSession(sessionID, result.State)
//
// Cancelling the context passed to Run closes every client connection.
package websocket
