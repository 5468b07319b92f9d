// Package api provides HTTP REST API handlers for Grid Escape.
//
// The api package implements:
//   - Session management endpoints
//   - Game action endpoints (place, move, escape, select, switch turn, reset)
//   - Legal action and history queries
//   - Configuration listing, loading and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (body: {"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=accessed|created|id&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//   - GET /api/sessions/unified - Several sessions at once (?sessionIds=a,b or ?configName=classic)
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/actions - Legal actions of the current player
//   - POST /api/sessions/{id}/place - {"player": 1, "token_id": 0, "x": 3, "y": 6}; token_id optional
//   - POST /api/sessions/{id}/move - {"player": 1, "token_id": 0, "x": 3, "y": 5}
//   - POST /api/sessions/{id}/escape - {"player": 1, "token_id": 0}
//   - POST /api/sessions/{id}/select - {"player": 1, "token_id": 0}
//   - POST /api/sessions/{id}/switch-turn - Run the turn advance
//   - POST /api/sessions/{id}/reset - Restart the game
//   - GET /api/sessions/{id}/history - Action history (?page=N&limit=N&order=asc|desc&segment=all|current)
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Load one configuration
//   - POST /api/configs - Save a configuration (GameConfig JSON plus optional config_id)
//
// Other:
//   - GET /api/health - Liveness
//   - GET /ws?session=ID - WebSocket state stream
//
// Rejected Actions:
//
// A rule rejection is not an HTTP error. The response is 200 with
// success false and a stable reason code:
//
//	{
//	  "success": false,
//	  "reason": "not_your_turn",
//	  "message": "token does not belong to the player whose turn it is",
//	  "state": {...}
//	}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes. Unknown
// sessions and configs are 404, malformed bodies and invalid configs 400:
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
package api
