package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/grid-escape/game/engine"
	"github.com/wricardo/grid-escape/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Escape",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Escape - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players race to walk all 7 of their tokens across the board and off the far edge.
Player 1 enters on the bottom row and escapes off the top. Player 2 enters on the
right column and escapes off the left.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: board diagram and token counts
- legal_actions: every action the current player may take
- place_token, move_token, escape_token, select_token: player actions
- switch_turn: pass the turn
- reset_game: start over
- action_history: past actions
- list_configs: available rule sets
- game_instructions: full rules
- describe_cell: what a single cell is for each player

TIP: call legal_actions before acting. A rejected action changes nothing and reports a reason code.`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func playerProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"enum":        []int{1, 2},
		"description": "Acting player (1 or 2)",
	}
}

func tokenProperty(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     0,
		"maximum":     engine.RosterSize - 1,
		"description": description,
	}
}

func coordinateProperty(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "ID of the config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"sort": map[string]any{
					"type":        "string",
					"enum":        []string{"accessed", "created", "id"},
					"description": "Sort key (default accessed)",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum sessions to return",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with a board diagram",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_actions",
		Description: "List every placement, move and escape the current player may make",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleLegalActions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_token",
		Description: "Place an unplaced token on one of the player's starting cells. Without token_id the lowest unplaced token is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"token_id":   tokenProperty("Token to place (optional)"),
				"x":          coordinateProperty("Column of the starting cell (0-based)"),
				"y":          coordinateProperty("Row of the starting cell (0-based)"),
			},
			Required: []string{"session_id", "player", "x", "y"},
		},
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_token",
		Description: "Move an on-board token one cell toward its escape edge",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"token_id":   tokenProperty("Token to move"),
				"x":          coordinateProperty("Destination column (0-based)"),
				"y":          coordinateProperty("Destination row (0-based)"),
			},
			Required: []string{"session_id", "player", "token_id", "x", "y"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "escape_token",
		Description: "Take a token standing on one of its escape cells off the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"token_id":   tokenProperty("Token to escape"),
			},
			Required: []string{"session_id", "player", "token_id"},
		},
	}, c.handleEscape)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_token",
		Description: "Mark a token as the player's focus. Advisory only, does not end the turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"player":     playerProperty(),
				"token_id":   tokenProperty("Token to select"),
			},
			Required: []string{"session_id", "player", "token_id"},
		},
	}, c.handleSelect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "switch_turn",
		Description: "Pass the turn to the next player who can act",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSwitchTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get action history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
				"segment": map[string]any{
					"type":        "string",
					"enum":        []string{"all", "current"},
					"description": "Every action, or only those since the last reset",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell: who occupies it and whether it is a starting, escape or crossing cell for each player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"x":          coordinateProperty("X coordinate (column) of the cell to describe (0-based)"),
				"y":          coordinateProperty("Y coordinate (row) of the cell to describe (0-based)"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the client disconnects
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func requireInts(args map[string]any, keys ...string) (map[string]int, error) {
	values := make(map[string]int, len(keys))
	for _, key := range keys {
		v, ok := intArg(args, key)
		if !ok {
			return nil, fmt.Errorf("%s is required and must be an integer", key)
		}
		values[key] = v
	}
	return values, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatSnapshot(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	params := url.Values{}
	if sort, _ := args["sort"].(string); sort != "" {
		params.Set("sort", sort)
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/sessions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.State != nil {
			status = gameStatus(s.State)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleLegalActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var legal service.LegalActionsResponse
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/actions"), nil, &legal); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegalActions(&legal)), nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	values, err := requireInts(args, "player", "x", "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := service.PlaceRequest{
		Player: engine.PlayerID(values["player"]),
		X:      values["x"],
		Y:      values["y"],
	}
	if tokenID, ok := intArg(args, "token_id"); ok {
		body.TokenID = &tokenID
	}

	return c.runAction(ctx, sessionPath(sessionID, "/place"), body)
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	values, err := requireInts(args, "player", "token_id", "x", "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.runAction(ctx, sessionPath(sessionID, "/move"), service.MoveRequest{
		Player:  engine.PlayerID(values["player"]),
		TokenID: values["token_id"],
		X:       values["x"],
		Y:       values["y"],
	})
}

func (c *Client) handleEscape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.handleTokenAction(ctx, request, "/escape")
}

func (c *Client) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.handleTokenAction(ctx, request, "/select")
}

func (c *Client) handleTokenAction(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	values, err := requireInts(args, "player", "token_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.runAction(ctx, sessionPath(sessionID, suffix), service.TokenRequest{
		Player:  engine.PlayerID(values["player"]),
		TokenID: values["token_id"],
	})
}

func (c *Client) handleSwitchTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	return c.runAction(ctx, sessionPath(sessionID, "/switch-turn"), nil)
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)
	return c.runAction(ctx, sessionPath(sessionID, "/reset"), nil)
}

// runAction posts one action. Rule rejections come back as text, transport
// failures as tool errors.
func (c *Client) runAction(ctx context.Context, path string, body any) (*mcp.CallToolResult, error) {
	var result service.ActionResult
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	if segment, _ := args["segment"].(string); segment != "" {
		params.Set("segment", segment)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		rules := "players with no token on the board are skipped"
		if config.PlacementAvoidsSkip {
			rules = "placing a token counts as a move"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, %s\n\n",
			config.ConfigID, config.Name, config.Description, config.GridSize, config.GridSize, rules)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const gameInstructions = `Grid Escape - Complete Instructions

GAME OBJECTIVE:
Be the first player to get all 7 of your tokens off the board through your escape edge.

THE BOARD:
• An N x N grid (7x7 by default). (0,0) is the top-left corner, x grows right, y grows down.
• Only cells away from the corners are used: the lanes run through indices 1..N-2.
• Player 1 starts on the bottom row (y = N-1) and escapes at the top row (y = 0).
• Player 2 starts on the right column (x = N-1) and escapes at the left column (x = 0).
• The centre cells are crossing cells: both players' lanes pass through them.

TOKENS:
• Each player owns 7 tokens with ids 0 to 6.
• A token is unplaced, on the board, or escaped. Escaped tokens never return.

ON YOUR TURN, DO ONE OF:
• place_token: put an unplaced token on an empty starting cell of yours
• move_token: move one of your tokens one step straight toward your escape edge,
  into an empty cell. Sideways and backward moves are never legal.
• escape_token: a token standing on one of your escape cells leaves the board.
  Moving onto an escape cell from the previous row also escapes the token at once.
• switch_turn: pass

select_token only marks a token for display. It does not end the turn.

SKIPPED TURNS:
• After every action the turn passes. A player who cannot move any on-board token is skipped.
• With placement_avoids_skip enabled, a player who can still place a token is not skipped.
• If neither player can act the game ends in a stalemate.

VICTORY:
• The first player with all 7 tokens escaped wins.

STRATEGY HINTS:
• Tokens block each other on crossing cells. Parking a token in the centre can stall
  several of your opponent's lanes at once.
• A blocked token is only stuck until the cell ahead clears. Count how many moves each
  side still needs (describe_cell and game_state help).
• Always check legal_actions first. Rejected actions change nothing and return a reason
  code such as not_your_turn, cell_occupied or illegal_destination.

SESSION MANAGEMENT:
• Multiple game sessions can run simultaneously
• Each session has a unique 4-character ID
• Sessions keep independent state and configuration`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	values, err := requireInts(args, "x", "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description, err := describeCell(&snap, engine.Cell{X: values["x"], Y: values["y"]})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(description), nil
}

// Formatting helpers

func describeCell(snap *engine.Snapshot, cell engine.Cell) (string, error) {
	board, err := engine.NewBoard(snap.GridSize)
	if err != nil {
		return "", err
	}
	if !board.IsValid(cell) {
		return "", fmt.Errorf("coordinates %s are out of bounds. Grid size is %dx%d (0-%d for both x and y)",
			cell, snap.GridSize, snap.GridSize, snap.GridSize-1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s:\n", cell)

	occupant := "empty"
	for _, p := range snap.Players {
		for _, t := range p.Tokens {
			if t.Position != nil && *t.Position == cell {
				occupant = fmt.Sprintf("token %d of player %d (%s)", t.ID, p.ID, p.Name)
			}
		}
	}
	fmt.Fprintf(&b, "Occupant: %s\n", occupant)

	var roles []string
	for _, id := range []engine.PlayerID{engine.PlayerOne, engine.PlayerTwo} {
		if board.IsStartingCell(cell, id) {
			roles = append(roles, fmt.Sprintf("starting cell for player %d", id))
		}
		if board.IsEscapeCell(cell, id) {
			roles = append(roles, fmt.Sprintf("escape cell for player %d", id))
		}
	}
	for _, c := range engine.CrossingCells(board) {
		if c == cell {
			roles = append(roles, "crossing cell (both lanes pass here)")
		}
	}
	if len(roles) == 0 {
		roles = append(roles, "unused corner or edge cell, no token can ever stand here")
	}
	fmt.Fprintf(&b, "Role: %s\n", strings.Join(roles, "; "))

	return b.String(), nil
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.State))
}

func gameStatus(snap *engine.Snapshot) string {
	switch {
	case snap.Phase != engine.PhaseGameOver:
		return fmt.Sprintf("player %d to act", snap.CurrentPlayer)
	case snap.Stalemate:
		return "stalemate"
	default:
		return fmt.Sprintf("player %d won", snap.Winner)
	}
}

// formatBoard draws the grid with one character per cell: the owning
// player's number for tokens, '.' for empty cells.
func formatBoard(snap *engine.Snapshot) string {
	occupied := snap.Occupancy()

	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < snap.GridSize; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")
	for y := 0; y < snap.GridSize; y++ {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < snap.GridSize; x++ {
			if owner, ok := occupied[engine.Cell{X: x, Y: y}]; ok {
				fmt.Fprintf(&b, "%d", owner)
			} else {
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", gameStatus(snap))
	if snap.TurnSkipped {
		fmt.Fprintf(&b, "Player %d was skipped\n", snap.SkippedPlayer)
	}
	for _, p := range snap.Players {
		fmt.Fprintf(&b, "Player %d (%s): unplaced %d, on board %d, escaped %d\n",
			p.ID, p.Name, p.UnplacedCount, p.OnBoardCount, p.EscapedCount)
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(snap))

	for _, p := range snap.Players {
		var positions []string
		for _, t := range p.Tokens {
			if t.Position != nil {
				positions = append(positions, fmt.Sprintf("%d@%s", t.ID, *t.Position))
			}
		}
		if len(positions) > 0 {
			fmt.Fprintf(&b, "Player %d tokens: %s\n", p.ID, strings.Join(positions, " "))
		}
	}
	if snap.SelectedToken != nil {
		fmt.Fprintf(&b, "Selected token: %d\n", *snap.SelectedToken)
	}

	if snap.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", snap.Message)
	}

	return b.String()
}

func formatAction(a engine.Action) string {
	switch a.Kind {
	case engine.ActionPlace:
		return fmt.Sprintf("place token %d at %s", a.TokenID, *a.To)
	case engine.ActionMove:
		line := fmt.Sprintf("move token %d %s → %s", a.TokenID, *a.From, *a.To)
		if a.Escapes {
			line += " (escapes)"
		}
		return line
	case engine.ActionEscape:
		return fmt.Sprintf("escape token %d from %s", a.TokenID, *a.From)
	default:
		return string(a.Kind)
	}
}

func formatLegalActions(legal *service.LegalActionsResponse) string {
	if legal.GameOver {
		return "The game is over. No actions are available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Player %d to act, %d legal actions:\n", legal.CurrentPlayer, len(legal.Actions))
	for i, a := range legal.Actions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatAction(a))
	}
	b.WriteString("switch_turn is always available while the game runs.\n")
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s succeeded\n", result.Outcome.Action)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected (%s): %s\n", result.Outcome.Action, result.Reason, result.Message)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatRecord(r engine.ActionRecord) string {
	status := "✓"
	if !r.Success {
		status = "✗ " + r.Reason
		if r.Repeats > 0 {
			status += fmt.Sprintf(" (repeated %d more times)", r.Repeats)
		}
	}
	line := fmt.Sprintf("%d. player %d %s", r.Number, r.Player, r.Kind)
	if r.TokenID >= 0 && r.Kind != engine.ActionSwitchTurn && r.Kind != engine.ActionReset {
		line += fmt.Sprintf(" token %d", r.TokenID)
	}
	if r.From != nil {
		line += fmt.Sprintf(" from %s", *r.From)
	}
	if r.To != nil {
		line += fmt.Sprintf(" to %s", *r.To)
	}
	if r.Escaped {
		line += " (escaped)"
	}
	if r.TurnSkipped {
		line += fmt.Sprintf(" [player %d skipped]", r.SkippedPlayer)
	}
	return line + " " + status
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (%s, Page %d/%d) - Total: %d\n\n",
		history.Segment, history.Page, history.TotalPages, history.TotalActions)

	if len(history.Actions) == 0 {
		b.WriteString("(no actions)\n")
	}
	for _, r := range history.Actions {
		b.WriteString(formatRecord(r))
		b.WriteString("\n")
	}

	return b.String()
}
