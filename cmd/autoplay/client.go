package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/grid-escape/game/service"
)

// Client talks to the Grid Escape REST API for a single session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays in
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var req any
	if configID != "" {
		req = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume attaches the client to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID, nil, &info); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) LegalActions(ctx context.Context) (*service.LegalActionsResponse, error) {
	var resp service.LegalActionsResponse
	if err := c.do(ctx, http.MethodGet, c.sessionPath("actions"), nil, &resp); err != nil {
		return nil, fmt.Errorf("legal actions: %w", err)
	}
	return &resp, nil
}

func (c *Client) Place(ctx context.Context, req service.PlaceRequest) (*service.ActionResult, error) {
	return c.action(ctx, "place", req)
}

func (c *Client) Move(ctx context.Context, req service.MoveRequest) (*service.ActionResult, error) {
	return c.action(ctx, "move", req)
}

func (c *Client) Escape(ctx context.Context, req service.TokenRequest) (*service.ActionResult, error) {
	return c.action(ctx, "escape", req)
}

func (c *Client) SwitchTurn(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "switch-turn", nil)
}

func (c *Client) Reset(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "reset", nil)
}

func (c *Client) action(ctx context.Context, name string, req any) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath(name), req, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", c.sessionID, suffix)
}

func (c *Client) do(ctx context.Context, method, path string, req, out any) error {
	var body io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
