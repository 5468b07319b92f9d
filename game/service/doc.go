// Package service provides the business logic layer for Grid Escape.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration listing and loading
//   - Action processing with per-action events
//   - Paginated action history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine; every engine call runs
// under one service-wide lock, so callers never touch engine state directly.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Place(ctx, info.ID, service.PlaceRequest{
//		Player: engine.PlayerOne, X: 3, Y: 6,
//	})
//
// Rejected actions are not errors: they come back as an ActionResult with
// Success false and a stable Reason code. Errors are reserved for missing
// sessions, missing configs and storage failures, and wrap the sentinels
// declared here so callers can use errors.Is.
package service
