// Package session provides session management for Grid Escape.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Pluggable persistence (files, Redis or SQLite)
//   - Idle session eviction
//
// Core Types:
//
// Manager is the in-memory session registry. It implements
// service.SessionManager and falls back to its SessionPersistence when a
// session is not in memory.
//
// Session Identifiers:
//
// Generated IDs are 4 lowercase hex characters from crypto/rand, regenerated
// on collision with a live or stored session. Caller-chosen IDs may use
// letters, digits, '-' and '_'. Lookups are case-insensitive.
//
// Persistence:
//
// Every backend stores the same JSON document (PersistedSessionData): the
// config ID, timestamps, an engine snapshot and the action history. Loading
// rebuilds the engine from the named config and restores the snapshot, so a
// document that does not describe a legal position is rejected.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	if err := manager.LoadPersistedSessions(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create(ctx, "", "classic", config)
package session
