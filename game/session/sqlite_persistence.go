package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/grid-escape/game/service"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	config_name TEXT NOT NULL,
	document    BLOB NOT NULL,
	updated_at  INTEGER NOT NULL
)`

// SQLitePersistence implements SessionPersistence in a single SQLite table
type SQLitePersistence struct {
	db    *sql.DB
	codec codec
}

// OpenSQLitePersistence opens (or creates) the database at path
func OpenSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLitePersistence{db: db, codec: codec{configs: configManager}}, nil
}

// Close closes the SQLite handle
func (sp *SQLitePersistence) Close() error {
	if sp == nil || sp.db == nil {
		return nil
	}
	return sp.db.Close()
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(ctx context.Context, session *service.Session) error {
	payload, err := sp.codec.encode(session)
	if err != nil {
		return err
	}
	configID, err := sp.codec.configID(session)
	if err != nil {
		return err
	}

	_, err = sp.db.ExecContext(ctx,
		`INSERT INTO sessions (id, config_name, document, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   config_name = excluded.config_name,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		strings.ToLower(session.ID),
		configID,
		payload,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (sp *SQLitePersistence) Load(ctx context.Context, id string) (*service.Session, error) {
	var payload []byte
	err := sp.db.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE id = ?`, strings.ToLower(id),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sp.codec.decode(payload)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(ctx context.Context, id string) error {
	res, err := sp.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (sp *SQLitePersistence) ListAll(ctx context.Context) ([]string, error) {
	rows, err := sp.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := sp.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return true, nil
}
