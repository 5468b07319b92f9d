package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/grid-escape/game/engine"
	"github.com/wricardo/grid-escape/game/service"
)

// stubConfigs serves a fixed set of configs keyed by ID
type stubConfigs map[string]*engine.GameConfig

func newStubConfigs() stubConfigs {
	return stubConfigs{"test": createTestConfig()}
}

func (s stubConfigs) LoadConfig(name string) (*engine.GameConfig, error) {
	config, ok := s[name]
	if !ok {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (s stubConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(s))
	for id, config := range s {
		result = append(result, &service.ConfigInfo{ConfigID: id, Name: config.Name})
	}
	return result, nil
}

func (s stubConfigs) GetDefault() (string, *engine.GameConfig) {
	return "test", s["test"]
}

func (s stubConfigs) SaveConfig(name string, config *engine.GameConfig) error {
	return errors.New("read-only")
}

// playedSession returns a session with a few actions behind it
func playedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(createTestConfig())
	require.NoError(t, err)

	out := eng.PlaceNext(engine.PlayerOne, engine.Cell{X: 2, Y: 4})
	require.True(t, out.Success, out.Message)
	out = eng.Move(engine.PlayerOne, 0, engine.Cell{X: 2, Y: 3})
	require.True(t, out.Success, out.Message)
	out = eng.Move(engine.PlayerOne, 0, engine.Cell{X: 9, Y: 9})
	require.False(t, out.Success)

	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &service.Session{
		ID:             id,
		ConfigID:       "test",
		Engine:         eng,
		Config:         eng.Config(),
		CreatedAt:      created,
		LastAccessedAt: created.Add(time.Minute),
	}
}

// runPersistenceContract exercises behaviour every backend shares
func runPersistenceContract(t *testing.T, p SessionPersistence) {
	ctx := context.Background()

	t.Run("save and load keeps state and history", func(t *testing.T) {
		original := playedSession(t, "keep")
		require.NoError(t, p.Save(ctx, original))

		exists, err := p.Exists(ctx, "keep")
		require.NoError(t, err)
		assert.True(t, exists)

		loaded, err := p.Load(ctx, "keep")
		require.NoError(t, err)
		assert.Equal(t, "keep", loaded.ID)
		assert.Equal(t, "test", loaded.ConfigID)
		assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
		assert.True(t, original.LastAccessedAt.Equal(loaded.LastAccessedAt))
		assert.Equal(t, original.Engine.Snapshot(), loaded.Engine.Snapshot())
		assert.Equal(t, original.Engine.History(), loaded.Engine.History())
		assert.NoError(t, loaded.Engine.State().CheckInvariants())
	})

	t.Run("save overwrites", func(t *testing.T) {
		session := playedSession(t, "over")
		require.NoError(t, p.Save(ctx, session))

		session.Engine.Reset()
		require.NoError(t, p.Save(ctx, session))

		loaded, err := p.Load(ctx, "over")
		require.NoError(t, err)
		assert.Empty(t, loaded.Engine.State().Player(engine.PlayerOne).OnBoard())
		assert.Equal(t, 4, loaded.Engine.History().Total)
	})

	t.Run("list all", func(t *testing.T) {
		ids, err := p.ListAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"keep", "over"}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, p.Delete(ctx, "keep"))

		exists, err := p.Exists(ctx, "keep")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = p.Load(ctx, "keep")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, p.Delete(ctx, "keep"), ErrSessionNotFound)
	})

	t.Run("manager reloads from storage", func(t *testing.T) {
		manager := NewManagerWithPersistence(p, zaptest.NewLogger(t))
		require.NoError(t, manager.LoadPersistedSessions(ctx))
		assert.Equal(t, 1, manager.Count())

		created, err := manager.Create(ctx, "fresh", "test", createTestConfig())
		require.NoError(t, err)
		out := created.Engine.PlaceNext(engine.PlayerOne, engine.Cell{X: 1, Y: 4})
		require.True(t, out.Success, out.Message)
		require.NoError(t, manager.Save(ctx, "fresh"))

		// Evicted sessions come back from storage on Get
		require.NoError(t, manager.DeleteFromMemory("fresh"))
		reloaded, err := manager.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Len(t, reloaded.Engine.State().Player(engine.PlayerOne).OnBoard(), 1)

		_, err = manager.Create(ctx, "over", "test", createTestConfig())
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)

		require.NoError(t, manager.SaveAllSessions(ctx))
		require.NoError(t, manager.Delete(ctx, "fresh"))
		exists, err := p.Exists(ctx, "fresh")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestFilePersistence(t *testing.T) {
	p, err := NewFilePersistence(t.TempDir(), newStubConfigs())
	require.NoError(t, err)
	runPersistenceContract(t, p)
}

func TestFilePersistence_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, newStubConfigs())
	require.NoError(t, err)

	session := playedSession(t, "bad")
	require.NoError(t, p.Save(context.Background(), session))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"id":"bad","config_name":"test","state":{"grid_size":9}}`), 0644))

	_, err = p.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestSQLitePersistence(t *testing.T) {
	p, err := OpenSQLitePersistence(filepath.Join(t.TempDir(), "sessions.db"), newStubConfigs())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	runPersistenceContract(t, p)
}

func TestSQLitePersistence_RequiresPath(t *testing.T) {
	_, err := OpenSQLitePersistence("  ", newStubConfigs())
	assert.Error(t, err)
}

func TestCodec_UnknownConfig(t *testing.T) {
	c := codec{configs: newStubConfigs()}
	session := playedSession(t, "x")
	session.ConfigID = "gone"

	raw, err := c.encode(session)
	require.NoError(t, err)

	_, err = c.decode(raw)
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
}

func TestCodec_ConfigIDFromDisplayName(t *testing.T) {
	c := codec{configs: newStubConfigs()}
	session := playedSession(t, "x")
	session.ConfigID = ""

	id, err := c.configID(session)
	require.NoError(t, err)
	assert.Equal(t, "test", id)
}
