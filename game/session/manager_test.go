package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/grid-escape/game/engine"
)

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	config.GridSize = 5
	return config
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create(ctx, "test-session", "test", config)
		require.NoError(t, err)
		assert.Equal(t, "test-session", session.ID)
		assert.Equal(t, "test", session.ConfigID)
		assert.NotNil(t, session.Engine)
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create(ctx, "", "test", config)
		require.NoError(t, err)
		assert.Len(t, session.ID, 4)
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create(ctx, "test-session", "test", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create(ctx, "TEST-SESSION", "test", config)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid session ID", func(t *testing.T) {
		_, err := manager.Create(ctx, "../escape", "test", config)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = ""
		_, err := manager.Create(ctx, "invalid-test", "test", invalidConfig)
		assert.Error(t, err)
	})
}

func TestManager_Get(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	created, err := manager.Create(ctx, "get-test", "test", createTestConfig())
	require.NoError(t, err)

	session, err := manager.Get(ctx, "get-test")
	require.NoError(t, err)
	assert.Same(t, created, session)

	session, err = manager.Get(ctx, "GET-TEST")
	require.NoError(t, err)
	assert.Same(t, created, session)

	_, err = manager.Get(ctx, "non-existent")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	_, err := manager.Create(ctx, "delete-test", "test", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete(ctx, "DELETE-test"))
	_, err = manager.Get(ctx, "delete-test")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, manager.Delete(ctx, "delete-test"), ErrSessionNotFound)
	assert.ErrorIs(t, manager.DeleteFromMemory("delete-test"), ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	assert.Empty(t, manager.List())
	for i := 0; i < 3; i++ {
		_, err := manager.Create(ctx, fmt.Sprintf("list-%d", i), "test", createTestConfig())
		require.NoError(t, err)
	}
	assert.Len(t, manager.List(), 3)
	assert.Equal(t, 3, manager.Count())
}

func TestManager_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	old, err := manager.Create(ctx, "old", "test", createTestConfig())
	require.NoError(t, err)
	_, err = manager.Create(ctx, "fresh", "test", createTestConfig())
	require.NoError(t, err)

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, manager.Count())

	_, err = manager.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	session, err := manager.Create(ctx, "access", "test", createTestConfig())
	require.NoError(t, err)
	before := session.LastAccessedAt
	session.LastAccessedAt = before.Add(-time.Minute)

	require.NoError(t, manager.UpdateLastAccessed("ACCESS"))
	assert.True(t, session.LastAccessedAt.After(before.Add(-time.Minute)))

	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager(zaptest.NewLogger(t))
	assert.NoError(t, manager.Save(context.Background(), "anything"))
	assert.NoError(t, manager.SaveAllSessions(context.Background()))
	assert.NoError(t, manager.LoadPersistedSessions(context.Background()))
}

func TestManager_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))
	config := createTestConfig()

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create(ctx, "", "test", config)
			if !assert.NoError(t, err) {
				return
			}
			ids <- session.ID
			_, err = manager.Get(ctx, session.ID)
			assert.NoError(t, err)
			assert.NoError(t, manager.UpdateLastAccessed(session.ID))
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 20, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zaptest.NewLogger(t))

	a, err := manager.Create(ctx, "a", "test", createTestConfig())
	require.NoError(t, err)
	b, err := manager.Create(ctx, "b", "test", createTestConfig())
	require.NoError(t, err)

	out := a.Engine.PlaceNext(engine.PlayerOne, engine.Cell{X: 2, Y: 4})
	require.True(t, out.Success, out.Message)

	assert.Len(t, a.Engine.State().Player(engine.PlayerOne).OnBoard(), 1)
	assert.Empty(t, b.Engine.State().Player(engine.PlayerOne).OnBoard())
	assert.True(t, b.Engine.State().Board().IsEmpty(engine.Cell{X: 2, Y: 4}))
}
