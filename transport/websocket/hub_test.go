package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/grid-escape/game/engine"
)

func testSnapshot(t *testing.T) *engine.Snapshot {
	t.Helper()
	e := engine.NewEngineWithDefaults()
	out := e.PlaceNext(engine.PlayerOne, engine.Cell{X: 3, Y: 6})
	require.True(t, out.Success, out.Message)
	snap := e.Snapshot()
	return &snap
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	return message
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	client1 := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	client2 := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}

	hub.registerClient(client1)
	hub.registerClient(client2)
	assert.Len(t, hub.sessions["s1"], 2)

	hub.unregisterClient(client1)
	assert.Len(t, hub.sessions["s1"], 1)
	_, open := <-client1.send
	assert.False(t, open, "send channel should be closed")

	// A second unregister is a no-op
	hub.unregisterClient(client1)

	hub.unregisterClient(client2)
	_, exists := hub.sessions["s1"]
	assert.False(t, exists, "empty session should be cleaned up")
}

func TestHubBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	slow := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(newMessage("s1", EventStateUpdate, nil, nil))
	hub.broadcastMessage(newMessage("s1", EventStateUpdate, nil, nil))

	_, exists := hub.sessions["s1"]
	assert.False(t, exists)
}

func TestHubBroadcastToSessionQueuesMessages(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	snap := testSnapshot(t)

	hub.BroadcastToSession("s1", snap)

	message := <-hub.broadcast
	assert.Equal(t, "s1", message.SessionID)
	assert.Equal(t, EventStateUpdate, message.Event)
	assert.Same(t, snap, message.Snapshot)
	assert.NotEmpty(t, message.ID)
	assert.Empty(t, hub.broadcast, "an active game has no game_over event")

	over := *snap
	over.Phase = engine.PhaseGameOver
	over.Winner = engine.PlayerTwo
	hub.BroadcastToSession("s1", &over)

	assert.Equal(t, EventStateUpdate, (<-hub.broadcast).Event)
	final := <-hub.broadcast
	assert.Equal(t, EventGameOver, final.Event)
	assert.Equal(t, engine.PlayerTwo, final.Data.(map[string]any)["winner"])
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	message := <-hub.broadcast
	assert.Equal(t, "event-test", message.SessionID)
	assert.Equal(t, "custom-event", message.Event)
	assert.Equal(t, "test-data", message.Data)
	assert.Nil(t, message.Snapshot)
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
	}))
	defer server.Close()

	conn := dial(t, server, "ws-test")
	require.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 0 },
		time.Second, 10*time.Millisecond)
}

func TestWebSocketReceivesSnapshots(t *testing.T) {
	hub := startHub(t)
	initial := testSnapshot(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), func() *engine.Snapshot { return initial })
	}))
	defer server.Close()

	conn := dial(t, server, "msg-test")
	other := dial(t, server, "other")

	// The current state arrives on connect
	first := readMessage(t, conn)
	assert.Equal(t, EventStateUpdate, first.Event)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, initial.Occupancy(), first.Snapshot.Occupancy())
	readMessage(t, other)

	require.Eventually(t, func() bool {
		return hub.ClientCount("msg-test") == 1 && hub.ClientCount("other") == 1
	}, time.Second, 10*time.Millisecond)

	over := *initial
	over.Phase = engine.PhaseGameOver
	over.Stalemate = true
	hub.BroadcastToSession("msg-test", &over)

	update := readMessage(t, conn)
	assert.Equal(t, EventStateUpdate, update.Event)
	assert.Equal(t, engine.PhaseGameOver, update.Snapshot.Phase)

	final := readMessage(t, conn)
	assert.Equal(t, EventGameOver, final.Event)
	assert.Equal(t, true, final.Data.(map[string]any)["stalemate"])

	// Other sessions hear nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "s1", nil)
	}))
	defer server.Close()

	conn := dial(t, server, "s1")
	require.Eventually(t, func() bool { return hub.ClientCount("s1") == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	<-hub.done

	// The client is told to close
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Calls after shutdown return instead of blocking
	assert.Equal(t, 0, hub.ClientCount("s1"))
	hub.BroadcastEvent("s1", "late", nil)
}

func TestWebSocketReadsStateAfterRegistering(t *testing.T) {
	hub := startHub(t)
	initial := testSnapshot(t)
	registered := make(chan int, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "order-test", func() *engine.Snapshot {
			registered <- hub.ClientCount("order-test")
			return initial
		})
	}))
	defer server.Close()

	conn := dial(t, server, "order-test")
	first := readMessage(t, conn)
	assert.Equal(t, EventStateUpdate, first.Event)
	assert.Equal(t, 1, <-registered, "the client is subscribed before the state is read")
}

func TestSendToSkipsUnregisteredClient(t *testing.T) {
	hub := startHub(t)

	gone := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	hub.sendTo(gone, newMessage("s1", EventStateUpdate, nil, nil))
	assert.Empty(t, gone.send)
}
