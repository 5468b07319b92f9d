package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "engine-test"
	config.Description = "Configuration for engine tests"
	return config
}

func newTestEngine(t *testing.T, config *GameConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(config)
	require.NoError(t, err)
	e.now = func() time.Time { return time.Unix(1700000000, 0) }
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	assert.Equal(t, "engine-test", e.Config().Name)
	assert.Equal(t, 7, e.State().Board().Size())
	assert.Equal(t, e.Config().Messages.Welcome, e.Message())
	assert.False(t, e.IsGameOver())
	assert.Nil(t, e.LastAction())
	assert.Empty(t, e.History().All)

	_, err := NewEngine(nil)
	assert.Error(t, err)

	bad := createTestConfig()
	bad.GridSize = 2
	_, err = NewEngine(bad)
	assert.Error(t, err)
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()

	assert.Equal(t, "classic", e.Config().Name)
	assert.Equal(t, "Player 1", e.State().Player(PlayerOne).Name())
	assert.Equal(t, Color{R: 204}, e.State().Player(PlayerTwo).Color())
}

func TestEnginePlaceNextReportsSkip(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	out := e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6})
	require.True(t, out.Success, out.Message)
	assert.Equal(t, ActionPlace, out.Action)
	assert.Equal(t, 0, out.TokenID)
	assert.True(t, out.TurnSkipped)
	assert.Equal(t, PlayerTwo, out.SkippedPlayer)
	assert.Equal(t, "Player 2 cannot move and is skipped", out.Message)
	assert.Equal(t, out.Message, e.Message())

	out = e.PlaceNext(PlayerOne, Cell{X: 4, Y: 6})
	require.True(t, out.Success)
	assert.Equal(t, 1, out.TokenID)
}

func TestEngineRejections(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	tests := []struct {
		name   string
		run    func() ActionOutcome
		reason string
		err    error
	}{
		{"unknown player", func() ActionOutcome { return e.Place(3, 0, Cell{X: 3, Y: 6}) }, "unknown_token", ErrUnknownToken},
		{"unknown token", func() ActionOutcome { return e.Place(PlayerOne, 9, Cell{X: 3, Y: 6}) }, "unknown_token", ErrUnknownToken},
		{"wrong turn", func() ActionOutcome { return e.PlaceNext(PlayerTwo, Cell{X: 6, Y: 3}) }, "not_your_turn", ErrNotYourTurn},
		{"not a starting cell", func() ActionOutcome { return e.Place(PlayerOne, 0, Cell{X: 3, Y: 3}) }, "not_starting_cell", ErrNotStartingCell},
		{"move unplaced", func() ActionOutcome { return e.Move(PlayerOne, 0, Cell{X: 3, Y: 5}) }, "token_not_on_board", ErrTokenNotOnBoard},
		{"escape unplaced", func() ActionOutcome { return e.Escape(PlayerOne, 0) }, "token_not_on_board", ErrTokenNotOnBoard},
		{"select opponent", func() ActionOutcome { return e.Select(PlayerTwo, 0) }, "not_your_turn", ErrNotYourTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.Snapshot()
			out := tt.run()
			assert.False(t, out.Success)
			assert.Equal(t, tt.reason, out.Reason)
			assert.ErrorIs(t, out.Err, tt.err)
			assert.Contains(t, out.Message, "Action rejected")
			before.Message = e.Message()
			before.Sequence++
			assert.Equal(t, before, e.Snapshot())
		})
	}

	h := e.History()
	assert.Equal(t, len(tests), h.Total)
	for _, rec := range h.All {
		assert.False(t, rec.Success)
		assert.NotEmpty(t, rec.Reason)
	}
}

func TestEngineMoveAndHistory(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 2, Y: 6}).Success)
	out := e.Move(PlayerOne, 0, Cell{X: 2, Y: 5})
	require.True(t, out.Success)
	assert.Equal(t, "Player 2 cannot move and is skipped", out.Message)

	out = e.Move(PlayerOne, 0, Cell{X: 1, Y: 5})
	assert.False(t, out.Success)
	assert.Equal(t, "illegal_destination", out.Reason)

	h := e.History()
	require.Len(t, h.All, 3)
	assert.Equal(t, 3, h.Total)
	assert.Equal(t, 3, h.CurrentCount)
	assert.Equal(t, []int{1, 2, 3}, []int{h.All[0].Number, h.All[1].Number, h.All[2].Number})
	assert.Equal(t, Cell{X: 2, Y: 6}, *h.All[1].From)
	assert.Equal(t, Cell{X: 2, Y: 5}, *h.All[1].To)
	assert.Equal(t, int64(1700000000), h.All[1].Timestamp)
	assert.True(t, h.All[1].TurnSkipped)

	last := e.LastAction()
	require.NotNil(t, last)
	assert.Equal(t, ActionMove, last.Kind)
	assert.False(t, last.Success)
}

func TestEngineEscapeAndVictory(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	s := e.State()
	p1 := s.Player(PlayerOne)
	for i := 0; i < RosterSize-1; i++ {
		p1.Token(i).markEscaped()
	}
	putToken(t, s, PlayerOne, RosterSize-1, Cell{X: 3, Y: 0})

	out := e.Escape(PlayerOne, RosterSize-1)
	require.True(t, out.Success)
	assert.True(t, out.Escaped)
	assert.True(t, out.GameOver)
	assert.Equal(t, PlayerOne, out.Winner)
	assert.Equal(t, "Player 1 escaped every token and wins!", out.Message)

	out = e.SwitchTurn()
	assert.False(t, out.Success)
	assert.Equal(t, "game_over", out.Reason)

	out = e.PlaceNext(PlayerOne, Cell{X: 1, Y: 6})
	assert.Equal(t, "game_over", out.Reason)
}

func TestEngineStalemateMessage(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6}).Success)
	for y := 5; y >= 0; y-- {
		require.True(t, e.Move(PlayerOne, 0, Cell{X: 3, Y: y}).Success)
	}

	snap := e.Snapshot()
	assert.True(t, snap.Stalemate)
	assert.Equal(t, PhaseGameOver, snap.Phase)
	assert.Equal(t, e.Config().Messages.Stalemate, e.Message())
}

func TestEngineSelect(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	out := e.Select(PlayerOne, 2)
	require.True(t, out.Success)
	assert.Equal(t, e.Config().Messages.Welcome, out.Message)
	assert.Same(t, e.State().Player(PlayerOne).Token(2), e.State().SelectedToken())
	require.NotNil(t, e.Snapshot().SelectedToken)
}

func TestEngineResetPreservesCumulativeHistory(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6}).Success)
	require.True(t, e.Move(PlayerOne, 0, Cell{X: 3, Y: 5}).Success)

	out := e.Reset()
	require.True(t, out.Success)
	assert.Equal(t, ActionReset, out.Action)
	assert.Equal(t, e.Config().Messages.Welcome, e.Message())

	h := e.History()
	assert.Equal(t, 3, h.Total)
	assert.Equal(t, ActionReset, h.All[2].Kind)
	assert.Empty(t, h.Current)
	assert.Equal(t, 0, h.CurrentCount)
	assert.Empty(t, e.State().Board().OccupiedCells())

	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 1, Y: 6}).Success)
	h = e.History()
	assert.Equal(t, 4, h.Total)
	assert.Equal(t, 1, h.CurrentCount)
	assert.Equal(t, 4, h.Current[0].Number)
}

func TestEngineSnapshotRestore(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6}).Success)
	require.True(t, e.Move(PlayerOne, 0, Cell{X: 3, Y: 5}).Success)
	snap := e.Snapshot()
	assert.Equal(t, "engine-test", snap.ConfigName)

	restored := newTestEngine(t, createTestConfig())
	require.NoError(t, restored.Restore(snap))
	restored.RestoreHistory(e.History())

	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, e.History(), restored.History())

	snap.GridSize = 5
	assert.Error(t, restored.Restore(snap))
}

func TestEngineRestoreHistoryNormalises(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	e.RestoreHistory(History{All: []ActionRecord{{Number: 1, Kind: ActionReset}}, Total: 9})

	h := e.History()
	assert.Equal(t, 1, h.Total)
	assert.NotNil(t, h.Current)
	assert.Equal(t, 0, h.CurrentCount)
}

func TestEngineLegalActions(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	actions := e.LegalActions()
	require.NotEmpty(t, actions)
	a := actions[0]
	assert.Equal(t, ActionPlace, a.Kind)
	require.True(t, e.Place(a.Player, a.TokenID, *a.To).Success, "%+v", a)
}

func TestEngineFoldsRepeatedRejections(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	for i := 0; i < 50; i++ {
		require.False(t, e.Move(PlayerOne, 0, Cell{X: 3, Y: 5}).Success)
	}

	h := e.History()
	require.Len(t, h.All, 1)
	assert.Equal(t, 49, h.All[0].Repeats)
	assert.Equal(t, h.All[0], h.Current[0])
	assert.Equal(t, 1, e.Snapshot().Sequence)

	// A successful action ends the run; the next rejection gets its own record
	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6}).Success)
	require.False(t, e.Move(PlayerOne, 0, Cell{X: 4, Y: 5}).Success)
	h = e.History()
	require.Len(t, h.All, 3)
	assert.Zero(t, h.All[2].Repeats)
	assert.Equal(t, 3, h.All[2].Number)
}

func TestEngineCapsRejectedRun(t *testing.T) {
	e := newTestEngine(t, createTestConfig())

	// Every attempt differs, so only the cap stops the growth
	for i := 0; i < 100; i++ {
		require.False(t, e.Place(PlayerOne, 0, Cell{X: i%5 + 1, Y: 10 + i/5}).Success)
	}

	h := e.History()
	require.Len(t, h.All, MaxRejectedRun)
	assert.Equal(t, MaxRejectedRun, h.Total)
	assert.Equal(t, 100-MaxRejectedRun, h.All[MaxRejectedRun-1].Repeats)
}

func TestEngineSnapshotSequence(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	assert.Equal(t, 0, e.Snapshot().Sequence)

	require.True(t, e.PlaceNext(PlayerOne, Cell{X: 3, Y: 6}).Success)
	first := e.Snapshot().Sequence
	require.True(t, e.Move(PlayerOne, 0, Cell{X: 3, Y: 5}).Success)
	assert.Greater(t, e.Snapshot().Sequence, first)

	require.True(t, e.Reset().Success)
	assert.Equal(t, 3, e.Snapshot().Sequence, "reset keeps counting")
}

func TestEngineFoldedRejectionReportsItsOwnOutcome(t *testing.T) {
	e := newTestEngine(t, createTestConfig())
	for i := 0; i < MaxRejectedRun; i++ {
		require.False(t, e.Place(PlayerOne, 0, Cell{X: i%5 + 1, Y: 10 + i/5}).Success)
	}

	out := e.Escape(PlayerOne, 0)
	assert.False(t, out.Success)
	assert.Equal(t, ActionEscape, out.Action)
	assert.Equal(t, "token_not_on_board", out.Reason)
	assert.Len(t, e.History().All, MaxRejectedRun)
}
