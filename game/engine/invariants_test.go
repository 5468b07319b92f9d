package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInvariantsDetectsDesync(t *testing.T) {
	s := newTestState(t, 7, Rules{})
	tok := s.Player(PlayerOne).Token(0)

	// position without occupancy
	tok.setPosition(Cell{X: 3, Y: 3})
	err := s.CheckInvariants()
	require.Error(t, err)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.NotEmpty(t, ie.Violations)
	assert.Panics(t, s.mustHoldInvariants)

	// occupancy without position
	tok.reset()
	require.True(t, s.Board().place(tok, Cell{X: 2, Y: 2}))
	assert.Error(t, s.CheckInvariants())

	s.Reset()
	assert.NoError(t, s.CheckInvariants())
}

func TestCheckInvariantsDetectsTerminalMismatch(t *testing.T) {
	s := newTestState(t, 7, Rules{})
	s.phase = PhaseGameOver
	assert.Error(t, s.CheckInvariants(), "game over without outcome")

	s.Reset()
	s.winner = s.Player(PlayerTwo)
	assert.Error(t, s.CheckInvariants(), "winner without escapes")
}

// playRandomGame drives a game with seeded random legal and illegal actions
// and checks the invariants after each one.
func playRandomGame(t *testing.T, rng *rand.Rand, size int, rules Rules) *GameState {
	t.Helper()
	s := newTestState(t, size, rules)

	for step := 0; step < 2000 && !s.IsGameOver(); step++ {
		actions := s.LegalActions()
		switch {
		case len(actions) == 0 || rng.Intn(20) == 0:
			s.SwitchTurn()
		case rng.Intn(10) == 0:
			// an arbitrary request that is usually illegal
			p := s.Player(PlayerID(rng.Intn(PlayerCount) + 1))
			tok := p.Token(rng.Intn(RosterSize))
			c := Cell{X: rng.Intn(size+2) - 1, Y: rng.Intn(size+2) - 1}
			if rng.Intn(2) == 0 {
				s.MoveToken(tok, c)
			} else {
				s.PlaceToken(tok, c)
			}
		default:
			a := actions[rng.Intn(len(actions))]
			tok := s.Player(a.Player).Token(a.TokenID)
			var ok bool
			switch a.Kind {
			case ActionPlace:
				ok = s.PlaceToken(tok, *a.To)
			case ActionMove:
				ok = s.MoveToken(tok, *a.To)
			case ActionEscape:
				ok = s.EscapeToken(tok)
			}
			require.True(t, ok, "legal action %+v rejected", a)
		}

		require.NoError(t, s.CheckInvariants(), "step %d", step)
		for _, p := range s.Players() {
			assert.Equal(t, RosterSize, len(p.Unplaced())+len(p.OnBoard())+len(p.Escaped()))
		}
	}
	return s
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 50; game++ {
		size := []int{5, 7, 9}[game%3]
		rules := Rules{PlacementAvoidsSkip: game%2 == 0}
		s := playRandomGame(t, rng, size, rules)

		if s.IsGameOver() {
			assert.True(t, s.IsStalemate() != (s.Winner() != nil), "game over has exactly one outcome")
		}
	}
}

func TestRandomPlayWithSkipAvoidanceReachesVictory(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	winners := 0
	for game := 0; game < 20; game++ {
		s := playRandomGame(t, rng, 7, Rules{PlacementAvoidsSkip: true})
		if s.Winner() != nil {
			winners++
			assert.True(t, s.Winner().HasWon())
		}
	}
	assert.Positive(t, winners)
}
