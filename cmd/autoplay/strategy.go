package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/grid-escape/game/engine"
)

// Strategy picks the next action from the legal ones. A nil result means
// the bot should pass the turn.
type Strategy interface {
	Name() string
	Choose(actions []engine.Action) *engine.Action
}

// NewStrategy returns the named strategy
func NewStrategy(name string, seed uint64) (Strategy, error) {
	switch name {
	case "greedy", "":
		return greedyStrategy{}, nil
	case "random":
		return &randomStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want greedy or random)", name)
	}
}

// greedyStrategy escapes whenever it can, then advances the token closest
// to its escape edge, and only places when nothing on the board can move.
type greedyStrategy struct{}

func (greedyStrategy) Name() string { return "greedy" }

func (greedyStrategy) Choose(actions []engine.Action) *engine.Action {
	var best *engine.Action
	bestScore := -1 << 31
	for i := range actions {
		if score := greedyScore(actions[i]); score > bestScore {
			best, bestScore = &actions[i], score
		}
	}
	return best
}

func greedyScore(a engine.Action) int {
	switch {
	case a.Kind == engine.ActionEscape || a.Escapes:
		return 1000
	case a.Kind == engine.ActionMove:
		// Lower coordinates are closer to both escape edges
		return 500 - (a.To.X + a.To.Y)
	case a.Kind == engine.ActionPlace:
		return 0
	default:
		return -1
	}
}

type randomStrategy struct {
	rng *rand.Rand
}

func (s *randomStrategy) Name() string { return "random" }

func (s *randomStrategy) Choose(actions []engine.Action) *engine.Action {
	if len(actions) == 0 {
		return nil
	}
	return &actions[s.rng.IntN(len(actions))]
}
