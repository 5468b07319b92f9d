package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/grid-escape/game/engine"
	"github.com/wricardo/grid-escape/game/service"
)

// ErrActionLimit is returned when a game does not finish within MaxActions
var ErrActionLimit = errors.New("action limit reached before the game ended")

// Bot plays both seats of one session through the REST API
type Bot struct {
	client     *Client
	strategies [engine.PlayerCount]Strategy
	logger     *zap.Logger

	MaxActions int
	Delay      time.Duration
}

// Summary describes a finished game
type Summary struct {
	SessionID string
	Actions   int
	Passes    int
	Rejected  int
	Winner    engine.PlayerID
	Stalemate bool
	Final     *engine.Snapshot
}

func NewBot(client *Client, p1, p2 Strategy, logger *zap.Logger) *Bot {
	return &Bot{
		client:     client,
		strategies: [engine.PlayerCount]Strategy{p1, p2},
		logger:     logger,
		MaxActions: 1000,
	}
}

// Play drives the session until the game is over
func (b *Bot) Play(ctx context.Context) (*Summary, error) {
	summary := &Summary{SessionID: b.client.SessionID()}

	for summary.Actions < b.MaxActions {
		legal, err := b.client.LegalActions(ctx)
		if err != nil {
			return summary, err
		}
		if legal.GameOver {
			return summary, b.finish(ctx, summary)
		}

		strategy := b.strategies[legal.CurrentPlayer-1]
		choice := strategy.Choose(legal.Actions)

		result, err := b.execute(ctx, choice)
		if err != nil {
			return summary, err
		}
		summary.Actions++
		if choice == nil {
			summary.Passes++
		}
		if !result.Success {
			summary.Rejected++
			b.logger.Warn("action rejected",
				zap.String("session_id", summary.SessionID),
				zap.String("reason", result.Reason),
				zap.String("message", result.Message))
		} else {
			b.logger.Debug("action played",
				zap.String("strategy", strategy.Name()),
				zap.Int("player", int(legal.CurrentPlayer)),
				zap.String("action", string(result.Outcome.Action)),
				zap.String("message", result.Message))
		}
		summary.Final = result.State

		if b.Delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(b.Delay):
			}
		}
	}

	return summary, ErrActionLimit
}

func (b *Bot) execute(ctx context.Context, a *engine.Action) (*service.ActionResult, error) {
	if a == nil {
		return b.client.SwitchTurn(ctx)
	}

	switch a.Kind {
	case engine.ActionPlace:
		tokenID := a.TokenID
		return b.client.Place(ctx, service.PlaceRequest{Player: a.Player, TokenID: &tokenID, X: a.To.X, Y: a.To.Y})
	case engine.ActionMove:
		return b.client.Move(ctx, service.MoveRequest{Player: a.Player, TokenID: a.TokenID, X: a.To.X, Y: a.To.Y})
	case engine.ActionEscape:
		return b.client.Escape(ctx, service.TokenRequest{Player: a.Player, TokenID: a.TokenID})
	default:
		return nil, fmt.Errorf("unsupported action %q", a.Kind)
	}
}

func (b *Bot) finish(ctx context.Context, summary *Summary) error {
	if summary.Final == nil {
		info, err := b.client.Resume(ctx, summary.SessionID)
		if err != nil {
			return err
		}
		summary.Final = info.State
	}
	if summary.Final != nil {
		summary.Winner = summary.Final.Winner
		summary.Stalemate = summary.Final.Stalemate
	}
	b.logger.Info("game over",
		zap.String("session_id", summary.SessionID),
		zap.Int("actions", summary.Actions),
		zap.Int("winner", int(summary.Winner)),
		zap.Bool("stalemate", summary.Stalemate))
	return nil
}
