// Command autoplay plays complete Grid Escape games against a running
// server through its REST API. Each seat follows a simple strategy, which
// makes it handy for smoke testing a deployment and for filling the
// WebSocket viewer with live games.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-escape/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play Grid Escape games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GRID_ESCAPE_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "Configuration ID for new sessions"},
			&cli.StringFlag{Name: "continue", Usage: "Reset and replay an existing session by ID"},
			&cli.StringFlag{Name: "p1", Value: "greedy", Usage: "Player 1 strategy (greedy or random)"},
			&cli.StringFlag{Name: "p2", Value: "random", Usage: "Player 2 strategy (greedy or random)"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Number of games to play"},
			&cli.IntFlag{Name: "max-actions", Value: 1000, Usage: "Maximum actions per game"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed for random strategies"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between actions"},
			&cli.BoolFlag{Name: "v", Usage: "Log every action"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("v") {
		level = "debug"
	}
	logger := logging.Must(level, true)
	defer logger.Sync()

	p1, err := NewStrategy(cmd.String("p1"), uint64(cmd.Int("seed")))
	if err != nil {
		return err
	}
	p2, err := NewStrategy(cmd.String("p2"), uint64(cmd.Int("seed"))+1)
	if err != nil {
		return err
	}

	client := NewClient(cmd.String("url"))
	tally := map[string]int{}
	for game := 1; game <= int(cmd.Int("games")); game++ {
		if err := prepareSession(ctx, client, cmd.String("continue"), cmd.String("config")); err != nil {
			return err
		}

		bot := NewBot(client, p1, p2, logger)
		bot.MaxActions = int(cmd.Int("max-actions"))
		bot.Delay = cmd.Duration("delay")

		summary, err := bot.Play(ctx)
		if err != nil {
			return fmt.Errorf("game %d in session %s: %w", game, client.SessionID(), err)
		}
		printSummary(cmd.Root().Writer, game, summary)
		tally[outcome(summary)]++
	}

	fmt.Fprintf(cmd.Root().Writer, "\nResults: player 1 %d, player 2 %d, stalemate %d\n",
		tally["player 1"], tally["player 2"], tally["stalemate"])
	return nil
}

// prepareSession resets the given session, or creates a new one
func prepareSession(ctx context.Context, client *Client, sessionID, configID string) error {
	if sessionID == "" {
		_, err := client.CreateSession(ctx, configID)
		return err
	}
	if _, err := client.Resume(ctx, sessionID); err != nil {
		return err
	}
	_, err := client.Reset(ctx)
	return err
}

func outcome(s *Summary) string {
	if s.Stalemate {
		return "stalemate"
	}
	return fmt.Sprintf("player %d", s.Winner)
}

func printSummary(w io.Writer, game int, s *Summary) {
	fmt.Fprintf(w, "Game %d (session %s): %s after %d actions (%d passes, %d rejected) at %s\n",
		game, s.SessionID, outcome(s), s.Actions, s.Passes, s.Rejected, time.Now().Format(time.TimeOnly))
}
