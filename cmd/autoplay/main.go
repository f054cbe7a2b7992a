// Command autoplay plays a Dragon Caves session against a running server by
// flipping chit cards for every dragon until one of them gets home.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/dragon-caves-game/game/engine"
)

const sessionFile = ".session"

// Player drives one session with a strategy
type Player struct {
	client   *Client
	strategy *MemoryStrategy
	out      io.Writer
	verbose  bool
	delay    time.Duration
}

// Summary reports how a play-through ended
type Summary struct {
	SessionID string
	Flips     int
	Turns     int
	GameOver  bool
	Winner    int
}

var errNoCard = errors.New("no face-down card left to flip")

// Play flips cards until the game is over or maxFlips is reached
func (p *Player) Play(ctx context.Context, state *engine.GameState, maxFlips int) (*Summary, error) {
	summary := &Summary{SessionID: p.client.SessionID(), Winner: engine.NoWinner}

	for !state.GameOver && summary.Flips < maxFlips {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		p.strategy.Observe(state)
		card := p.strategy.NextCard(state)
		if card < 0 {
			return summary, errNoCard
		}

		result, err := p.client.Flip(ctx, card)
		if err != nil {
			return summary, err
		}
		summary.Flips++

		if result.Flip != nil {
			p.strategy.Remember(result.Flip.CardIndex, result.Flip.Card)
			if p.verbose {
				p.logFlip(result.Flip)
			}
		}
		if result.GameState == nil {
			return summary, fmt.Errorf("flip card %d: response has no game state", card)
		}
		state = result.GameState

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}

	summary.Turns = state.TurnNumber
	summary.GameOver = state.GameOver
	summary.Winner = state.Winner
	return summary, nil
}

func (p *Player) logFlip(flip *engine.FlipResult) {
	switch {
	case flip.Mismatch:
		fmt.Fprintf(p.out, "dragon %d flipped #%d %s×%d: mismatch\n", flip.Player, flip.CardIndex, flip.Card.Animal, flip.Card.Count)
	case flip.Outcome.Moved:
		fmt.Fprintf(p.out, "dragon %d flipped #%d %s×%d: %d→%d\n", flip.Player, flip.CardIndex, flip.Card.Animal, flip.Card.Count,
			flip.Outcome.From, flip.Outcome.To)
	default:
		fmt.Fprintf(p.out, "dragon %d flipped #%d %s×%d: stays on %d\n", flip.Player, flip.CardIndex, flip.Card.Animal, flip.Card.Count,
			flip.Outcome.From)
	}
	if flip.Outcome.Bumped {
		fmt.Fprintf(p.out, "  bumped dragon %d to %d\n", flip.Outcome.BumpedID, flip.Outcome.BumpedTo)
	}
}

// openSession resumes the given or saved session, or creates a new one
func openSession(ctx context.Context, client *Client, out io.Writer, resumeID, configID string) (*engine.GameState, error) {
	if resumeID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resumeID = string(bytes.TrimSpace(data))
		}
	}

	if resumeID != "" {
		state, err := client.Resume(ctx, resumeID)
		if err == nil {
			fmt.Fprintf(out, "🔄 Resuming session: %s\n", resumeID)
			return state, nil
		}
		fmt.Fprintf(out, "⚠️  Failed to resume session %s (may be expired): %v\n", resumeID, err)
	}

	state, err := client.CreateSession(ctx, configID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✨ Session created: %s\n", client.SessionID())

	if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
		fmt.Fprintf(out, "Warning: Failed to save session ID: %v\n", err)
	}
	return state, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	out := os.Stdout
	client := NewClient(cmd.String("url"))
	fmt.Fprintf(out, "Connecting to game server at %s\n", cmd.String("url"))

	state, err := openSession(ctx, client, out, cmd.String("continue"), cmd.String("config"))
	if err != nil {
		return err
	}

	if state.GameOver || cmd.Bool("reset") {
		fmt.Fprintf(out, "🔄 Resetting game state...\n")
		if state, err = client.Reset(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Ring: %d tiles, cave every %d, %d dragons\n", state.BoardLength, state.CaveDistance, len(state.Dragons))

	player := &Player{
		client:   client,
		strategy: NewMemoryStrategy(),
		out:      out,
		verbose:  cmd.Bool("verbose"),
		delay:    time.Duration(cmd.Int("delay")) * time.Millisecond,
	}

	summary, err := player.Play(ctx, state, int(cmd.Int("max-flips")))
	if err != nil {
		return fmt.Errorf("session %s after %d flips: %w", client.SessionID(), summary.Flips, err)
	}

	if !summary.GameOver {
		return fmt.Errorf("❌ no winner after %d flips (session %s)", summary.Flips, summary.SessionID)
	}
	fmt.Fprintf(out, "\n🎉 Dragon %d wins after %d flips over %d turns!\n", summary.Winner, summary.Flips, summary.Turns)
	fmt.Fprintf(out, "Session: %s\n", summary.SessionID)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a Dragon Caves session to the end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_URL")},
			&cli.StringFlag{Name: "config", Usage: "Game configuration id (classic, duo, trio, grand, seeded)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.BoolFlag{Name: "reset", Usage: "Start a fresh game in the session before playing"},
			&cli.IntFlag{Name: "max-flips", Value: 5000, Usage: "Maximum flips before giving up"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between flips in milliseconds (0 = no delay)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Print every flip"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
