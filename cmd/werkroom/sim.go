package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterkuimelis/werkroom/internal/config"
	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

// simMaxTurns bounds a simulated game when --max-turns is not set.
const simMaxTurns = 500

func runSim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	games := fs.Int("games", 1, "number of games to simulate")
	quiet := fs.Bool("quiet", false, "print only the results")
	cfg, err := config.Parse(fs, args, defaultPort)
	if err != nil {
		return err
	}
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = simMaxTurns
	}
	ec, err := cfg.Engine([2]bool{true, true}, [2]string{"CPU 1", "CPU 2"})
	if err != nil {
		return err
	}
	// Simulations run headless.
	ec.Pacing = engine.Pacing{}

	var out io.Writer = os.Stdout
	if *quiet {
		out = io.Discard
	}
	tally := simulate(ctx, ec, *games, out)
	fmt.Printf("%d game(s): %s %d, %s %d, unfinished %d\n",
		*games, ec.Names[0], tally.wins[0], ec.Names[1], tally.wins[1], tally.unfinished)
	return ctx.Err()
}

type simTally struct {
	wins       [2]int
	unfinished int
}

// simulate plays n CPU-vs-CPU games. Each game after the first uses the
// next seed so a run is reproducible from its first seed.
func simulate(ctx context.Context, ec engine.Config, n int, out io.Writer) simTally {
	var tally simTally
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		gc := ec
		if ec.Seed != 0 {
			gc.Seed = ec.Seed + int64(i)
		}
		gc.Logger = log.NewTextLogger(out)
		gs, seed, err := simGame(ctx, gc)
		if err != nil {
			fmt.Fprintf(out, "game %d: %v\n", i+1, err)
			tally.unfinished++
			continue
		}
		switch gs.Winner {
		case game.Player1:
			tally.wins[0]++
		case game.Player2:
			tally.wins[1]++
		default:
			tally.unfinished++
		}
		fmt.Fprintf(out, "game %d (seed %d): %s\n", i+1, seed, describe(gs))
	}
	return tally
}

func simGame(ctx context.Context, ec engine.Config) (*game.GameState, int64, error) {
	eng, err := engine.New(ec)
	if err != nil {
		return nil, 0, err
	}
	defer eng.Close()
	if err := eng.Start(); err != nil {
		return nil, eng.Seed(), err
	}
	gs, err := eng.Wait(ctx)
	return gs, eng.Seed(), err
}

func describe(gs *game.GameState) string {
	if gs == nil || !gs.Over() {
		return "no winner"
	}
	return fmt.Sprintf("%s wins after %d turn(s)", gs.Player(gs.Winner).Name, gs.TurnNumber)
}
