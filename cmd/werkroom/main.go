package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/peterkuimelis/werkroom/internal/config"
	wrnet "github.com/peterkuimelis/werkroom/internal/net"
)

// defaultPort is the TCP port for host and join.
const defaultPort = 9000

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	cmd := os.Args[1]
	switch cmd {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "sim":
		err = runSim(ctx, os.Args[2:])
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  werkroom play [--name NAME] [--seed N] [--catalog FILE] [--pacing F]")
	fmt.Println("  werkroom sim  [--games N] [--seed N] [--catalog FILE] [--max-turns N] [--quiet]")
	fmt.Println("  werkroom host [--name NAME] [--port P] [--addr ADDR] [--catalog FILE]")
	fmt.Println("  werkroom join [--name NAME] [--port P] [--addr ADDR]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play against the CPU in this terminal")
	fmt.Println("  sim     Watch CPU-vs-CPU games")
	fmt.Println("  host    Start a game server and play as Player 1")
	fmt.Println("  join    Connect to a game server and play as Player 2")
	fmt.Println()
	fmt.Println("Every flag can also be set with a WERKROOM_* environment variable.")
}

func runPlay(ctx context.Context, args []string) error {
	cfg, err := config.Parse(flag.NewFlagSet("play", flag.ExitOnError), args, defaultPort)
	if err != nil {
		return err
	}
	ec, err := cfg.Engine([2]bool{false, true}, [2]string{cfg.Name, ""})
	if err != nil {
		return err
	}
	return wrnet.Play(ctx, ec, os.Stdin, os.Stdout)
}

func runHost(ctx context.Context, args []string) error {
	cfg, err := config.Parse(flag.NewFlagSet("host", flag.ExitOnError), args, defaultPort)
	if err != nil {
		return err
	}
	ec, err := cfg.Engine([2]bool{}, [2]string{})
	if err != nil {
		return err
	}
	srv := &wrnet.Server{
		Addr:   cfg.ListenAddr(),
		Name:   cfg.Name,
		Engine: ec,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	cfg, err := config.Parse(flag.NewFlagSet("join", flag.ExitOnError), args, defaultPort)
	if err != nil {
		return err
	}
	return wrnet.Connect(ctx, cfg.DialAddr(), cfg.Name, os.Stdin, os.Stdout)
}
