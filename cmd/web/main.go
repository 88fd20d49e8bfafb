package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/werkroom/internal/config"
	"github.com/peterkuimelis/werkroom/internal/web"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:], 8080)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ec, err := cfg.Engine([2]bool{}, [2]string{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv := web.NewServer(ec)
	defer srv.Close()

	log.Printf("werkroom web UI listening on %s", cfg.ListenAddr())
	if err := srv.ListenAndServe(cfg.ListenAddr()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
