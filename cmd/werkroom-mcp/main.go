package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/werkroom/internal/config"
	wrmcp "github.com/peterkuimelis/werkroom/internal/mcp"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:], 9999)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ec, err := cfg.Engine([2]bool{}, [2]string{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tools := wrmcp.NewTools(ec, cfg.ListenAddr())
	defer tools.Close()

	s := server.NewMCPServer("werkroom", "1.0.0", server.WithToolCapabilities(false))
	wrmcp.RegisterTools(s, tools)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
