// Package config reads command configuration from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/engine"
)

// Config holds the settings shared by every command. Flags override the
// environment.
type Config struct {
	Catalog  string        `env:"WERKROOM_CATALOG"`
	Seed     int64         `env:"WERKROOM_SEED"`
	CPUThink time.Duration `env:"WERKROOM_CPU_THINK" envDefault:"1500ms"`
	Pacing   float64       `env:"WERKROOM_PACING" envDefault:"1"`
	Port     int           `env:"WERKROOM_PORT"`
	Addr     string        `env:"WERKROOM_ADDR"`
	MaxTurns int           `env:"WERKROOM_MAX_TURNS"`
	Name     string        `env:"WERKROOM_NAME"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment and then args into a Config. port is used
// when WERKROOM_PORT is unset.
func Parse(fs *flag.FlagSet, args []string, port int) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port == 0 {
		cfg.Port = port
	}
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "card catalog YAML (default: built-in set)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (0 for random)")
	fs.DurationVar(&cfg.CPUThink, "cpu-think", cfg.CPUThink, "CPU thinking time")
	fs.Float64Var(&cfg.Pacing, "pacing", cfg.Pacing, "delay factor for automatic phases (0 = instant)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "TCP port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on or connect to (overrides -port)")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "stop after this many turns (0 = no limit)")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "player name")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	if cfg.Pacing < 0 {
		return Config{}, fmt.Errorf("pacing must not be negative, got %g", cfg.Pacing)
	}
	return cfg, nil
}

// ListenAddr is the address servers listen on.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// DialAddr is the address clients connect to.
func (c Config) DialAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf("localhost:%d", c.Port)
}

// EnginePacing returns the default pacing with the configured CPU
// thinking time, scaled by Pacing.
func (c Config) EnginePacing() engine.Pacing {
	p := engine.DefaultPacing()
	p.CPUThink = c.CPUThink
	return p.Scaled(c.Pacing)
}

// Engine builds an engine configuration for the given seats.
func (c Config) Engine(cpu [2]bool, names [2]string) (engine.Config, error) {
	cat, err := catalog.LoadOrDefault(c.Catalog)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Catalog:  cat,
		Names:    names,
		CPU:      cpu,
		Seed:     c.Seed,
		Pacing:   c.EnginePacing(),
		MaxTurns: c.MaxTurns,
	}, nil
}
