// Package notepad parses notepad command configuration and launches the web server.
package notepad

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	entrypoint "github.com/louisbranch/notepad/internal/platform/cmd"
	server "github.com/louisbranch/notepad/internal/services/notes/app"
)

// DefaultDatabaseURL is a SQLite file relative to the working directory.
const DefaultDatabaseURL = "sqlite:///notes.db"

// Config holds notepad command configuration.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:///notes.db"`
	Port        int    `env:"PORT" envDefault:"5000"`
	Debug       bool   `env:"NOTEPAD_DEBUG" envDefault:"false"`
}

// ParseConfig parses the process environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return parseFlags(cfg, fs, args)
}

// ParseConfigFrom parses an explicit environment map and flags into Config.
func ParseConfigFrom(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFrom(&cfg, environ); err != nil {
		return Config{}, err
	}
	return parseFlags(cfg, fs, args)
}

func parseFlags(cfg Config, fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, fmt.Errorf("flag parser is required")
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Show error detail on server error pages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range 1-65535", cfg.Port)
	}
	return cfg, nil
}

// Run starts the notepad web server until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNotepad, func(ctx context.Context) error {
		if cfg.Debug {
			log.Printf("debug output enabled")
		}
		return server.Run(ctx, server.Config{
			DatabaseURL: cfg.DatabaseURL,
			Port:        cfg.Port,
			Debug:       cfg.Debug,
		})
	})
}
