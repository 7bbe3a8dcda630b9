package main

import (
	"fmt"
	"os"

	"jobboard-backend/internal/config"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

type CLI struct {
	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP API."`
	Migrate MigrateCmd `cmd:"" help:"Apply the database schema and seed roles."`
	Seed    SeedCmd    `cmd:"" help:"Load a YAML demo fixture."`
}

// runContext is passed to every command's Run method.
type runContext struct {
	Config *config.Config
	Logger zerolog.Logger
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("jobboard"),
		kong.Description("Job board API server."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stderr).Level(cfg.LogLevel).With().Timestamp().Logger()
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	if err := kctx.Run(&runContext{Config: cfg, Logger: logger}); err != nil {
		logger.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
		os.Exit(1)
	}
}
