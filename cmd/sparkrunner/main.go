package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/sparkrunner/portal/cmd/sparkrunner/internal/commands"
	"github.com/sparkrunner/portal/internal/logger"
	"github.com/sparkrunner/portal/internal/telemetry"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Log in with email and password"`
		Register commands.RegisterCmd `cmd:"" help:"Create a new account"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Log out and forget the stored session"`
		Account  commands.AccountCmd  `cmd:"" help:"Show the logged in account"`
		Balance  commands.BalanceCmd  `cmd:"" help:"Show the current balance"`
		Topup    commands.TopupCmd    `cmd:"" help:"Top up the balance"`
		Trips    commands.TripsCmd    `cmd:"" help:"List trip history"`
		Config   commands.ConfigCmd   `cmd:"" help:"Show the effective configuration"`

		ConfigFile string `name:"config" help:"Path to a YAML config file." env:"SPARK_CONFIG" type:"path"`
		Telemetry  bool   `help:"Export traces and metrics over OTLP." env:"SPARK_TELEMETRY"`
		Debug      bool   `help:"Enable debug mode."`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("sparkrunner"),
		kong.Description("SparkRunner account portal."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	shutdown := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if cli.Telemetry {
		var err error
		shutdown, err = telemetry.InitTelemetry(ctx, "sparkrunner", version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(context.Context) error { return nil }
		}
	}

	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		ConfigFile: cli.ConfigFile,
		Stdout:     os.Stdout,
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("Failed to shutdown telemetry")
	}
	cancel()

	cmd.FatalIfErrorf(err)
}
