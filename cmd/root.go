package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"github.com/vzahanych/weather-notify/internal/temperature"
	"github.com/vzahanych/weather-notify/pkg/logger"
	"github.com/vzahanych/weather-notify/pkg/telemetry"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// app holds what the root command initialises before the run.
type app struct {
	configPath string
	noNotify   bool

	cfg  *config.Config
	log  *zap.Logger
	tele *telemetry.Telemetry
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName + " [place]",
		Short: "Show the current weather as a desktop notification",
		Long: `Looks up the current weather for a place and shows it as a desktop notification.

Without a place the location is found from your public IP address and remembered
for a day. The weather snapshot is printed to standard output as JSON.

The OpenWeatherMap API key is read from the ` + config.APIKeyEnv + ` environment variable
or a .env file in the working directory.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initializeServices(cmd)
		},
		RunE: a.runNotify,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.shutdown()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")
	flags.StringP("unit", "u", string(temperature.Celsius), "temperature unit: celsius, fahrenheit or kelvin")
	flags.IntP("precision", "p", temperature.DefaultPrecision, "decimal places of the current temperature")
	flags.BoolVar(&a.noNotify, "no-notify", false, "log the notification instead of showing it")

	return cmd
}

// Execute runs the command line and returns the first failure. It never exits.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &app{}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if a.log != nil {
				a.log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	err := rootCmd(a).ExecuteContext(ctx)
	if err != nil {
		// PostRun is skipped when RunE fails.
		a.shutdown()
	}
	return err
}

func (a *app) initializeServices(cmd *cobra.Command) error {
	// 1. Load config
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	// 2. Initialize logger
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return apperr.Config("logger.New", err)
	}
	a.log = log.With(zap.String("run_id", uuid.NewString()))

	// 3. Initialize telemetry; the run continues without it
	a.tele, err = telemetry.New(cmd.Context(), cfg.Telemetry, Version)
	if err != nil {
		a.log.Warn("Failed to initialize telemetry", zap.Error(err))
	}

	return nil
}

func (a *app) shutdown() {
	if a.tele != nil {
		if err := a.tele.Shutdown(context.Background()); err != nil && a.log != nil {
			a.log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
		a.tele = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// PrintError writes err and every cause below it, one per line.
//
//	Error: weather.Fetch: request for "Atlantis" rejected with status 404
func PrintError(w io.Writer, err error) {
	for i, msg := range apperr.Chain(err) {
		if i == 0 {
			fmt.Fprintf(w, "Error: %s\n", msg)
			continue
		}
		fmt.Fprintf(w, "  caused by: %s\n", msg)
	}
}
