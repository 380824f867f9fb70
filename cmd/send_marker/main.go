package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/zcu-kiv/marker/internal/config"
	"github.com/zcu-kiv/marker/internal/logging"
	intOtel "github.com/zcu-kiv/marker/internal/otel"
	"github.com/zcu-kiv/marker/internal/sender"
	"github.com/zcu-kiv/marker/pkg/marker"
)

// build info - set at build time via ldflags
var (
	Version     string = "0.0.1"
	BuildDate   string = "unknown"
	ProgramName string = "send_marker"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		panic(err)
	}
}

// run sends one marker as configured by args, the config file and the
// environment. Progress lines go to stdout; logs never do.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	sessionStart := time.Now()

	fs := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if err := config.BindFlags(fs); err != nil {
		return err
	}
	configDir, err := fs.GetString("config-dir")
	if err != nil {
		return err
	}

	slogManager := logging.NewSlogManager()
	slogManager.Setup(nil, "info", nil)

	cfgErr := config.Load(configDir)

	var logWriter io.Writer
	if logsDir := config.GetString("logsDir"); logsDir != "" {
		logFile, err := logging.OpenLogFile(logsDir, ProgramName, sessionStart)
		if err != nil {
			return err
		}
		defer func() { _ = logFile.Close() }()
		logWriter = logFile
	}

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(ctx, intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
		}
	}()

	slogManager.Setup(logWriter, config.GetString("logLevel"), provider.LoggerProvider())
	logger := slogManager.Logger()

	if cfgErr != nil {
		logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		logger.Debug("Loaded config", "dir", configDir)
	}
	logger.Debug("Starting up", "version", Version, "buildDate", BuildDate)

	s, err := newSender(stdout, logger, provider)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

func newSender(stdout io.Writer, logger *slog.Logger, provider *intOtel.Provider) (*sender.Sender, error) {
	senderCfg := config.GetSenderConfig()
	t, err := createTransport(senderCfg, logger)
	if err != nil {
		return nil, err
	}

	mc := config.GetMarkerConfig()
	m := marker.New(mc.From)
	m.StrData = mc.StrData
	m.NumData = mc.NumData

	return sender.New(sender.Config{
		Address:  senderCfg.Address,
		Marker:   m,
		Progress: stdout,
	}, sender.Dependencies{
		Transport: t,
		Logger:    logger,
		Meter:     provider.Meter(ProgramName),
	})
}
