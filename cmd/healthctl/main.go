package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/healthctl/internal/collector"
	"codeberg.org/mutker/healthctl/internal/config"
	"codeberg.org/mutker/healthctl/internal/errors"
	"codeberg.org/mutker/healthctl/internal/health"
	"codeberg.org/mutker/healthctl/internal/logger"
	"codeberg.org/mutker/healthctl/internal/pid"
	"codeberg.org/mutker/healthctl/internal/report"
	"codeberg.org/mutker/healthctl/internal/smart"
	"codeberg.org/mutker/healthctl/internal/telemetry"
	"github.com/spf13/pflag"
)

const clearScreen = "\033[H\033[2J"

type renderFunc func(io.Writer, *telemetry.Snapshot, health.Result) error

func main() {
	os.Exit(execute())
}

// execute returns the process exit code so that deferred cleanup runs first.
func execute() int {
	logger.Init(config.DefaultLogLevel, logger.IsService())

	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		logError(err)
		return 1
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if cfg.Watch {
		lock, err := pid.Acquire(os.TempDir(), pid.DefaultName)
		if err != nil {
			logError(err)
			return 1
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn().Err(err).Msg("failed to remove PID file")
			}
		}()
	}

	c := collector.New(collectorConfig(cfg))
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release GPU handle")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg, c, os.Stdout); err != nil {
		logError(err)
		return 1
	}

	return 0
}

func logError(err error) {
	var e errors.Error
	if errors.As(err, &e) {
		logger.ErrorWithCode(e).Msg(errors.GetErrorMessage(e.Code()))
		return
	}
	logger.Error().Err(err).Msg("error in main loop")
}

// loadConfig reports any configuration failure as ErrInitFailed.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}

	return cfg, nil
}

func collectorConfig(cfg *config.Config) collector.Config {
	cc := collector.DefaultConfig()
	cc.Smart = smart.Config{
		Device:   cfg.Device,
		Smartctl: cfg.Smartctl,
		Sudo:     cfg.Sudo,
		Timeout:  cfg.SmartTimeout,
	}
	cc.CPUSample = cfg.CPUSample
	cc.DisableGPU = cfg.NoGPU

	return cc
}

func renderer(format string) renderFunc {
	if config.Format(format) == config.FormatJSON {
		return report.JSON
	}
	return report.Table
}

type snapshotSource interface {
	Collect(ctx context.Context) *telemetry.Snapshot
}

// run evaluates once, or keeps refreshing in watch mode until ctx is done.
func run(ctx context.Context, cfg *config.Config, src snapshotSource, w io.Writer) error {
	render := renderer(cfg.Format)
	clearFirst := cfg.Watch && config.Format(cfg.Format) == config.FormatTable

	cycle := func() error {
		s := src.Collect(ctx)
		res := health.Evaluate(s)
		logger.Debug().Int("score", res.Total).Int("issues", len(res.Issues)).Msg("Snapshot evaluated")

		if clearFirst {
			if _, err := io.WriteString(w, clearScreen); err != nil {
				return errors.New().Wrap(errors.ErrRender, err)
			}
		}
		return render(w, s, res)
	}

	if err := cycle(); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	ticker := newTicker(cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if err := cycle(); err != nil {
				return err
			}
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
