package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/presence-relay/internal/app"
	"github.com/vovakirdan/presence-relay/internal/config"
	"github.com/vovakirdan/presence-relay/internal/log"
)

type flags struct {
	configPath        string
	addr              string
	logLevel          string
	logFormat         string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "presence-relay",
		Short:         "Real-time presence and chat relay over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), f, cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to config file (default ./config.yaml)")
	pf.StringVar(&f.addr, "addr", "", "HTTP listen address")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (console, json)")
	pf.DurationVar(&f.readHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	pf.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := resolve(f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return root
}

// resolve loads configuration and applies flag overrides. Boot messages go to
// logOut so that stdout stays clean for the config subcommand.
func resolve(f flags, logOut io.Writer) (config.Config, string, error) {
	bootLog := log.NewWithWriter(logOut, "info", "console")
	cfg, path, err := config.Load(bootLog, f.configPath)
	if err != nil {
		return cfg, path, err
	}
	cfg.UpdateFrom(config.Config{
		Addr:              f.addr,
		LogLevel:          f.logLevel,
		LogFormat:         f.logFormat,
		ReadHeaderTimeout: f.readHeaderTimeout,
		ShutdownTimeout:   f.shutdownTimeout,
	})
	return cfg, path, cfg.Validate()
}

func serve(parent context.Context, f flags, logOut io.Writer) error {
	cfg, path, err := resolve(f, logOut)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", path).Msg("configuration loaded")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting presence relay")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
