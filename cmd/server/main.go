package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wireline/internal/app"
	"wireline/internal/applog"
	"wireline/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, logFile, idleThreshold string

	cmd := &cobra.Command{
		Use:   "server <port>",
		Short: "Run the wireline chat server",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument: <port>")
			}
			if _, err := strconv.ParseUint(args[0], 10, 16); err != nil {
				return fmt.Errorf("port %q is not a valid u16: %w", args[0], err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], configPath, logFile, idleThreshold)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&logFile, "log-file", "", "override the configured log file path")
	cmd.Flags().StringVar(&idleThreshold, "idle-threshold", "", "override the idle-to-away duration (e.g. 90s)")

	return cmd
}

func run(portArg, configPath, logFile, idleThreshold string) error {
	bootstrap := applog.New(applog.Options{Level: "info"})

	cfg, resolvedPath, err := config.Load(&bootstrap, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flagOverrides := config.Config{LogFile: logFile}
	if idleThreshold != "" {
		d, err := time.ParseDuration(idleThreshold)
		if err != nil {
			return fmt.Errorf("invalid --idle-threshold: %w", err)
		}
		flagOverrides.IdleThreshold = d
	}
	cfg.UpdateFrom(flagOverrides)
	cfg.Addr = ":" + portArg

	log := applog.New(applog.Options{Level: cfg.LogLevel, FilePath: cfg.LogFile})
	log.Info().Str("config_path", resolvedPath).Str("addr", cfg.Addr).Msg("starting wireline server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, log)
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
