// Package main is the entry point for the streembit node host.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"streembit-go/application"
	"streembit-go/core/event"
	"streembit-go/core/eventbus"
	"streembit-go/infrastructure/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "streembit",
		Short:        "Streembit node host",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newLevelsCmd(), newChannelsCmd())
	return root
}

type runFlags struct {
	config   string
	loglevel string
	logdir   string
	logfile  string
	noFile   bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Configure logging, start the event bus and wait for a signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "YAML logging configuration file")
	cmd.Flags().StringVar(&flags.loglevel, "loglevel", "", "minimum log level (overrides the config file)")
	cmd.Flags().StringVar(&flags.logdir, "logdir", "", "log directory (default <cwd>/logs)")
	cmd.Flags().StringVar(&flags.logfile, "logfile", "", "primary log file name")
	cmd.Flags().BoolVar(&flags.noFile, "no-file", false, "log to the console only")

	return cmd
}

// buildOptions merges the config file with command line overrides.
func buildOptions(flags *runFlags) (*logging.Options, error) {
	opts := &logging.Options{
		Level:   "debug",
		Console: &logging.ConsoleOptions{},
		File:    &logging.FileOptions{},
	}

	if flags.config != "" {
		loaded, err := logging.LoadOptions(flags.config)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}

	if flags.loglevel != "" {
		opts.Level = flags.loglevel
	}
	if flags.noFile {
		opts.File = nil
	} else if flags.logdir != "" || flags.logfile != "" {
		if opts.File == nil {
			opts.File = &logging.FileOptions{}
		}
		if flags.logdir != "" {
			opts.File.Dir = flags.logdir
		}
		if flags.logfile != "" {
			opts.File.Name = flags.logfile
		}
	}

	return opts, nil
}

func run(ctx context.Context, flags *runFlags) error {
	opts, err := buildOptions(flags)
	if err != nil {
		return err
	}

	logger := logging.Default()
	if err := logger.Configure(opts); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logging.SetDefault(logger)

	host := application.NewHost(&application.HostConfig{
		Bus:    eventbus.Default(),
		Logger: logger,
	})
	if err := host.Start(); err != nil {
		logger.Error(err)
		return err
	}

	logger.Info("streembit host running, press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("shutting down")

	return host.Stop()
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List log levels from most to least urgent",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range logging.Levels() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
		},
	}
}

func newChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List event bus channels",
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range event.Channels() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
		},
	}
}
