package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railfleet/app"
	"github.com/kilianp07/railfleet/config"
	"github.com/kilianp07/railfleet/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "railfleet",
	Short: "Metro fleet induction planning service",
	RunE:  run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fleet API until interrupted",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. A missing default file falls back
// to the built-in defaults; an explicitly requested one must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
