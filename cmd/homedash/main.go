// Homedash is a terminal dashboard and command-line client for a
// home-automation controller.
//
// It polls the controller's /status endpoint, renders sensors and actuators
// in an interactive dashboard, and sends control commands: alarm, arming,
// PIN entry, kitchen timer, RGB light and scripted scenarios.
//
// Usage:
//
//	homedash [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'homedash --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/homedash/internal/config"
	"github.com/muurk/homedash/internal/discovery"
	"github.com/muurk/homedash/internal/logging"
	"github.com/muurk/homedash/internal/version"
)

// reportedError marks a failure whose details were already printed
type reportedError struct {
	error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global state resolved by setup before any command runs
var (
	cfgFile string
	cfg     *config.Config
	loader  = config.NewLoader()
)

var rootCmd = &cobra.Command{
	Use:   "homedash",
	Short: "Home automation dashboard",
	Long: `A terminal dashboard and command-line client for the home automation
controller.

Shows live sensor and actuator state polled from the controller backend and
sends control commands: alarm, arming, PIN entry, kitchen timer, RGB light and
scripted scenarios.

If no command is specified, the interactive dashboard will launch automatically.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runDashboard,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/homedash/config.yaml)")
	pf.String("backend", "", "Backend URL, or an instance name (saved by 'homedash scan --save' or looked up over mDNS)")
	pf.Duration("poll-interval", 0, "Status polling period (default 1s)")
	pf.Duration("request-timeout", 0, "Timeout for each backend request (default 3s)")
	pf.String("log-level", "", "Log level (debug, info, warn, error); silent when unset")
	pf.String("log-file", "", "Write logs to this file instead of stdout")

	rootCmd.Flags().String("tab", "overview", "Tab to open (overview, pi1, pi2, pi3)")

	rootCmd.AddCommand(versionCmd)
}

// setup resolves the configuration and initializes logging
func setup(cmd *cobra.Command, args []string) error {
	loader.SetLocator(locateBackend)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}

	c, err := loader.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	if err := logging.Initialize(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logging.Debug("Configuration loaded",
		zap.String("file", loader.ConfigFileUsed()),
		zap.String("backend", cfg.BackendURL),
		zap.Duration("poll_interval", cfg.PollInterval))
	return nil
}

// locateBackend finds a --backend name that is not saved in the config by
// asking the LAN over mDNS
func locateBackend(ctx context.Context, name string, d config.DiscoveryConfig) (string, error) {
	s := &discovery.Scanner{Timeout: d.Timeout, Service: d.Service, Domain: d.Domain}
	return s.Locate(ctx, name)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "homedash %s\n", version.Full())
	},
}
