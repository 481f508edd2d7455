// Homedash-sim is an in-memory stand-in for the home automation controller
// backend.
//
// It serves the same HTTP/JSON API as the real controller and reproduces its
// behaviour: arming delay, PIN-based disarm, door light on motion, people
// counting from the door distance trend, kitchen timer and RGB light. Use it
// to develop against homedash without the Raspberry Pi hardware.
//
// Usage:
//
//	homedash-sim serve [flags]
//
// See 'homedash-sim serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/homedash/internal/config"
	"github.com/muurk/homedash/internal/discovery"
	"github.com/muurk/homedash/internal/logging"
	"github.com/muurk/homedash/internal/simulator"
	"github.com/muurk/homedash/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "homedash-sim",
	Short: "Home automation controller simulator",
	Long: `An in-memory simulator of the home automation controller backend.

It serves the controller's HTTP/JSON API so the homedash dashboard and CLI can
be used without the Raspberry Pi hardware.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	cfgFile string
	latency time.Duration
	httpLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated backend",
	Long: `Start the simulated controller backend.

Settings come from the simulator section of the homedash config file,
HOMEDASH_SIMULATOR_* environment variables and the flags below. With
--advertise the simulator announces itself over mDNS so 'homedash scan' can
find it.`,
	Example: `  # Serve on the default address (127.0.0.1:5001)
  homedash-sim serve

  # Serve on all interfaces and announce over mDNS
  homedash-sim serve --listen :5001 --advertise

  # Exercise slow-backend handling
  homedash-sim serve --latency 2s --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/homedash/config.yaml)")
	f.String("listen", "", "Listen address (default 127.0.0.1:5001)")
	f.Bool("advertise", false, "Announce the simulator over mDNS")
	f.String("pin", "", "Keypad PIN that arms and disarms the system (default 1234)")
	f.Duration("arm-delay", 0, "Delay between arming and armed (default 10s)")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
	f.String("log-file", "", "Write logs to this file instead of stdout")
	f.DurationVar(&latency, "latency", 0, "Delay every response by this long")
	f.BoolVar(&httpLog, "http-log", false, "Log every HTTP request")
}

func runServe(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load(cfgFile)
	if err != nil {
		return err
	}
	sim := cfg.Simulator

	// The simulator is a server; default to info-level logs
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	if err := logging.Initialize(logging.Options{Level: level, File: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctrl := simulator.NewController(simulator.Options{
		ArmDelay: sim.ArmDelay,
		PIN:      sim.PIN,
	})
	server := simulator.NewServer(ctrl, simulator.ServerOptions{
		HTTPLog: httpLog,
		Latency: latency,
	})

	if sim.Advertise {
		port, err := listenPort(sim.Listen)
		if err != nil {
			return err
		}
		ad, err := discovery.Advertise(sim.Name, port, map[string]string{
			"version": version.Version,
			"path":    "/status",
		})
		if err != nil {
			return err
		}
		defer ad.Shutdown()
	}

	logging.Info("Starting simulator",
		zap.String("listen", sim.Listen),
		zap.Duration("arm_delay", sim.ArmDelay),
		zap.Duration("latency", latency),
		zap.Bool("advertise", sim.Advertise))

	return server.ListenAndServe(cmd.Context(), sim.Listen)
}

// listenPort extracts the port of a listen address such as ":5001"
func listenPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("listen address %q needs an explicit port to advertise", addr)
	}
	return port, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "homedash-sim %s\n", version.Full())
	},
}
