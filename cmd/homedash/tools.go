package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/muurk/homedash/internal/config"
	"github.com/muurk/homedash/internal/discovery"
	"github.com/muurk/homedash/internal/panels"
	"github.com/muurk/homedash/internal/ui"
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(panelsCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	scanCmd.Flags().Duration("scan-timeout", 0, "How long to listen for answers (default 5s)")
	scanCmd.Flags().Bool("save", false, "Remember discovered backends in the config file")

	panelsCmd.Flags().String("grafana-url", "", "Grafana base URL (default http://localhost:3000)")

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

// scanCmd discovers controllers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for controller backends on the network",
	Long: `Scan for controller backends using mDNS/DNS-SD discovery.

Backends (including 'homedash-sim serve --advertise') announce themselves as
_homedash._tcp. With --save, each one found is stored in the config file under
its instance name so it can be selected with --backend <name>.`,
	Example: `  # Scan for 5 seconds (default)
  homedash scan

  # Longer scan, then remember what was found
  homedash scan --scan-timeout 15s --save

  # Use a saved backend
  homedash --backend pi1-controller`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	scanner := &discovery.Scanner{
		Timeout: cfg.Discovery.Timeout,
		Service: cfg.Discovery.Service,
		Domain:  cfg.Discovery.Domain,
	}

	p.PrintHeader("Scan", "homedash scan",
		ui.Field{Key: "Service", Value: scanner.Service + "." + scanner.Domain},
		ui.Field{Key: "Timeout", Value: scanner.Timeout.String()})

	backends, err := scanner.Scan(cmd.Context())
	if err != nil {
		p.PrintError("Scan failed", err, nil)
		return reportedError{err}
	}

	if len(backends) == 0 {
		r := ui.NewWarningResult("No backends found")
		r.Troubleshooting = []string{
			"Ensure the controller is running and on the same network",
			"mDNS does not cross routers or most VPNs",
			"Try increasing --scan-timeout for slower networks",
			"Use --backend http://host:port to connect without discovery",
		}
		p.Println(r.SetWidth(p.Width()).Render())
		return nil
	}

	now := time.Now()
	for _, b := range backends {
		fields := []ui.Field{
			{Key: "URL", Value: b.BaseURL()},
			{Key: "Host", Value: b.Hostname},
			{Key: "Seen", Value: humanize.RelTime(b.DiscoveredAt, now, "ago", "from now")},
		}
		if v := b.GetMetadata("version"); v != "" {
			fields = append(fields, ui.Field{Key: "Version", Value: v})
		}
		p.PrintSuccess(b.Instance, fields...)
	}

	if save, _ := cmd.Flags().GetBool("save"); !save {
		p.Println(fmt.Sprintf("Found %d backend(s). Use 'homedash --backend <url>' to connect, or rerun with --save.", len(backends)))
		return nil
	}

	for _, b := range backends {
		cfg.RememberBackend(b.Instance, b.BaseURL(), b.DiscoveredAt)
	}
	path, err := config.Write(cfgFile, cfg, true)
	if err != nil {
		return err
	}
	p.PrintSuccess("Backends saved",
		ui.Field{Key: "Count", Value: humanize.Comma(int64(len(backends)))},
		ui.Field{Key: "File", Value: path})
	return nil
}

var panelsCmd = &cobra.Command{
	Use:   "panels [tab]",
	Short: "List the Grafana panel URLs of each Raspberry Pi",
	Long: `List the Grafana panels behind the pi1, pi2 and pi3 tabs of the dashboard,
with URLs built from the grafana section of the configuration.`,
	Example: `  homedash panels
  homedash panels pi2 --grafana-url http://grafana.lan:3000`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"pi1", "pi2", "pi3"},
	RunE:      runPanels,
}

func runPanels(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	builder := panels.NewBuilder(cfg.Grafana)

	dashboards := panels.Dashboards
	if len(args) == 1 {
		d, ok := panels.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown tab %q: want pi1, pi2 or pi3", args[0])
		}
		dashboards = []panels.Dashboard{d}
	}

	for _, d := range dashboards {
		links := builder.Links(d)
		fields := make([]ui.Field, 0, len(links))
		for _, l := range links {
			fields = append(fields, ui.Field{Key: l.Code, Value: l.URL})
		}
		p.PrintHeader(d.Tab, dashboardTitle(d), fields...)
	}
	return nil
}

func dashboardTitle(d panels.Dashboard) string {
	return fmt.Sprintf("%s (%d panels)", d.Slug, len(d.Panels))
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := ui.NewPrinter(cmd.OutOrStdout())
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Write(cfgFile, config.Default(), force)
		if errors.Is(err, config.ErrConfigExists) {
			p.PrintWarning("Config file already exists",
				ui.Field{Key: "File", Value: path},
				ui.Field{Key: "Hint", Value: "use --force to overwrite"})
			return reportedError{err}
		}
		if err != nil {
			return err
		}

		p.PrintSuccess("Config file written", ui.Field{Key: "File", Value: path})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
HOMEDASH_* environment variables and flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}

		source := loader.ConfigFileUsed()
		if source == "" {
			source = "none (defaults)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n%s", source, data)
		return nil
	},
}
