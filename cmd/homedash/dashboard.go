package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/config"
	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/logging"
	"github.com/muurk/homedash/internal/panels"
	"github.com/muurk/homedash/internal/status"
	"github.com/muurk/homedash/internal/tui"
	"github.com/muurk/homedash/internal/ui"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("lines", false, "Print one line per update even on a terminal")
}

// pipeline is the polling core wired to the configured backend
type pipeline struct {
	store      *status.Store
	poller     *status.Poller
	dispatcher *control.Dispatcher
}

func newPipeline() *pipeline {
	client := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	store := status.NewStore()
	poller := status.NewPoller(client, store, cfg.PollInterval, cfg.RequestTimeout)
	return &pipeline{
		store:      store,
		poller:     poller,
		dispatcher: control.NewDispatcher(client, poller, cfg.RequestTimeout),
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the controller status",
	Long: `Poll the controller and follow its status.

On a terminal this opens the dashboard. When stdout is not a terminal (a pipe
or a file), or with --lines, one summary line is printed per poll instead.`,
	Example: `  # Log status changes to a file
  homedash watch > status.log

  # Line output on a terminal
  homedash watch --lines --poll-interval 5s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	lines, _ := cmd.Flags().GetBool("lines")
	if !lines && ui.IsTerminal(os.Stdout) {
		return startDashboard(cmd.Context(), tui.TabOverview)
	}

	p := newPipeline()
	ctx := cmd.Context()
	if err := p.poller.Start(ctx); err != nil {
		return err
	}
	defer p.poller.Stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.store.Updates():
			fmt.Fprintln(out, ui.StatusLine(p.store.Current(), p.store.ErrorMessage(), time.Now()))
		}
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tab")
	tab, ok := tui.ParseTab(name)
	if !ok {
		return fmt.Errorf("unknown tab %q: want overview, pi1, pi2 or pi3", name)
	}

	if !ui.IsTerminal(os.Stdout) {
		return errors.New("stdout is not a terminal; use 'homedash watch' or 'homedash status' instead")
	}
	return startDashboard(cmd.Context(), tab)
}

// startDashboard runs the TUI until the user quits
func startDashboard(ctx context.Context, tab tui.Tab) error {
	if err := redirectLogs(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := newPipeline()
	if err := p.poller.Start(ctx); err != nil {
		return err
	}
	defer p.poller.Stop()

	model := tui.New(tui.Options{
		Context:    ctx,
		Store:      p.store,
		Dispatcher: p.dispatcher,
		Panels:     panels.NewBuilder(cfg.Grafana),
		BackendURL: cfg.BackendURL,
		StartTab:   tab,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	stats := p.poller.Stats()
	logging.Info("Dashboard closed",
		zap.Int64("fetches", stats.Fetches),
		zap.Int64("failures", stats.Failures),
		zap.Int64("skipped_ticks", stats.Skipped),
		zap.Int64("refreshes", stats.Triggered))
	return nil
}

// redirectLogs keeps zap off the terminal while the dashboard owns it
func redirectLogs() error {
	// log_level is also fed by HOMEDASH_LOG_LEVEL through the loader
	if cfg.LogLevel == "" || cfg.LogFile != "" {
		return nil
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return logging.Initialize(logging.Options{Level: cfg.LogLevel, File: filepath.Join(dir, "homedash.log")})
}
