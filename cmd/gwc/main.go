// Package main is the entry point for the gateway console. It loads the
// configuration, starts the services and runs the Bubble Tea program.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/j-veylop/gateway-console/internal/app"
	"github.com/j-veylop/gateway-console/internal/config"
	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/services"
	"github.com/j-veylop/gateway-console/internal/ui/tabs/overview"
	"github.com/j-veylop/gateway-console/internal/ui/tabs/projects"
	"github.com/j-veylop/gateway-console/internal/ui/tabs/security"
	"github.com/j-veylop/gateway-console/internal/ui/tabs/settings"
	"github.com/j-veylop/gateway-console/internal/version"
)

func main() {
	var o config.Overrides
	flags := flag.NewFlagSet("gwc", flag.ContinueOnError)
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "path to the TOML config file")
	flags.StringVar(&o.AdminURL, "admin-url", "", "gateway admin API base URL")
	flags.StringVar(&o.AdminKey, "admin-key", "", "gateway admin key (prefer "+config.EnvAdminKey+")")
	flags.DurationVarP(&o.RefreshInterval, "interval", "i", 0, "sync interval, e.g. 30s")
	flags.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	showVersion := flags.BoolP("version", "v", false, "show version information")
	flags.Usage = func() { printUsage(flags) }

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o config.Overrides) error {
	cfg, err := config.Load(o)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()

	logger.Info("starting gateway console",
		"version", version.Short(),
		"admin_url", cfg.AdminURL,
		"interval", cfg.RefreshInterval,
		"config_file", cfg.ConfigFile,
	)
	for _, w := range cfg.Warnings {
		logger.Warn("config file warning", "detail", w)
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Error("error closing services", "error", closeErr)
		}
	}()

	// The model subscribes to the manager and starts the scheduler in Init.
	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		overview.New(state),
		projects.New(state),
		security.New(state),
		settings.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func printUsage(flags *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Gateway Console - operations console for the LLM gateway admin API

Usage:
  gwc [flags]

Flags:
%s
Keyboard Shortcuts:
  1-4             Overview, Projects, Security, Settings
  Tab/Shift+Tab   Cycle sections
  t, Enter        Toggle the selected project
  n               New project
  r               Sync now
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  %-28s gateway admin API base URL
  %-28s admin key sent as X-Admin-Key
  %-28s sync interval (default 30s)
  %-28s show failed toggles as notifications

Configuration is read from %s and .env files.
`, flags.FlagUsages(),
		config.EnvAdminURL, config.EnvAdminKey, config.EnvRefreshInterval, config.EnvSurfaceToggleFailures,
		config.DefaultConfigPath())
}
