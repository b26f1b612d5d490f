package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/streamflex/streamflex/cmd/streamflex/internal/format"
	"github.com/streamflex/streamflex/pkg/host"
	"github.com/streamflex/streamflex/pkg/remote"
	"github.com/streamflex/streamflex/plugins/baseline"
	"github.com/streamflex/streamflex/plugins/monitor"
	"github.com/streamflex/streamflex/plugins/notes"
)

// version is stamped by the release build; "dev" otherwise.
var version = "dev"

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			initCmd := flag.NewFlagSet("init", flag.ExitOnError)
			initCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: streamflex init [flags]\n\nCreate a .streamflex directory with a starter config.\n\nFlags:\n")
				initCmd.PrintDefaults()
			}
			dir := initCmd.String("dir", ".streamflex", "path to .streamflex directory")
			_ = initCmd.Parse(os.Args[2:])

			if err := runInit(*dir); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		case "mcp":
			mcpCmd := flag.NewFlagSet("mcp", flag.ExitOnError)
			mcpCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: streamflex mcp [flags]\n\nServe the shared-data store as MCP tools on stdio (no TUI).\n\nFlags:\n")
				mcpCmd.PrintDefaults()
			}
			cfgPath := mcpCmd.String("config", "", "path to configuration file")
			dir := mcpCmd.String("dir", ".streamflex", "path to .streamflex directory")
			envFile := mcpCmd.String("env", ".env", "path to .env file (ignored if missing)")
			_ = mcpCmd.Parse(os.Args[2:])

			if err := loadDotEnv(*envFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			if err := runMCP(*cfgPath, *dir); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: streamflex [flags]\n       streamflex <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init  Create a .streamflex directory with a starter config\n  mcp   Serve the shared-data store as MCP tools on stdio\n")
	}

	configPath := flag.String("config", "", "path to configuration file (default: .streamflex/config.yaml or streamflex.yaml)")
	dir := flag.String("dir", ".streamflex", "path to .streamflex directory")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	logFile := flag.String("log", "", "write JSON logs to this file (disabled when empty)")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *dir, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(dirPath string) error {
	configYAML, err := runWizard()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dirPath, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, configYAML, 0o644); err != nil {
		return err
	}

	fmt.Printf("Initialized %s\n", path)

	return nil
}

func run(configPath, dirPath, logFile string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := buildLogger(logFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	h, err := buildHost(configPath, dirPath, logger)
	if err != nil {
		return err
	}

	// Init failures mark the plugin failed and reruns skip it; the rest of
	// the dashboard still comes up.
	if err := h.Start(ctx); err != nil {
		logger.Warn("plugin init", zap.Error(err))
	}
	defer func() { _ = h.Close(context.Background()) }()

	sess := h.NewSession()

	// First pass before the TUI starts so config and plugin errors surface
	// on stderr instead of inside the dashboard.
	frame, err := sess.Rerun(ctx)
	if err != nil {
		return err
	}

	// Detect the background color before bubbletea owns the terminal. The
	// markdown renderer must never query it mid-session.
	format.IsDarkBG = lipgloss.HasDarkBackground()

	model := newAppModel(ctx, h, sess, frame)

	p := tea.NewProgram(model)

	// Send the program reference so the model can start the event bridge.
	go func() {
		p.Send(programReadyMsg{program: p})
	}()

	if fc := h.Config().Remote.Feed; fc.Enabled {
		feed := remote.NewFeed(h.Events(), logger.Named("feed"))
		go func() {
			err := feed.ListenAndServe(ctx, fc.Addr)
			p.Send(feedStoppedMsg{err: err})
		}()
	}

	_, err = p.Run()
	return err
}

func runMCP(configPath, dirPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Stdout carries the MCP transport, so logs go to stderr.
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	h, err := buildHost(configPath, dirPath, logger)
	if err != nil {
		return err
	}

	if err := h.Start(ctx); err != nil {
		logger.Warn("plugin init", zap.Error(err))
	}
	defer func() { _ = h.Close(context.Background()) }()

	srv := remote.NewMCPServer("streamflex", version)
	srv.RegisterBox(h.DataTools())

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

// buildHost loads the config, assembles the host and registers the builtin
// plugins.
func buildHost(configPath, dirPath string, logger *zap.Logger) (*host.Host, error) {
	resolved := resolveConfigPath(configPath, dirPath)

	cfg, err := host.LoadConfig(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no config at %s (run \"streamflex init\" to create one)", resolved)
		}
		return nil, err
	}

	h, err := host.New(cfg, host.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	if err := registerPlugins(h, cfg); err != nil {
		return nil, err
	}

	return h, nil
}

func registerPlugins(h *host.Host, cfg host.Config) error {
	bl := baseline.New()
	if err := h.Register(bl, bl.Metadata()); err != nil {
		return err
	}

	mon, err := monitor.New(baseline.OutputKey, cfg.Settings("monitor"))
	if err != nil {
		return err
	}
	if err := h.Register(mon, mon.Metadata()); err != nil {
		return err
	}

	nt := notes.New()
	return h.Register(nt, nt.Metadata())
}

// buildLogger returns a file-backed JSON logger, or a no-op logger when no
// path is given. The TUI owns stdout and stderr while running.
func buildLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
