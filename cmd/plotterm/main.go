// Package main is the entry point for the plotterm terminal plotter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/plotterm/plotterm/internal/app"
	"github.com/plotterm/plotterm/internal/config"
	"github.com/plotterm/plotterm/internal/term/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, logClose := parseFlags()
	if logClose != nil {
		defer logClose()
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	opts.Backend = term

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Stop()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() (app.Options, func()) {
	var opts app.Options
	var configPath string
	var logLevel string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Plot script to load at startup")
	flag.StringVar(&opts.ScriptPath, "s", "", "Plot script to load at startup (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Plotterm - braille scatterplots in your terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: plotterm [options] [script.lua]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  plotterm plot.lua           Plot a script\n")
		fmt.Fprintf(os.Stderr, "  plotterm -c conf.toml       Use a custom configuration\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Plotterm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts.Config = cfg
	opts.ConfigPath = configPath

	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", logLevel)
		os.Exit(1)
	}

	// The UI owns the terminal, so logs only go to a file.
	var logClose func()
	opts.Logger = app.NullLogger
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		opts.Logger = newFileLogger(f, logLevel)
		logClose = func() { _ = f.Close() }
	}

	// A bare positional argument is the plot script.
	if opts.ScriptPath == "" && flag.NArg() > 0 {
		opts.ScriptPath = flag.Arg(0)
	}

	return opts, logClose
}

func newFileLogger(w io.Writer, level string) *app.Logger {
	return app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(level),
		Output: w,
		Prefix: "plotterm",
	})
}
