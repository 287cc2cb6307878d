// Package main is the entry point for the joygremlin runtime daemon:
// it loads a profile and configuration, activates a runtime session,
// and keeps it running until interrupted. Hardware drivers are
// platform specific and injected at the device boundary; without them
// the daemon runs against inert device fakes, which is still useful
// for validating profiles.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/config"
	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/mode"
	"github.com/OttScott/joygremlin/internal/profile"
	"github.com/OttScott/joygremlin/internal/runtime"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ProfilePath string
	ConfigPath  string
	LogLevel    string
	Newest      bool
}

func run() int {
	opts := parseFlags()

	logger, err := buildLogger(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.NewStore(logger.Named("config"))
	if opts.ConfigPath != "" {
		if err := cfg.Load(opts.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
			return 1
		}
		if err := cfg.Watch(); err != nil {
			logger.Warn("configuration watch unavailable", zap.Error(err))
		}
		defer cfg.Close()
	}

	prof, err := profile.ParseFile(opts.ProfilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load profile: %v\n", err)
		return 1
	}

	resolution := mode.ResolveOldest
	if opts.Newest {
		resolution = mode.ResolveNewest
	}
	settle := time.Duration(cfg.Int("runtime", "general", "settle_ms", 50)) * time.Millisecond

	session := runtime.NewSession(runtime.Options{
		Logger:      logger,
		Config:      cfg,
		Joystick:    device.NewFakeJoystick(),
		VJoy:        device.NewRecordingVJoy(),
		Keyboard:    &device.RecordingKeyboard{},
		Mouse:       &device.RecordingMouse{},
		Resolution:  resolution,
		SettleDelay: settle,
	})
	defer session.Deactivate()

	if err := session.Activate(prof); err != nil {
		// Broken bindings are skipped, not fatal; the rest of the
		// profile is live.
		logger.Error("profile activated with errors", zap.Error(err))
	}
	logger.Info("profile active",
		zap.String("profile", opts.ProfilePath),
		zap.String("mode", session.Modes().CurrentName()),
		zap.Int("items", len(prof.Items)))

	cfg.OnReload(func() {
		logger.Info("configuration reloaded")
	})

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	logger.Info("shutting down", zap.String("signal", sig.String()))
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ProfilePath, "profile", "", "Path to profile JSON file")
	flag.StringVar(&opts.ProfilePath, "p", "", "Path to profile JSON file (shorthand)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Newest, "newest", false, "Resolve mode-stack cycles keeping the newest chain")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gremlind - joystick remapping runtime\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gremlind -p profile.json [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("gremlind %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	if opts.ProfilePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", opts.LogLevel)
		os.Exit(2)
	}

	return opts
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}
