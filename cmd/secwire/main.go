// Command secwire runs the communication-security scenarios on a shared
// simulated medium.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/secwire/secwire/config"
)

var (
	configFile   = pflag.StringP("config", "c", "", "configuration file (yaml or json)")
	scenarioName = pflag.StringP("scenario", "s", "plaintext", "scenario to run")
	tickInterval = pflag.DurationP("interval", "i", 0, "tick interval override")
	listOnly     = pflag.BoolP("list", "l", false, "list available scenarios and exit")
)

func main() {
	pflag.Parse()

	if *listOnly {
		names := make([]string, 0, len(scenarios))
		for name := range scenarios {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	if *tickInterval > 0 {
		cfg.Sim.TickInterval = *tickInterval
	}

	scenario, ok := scenarios[*scenarioName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q (try --list)\n", *scenarioName)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting scenario", "name", *scenarioName,
		"interval", cfg.Sim.TickInterval)
	start := time.Now()
	if err := scenario(ctx, cfg); err != nil {
		slog.Error("scenario failed", "name", *scenarioName, "error", err)
		os.Exit(1)
	}
	slog.Info("scenario done", "name", *scenarioName, "elapsed", time.Since(start))
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if *configFile != "" {
		return loader.LoadFromFile(*configFile)
	}
	return loader.AutoLoad()
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.Log.Level.SlogLevel()}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
