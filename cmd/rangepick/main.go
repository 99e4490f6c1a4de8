package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"rangepick/internal/app"
	"rangepick/internal/config"
	appLog "rangepick/internal/log"
	"rangepick/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	level, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		appLog.Error("invalid log level; using info", err, "log_level", conf.LogLevel)
		level = appLog.LevelInfo
	}
	if flags.debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)
	appLog.Info("rangepick starting", "version", version)

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"presets", len(conf.Presets),
		"calendars", len(conf.Rules.Calendars),
		"preset_refresh", conf.PresetRefresh,
		"once", flags.once,
	)

	a, err := app.New(conf)
	if err != nil {
		appLog.Error("failed to build picker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.once {
		if err := a.RefreshMarkers(ctx); err != nil {
			appLog.Error("marker refresh incomplete", err)
		}
		if err := web.EncodeView(os.Stdout, a); err != nil {
			appLog.Error("failed to write view", err)
			os.Exit(1)
		}
		return
	}

	schedErr := make(chan error, 1)
	go func() { schedErr <- a.Start(ctx) }()

	srv := web.NewServer(a, flags.debug)
	if err := web.Serve(ctx, srv); err != nil {
		appLog.Error("HTTP server failed", err)
		stop()
		<-schedErr
		os.Exit(1)
	}
	if err := <-schedErr; err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("scheduler failed", err)
	}
	appLog.Info("rangepick exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./rangepick.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the picker view as JSON and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
