package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calsched/internal/config"
	"calsched/internal/dispatch"
	appLog "calsched/internal/log"
	"calsched/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))

	appLog.Info("calsched starting",
		"listen", conf.Listen,
		"slot_minutes", conf.SlotMinutes,
		"dispatch_cron", conf.DispatchCron,
		"once", flags.once,
	)

	store := web.NewStore()

	dispatcher, err := dispatch.New(store, dispatch.LogNotifier{}, conf.DispatchCron)
	if err != nil {
		appLog.Error("failed to build dispatcher", err)
		os.Exit(1)
	}

	// Root context canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		// Single dispatch sweep, then exit.
		dispatcher.Sweep(ctx)
		appLog.Info("calsched exiting")
		return
	}

	server, err := web.NewServer(conf, store)
	if err != nil {
		appLog.Error("failed to build server", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         conf.Listen,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	dispatcher.Start(ctx)

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("server error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", err)
	}
	appLog.Info("calsched exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calsched/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one reminder dispatch sweep and exit")

	flag.Parse()

	return cfg
}
