package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spotibot/internal/bot"
	"spotibot/internal/bus"
	"spotibot/internal/catalog"
	"spotibot/internal/channel"
	"spotibot/internal/config"
	"spotibot/internal/locale"
	"spotibot/internal/metrics"
	"spotibot/internal/store"
	"spotibot/internal/sweeper"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "spotibot",
		Short: "Spotibot: Telegram bot that downloads Spotify links",
		Long:  "Spotibot resolves Spotify track, album, and playlist links sent over Telegram and replies with the audio files.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.spotibot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(wizardCmd())
	root.AddCommand(daemonCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and download directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			downloadDir := config.ExpandPath(cfg.General.DownloadDir)
			if err := os.MkdirAll(downloadDir, 0o755); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath, "downloads", downloadDir)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot (Telegram polling + workers + retention sweeper)",
		Long:  "Connects to Telegram, processes messages until interrupted. Press Ctrl+C to stop.",
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = setupLogger(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.General.DownloadDir, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messageBus := bus.New(100, logger)

	userStore, err := store.NewSQLiteStore(cfg.Store.DBPath, logger)
	if err != nil {
		return fmt.Errorf("user store: %w", err)
	}
	defer userStore.Close()

	locales := locale.NewTable()
	if cfg.Locales.Dir != "" {
		if err := locales.LoadOverrides(cfg.Locales.Dir, logger); err != nil {
			logger.Warn("locale overrides not loaded", "dir", cfg.Locales.Dir, "err", err)
		}
	}

	telegramCh := channel.NewTelegram(channel.TelegramConfig{
		Token:     cfg.Telegram.Token,
		AllowFrom: cfg.Telegram.AllowFrom,
		Logger:    logger,
	})
	if err := telegramCh.Connect(); err != nil {
		return err
	}

	engine := catalog.NewSpotdlEngine(catalog.SpotdlConfig{
		SpotdlPath:   cfg.Spotify.SpotdlPath,
		DownloadDir:  cfg.General.DownloadDir,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		AudioFormat:  cfg.Spotify.AudioFormat,
		Logger:       logger,
	})

	notifier := bot.NewNotifier(telegramCh, logger)
	orchestrator := bot.NewOrchestrator(telegramCh, engine, notifier, locales,
		int64(cfg.General.MaxConcurrentDownloads), logger)
	router := bot.NewRouter(messageBus, orchestrator, telegramCh, userStore, locales,
		cfg.General.MaxConcurrentMessages, logger)

	routerDone := make(chan struct{})
	go func() {
		defer close(routerDone)
		router.Run(ctx)
	}()

	if cfg.Retention.Enabled {
		sw := sweeper.New(cfg.General.DownloadDir,
			time.Duration(cfg.Retention.SweepIntervalMinutes)*time.Minute,
			time.Duration(cfg.Retention.MaxAgeDays)*24*time.Hour,
			logger)
		go sw.Run(ctx)
	} else {
		logger.Info("retention sweeper disabled")
	}

	go func() {
		if err := telegramCh.Start(ctx, messageBus); err != nil {
			logger.Error("telegram channel error", "err", err)
		}
	}()

	logger.Info("spotibot started", "version", version)

	// Block until shutdown signal
	<-ctx.Done()
	logger.Info("shutting down...")

	// Graceful shutdown with timeout: stop accepting, drain the router.
	const shutdownTimeout = 10 * time.Second
	messageBus.Close()

	select {
	case <-routerDone:
		logger.Info("shutdown complete", "metrics", metrics.Collector.Snapshot(),
			"uptime", metrics.Collector.Uptime().Round(time.Second))
		return nil
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out, forcing exit")
		return fmt.Errorf("shutdown timed out")
	}
}

// setupLogger builds the process logger from config: level from
// general.logLevel, output to stderr plus an optional log file.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one retention sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sw := sweeper.New(cfg.General.DownloadDir,
				time.Duration(cfg.Retention.SweepIntervalMinutes)*time.Minute,
				time.Duration(cfg.Retention.MaxAgeDays)*24*time.Hour,
				logger)
			return sw.Sweep()
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values (secrets masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sanitized := config.Sanitize(cfg)
			data, _ := json.MarshalIndent(sanitized, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}
