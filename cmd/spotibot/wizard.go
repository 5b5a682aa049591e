package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spotibot/internal/config"

	"github.com/spf13/cobra"
)

func wizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Interactive setup: Telegram token → Spotify credentials → download dir → save config",
		Long:  "Guides you through the Telegram bot token, Spotify API credentials, and the download directory. Writes config to the path used by --config or default.",
		RunE:  runWizard,
	}
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Defaults()
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := func(def string) (string, error) {
		if def != "" {
			fmt.Fprintf(os.Stdout, " [%s]: ", def)
		} else {
			fmt.Fprint(os.Stdout, ": ")
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		s := strings.TrimSpace(line)
		if s == "" && def != "" {
			return def, nil
		}
		return s, nil
	}

	// Step 1: Telegram token
	fmt.Println("\n--- Step 1: Telegram ---")
	fmt.Fprint(os.Stdout, "Bot token (from @BotFather): paste token or env var reference")
	tok, err := prompt("${TELEGRAM_BOT_TOKEN}")
	if err != nil {
		return err
	}
	if tok != "" {
		cfg.Telegram.Token = tok
	}

	// Step 2: Spotify credentials
	fmt.Println("\n--- Step 2: Spotify API credentials ---")
	fmt.Println("Create an app at https://developer.spotify.com/dashboard to get these.")
	fmt.Fprint(os.Stdout, "Client ID")
	clientID, err := prompt("${SPOTIFY_CLIENT_ID}")
	if err != nil {
		return err
	}
	if clientID != "" {
		cfg.Spotify.ClientID = clientID
	}
	fmt.Fprint(os.Stdout, "Client secret")
	clientSecret, err := prompt("${SPOTIFY_CLIENT_SECRET}")
	if err != nil {
		return err
	}
	if clientSecret != "" {
		cfg.Spotify.ClientSecret = clientSecret
	}

	// Step 3: Download directory
	fmt.Println("\n--- Step 3: Download directory ---")
	fmt.Fprint(os.Stdout, "Directory for downloaded audio files")
	dir, err := prompt(cfg.General.DownloadDir)
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.General.DownloadDir = dir
	}
	expanded := config.ExpandPath(cfg.General.DownloadDir)
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	fmt.Fprintf(os.Stdout, "  Using download dir: %s\n", expanded)

	// Save
	cfgDir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nConfig saved to %s\n", cfgPath)
	fmt.Println("Next: run 'spotibot doctor' to verify, then 'spotibot run' to start the bot.")
	return nil
}
