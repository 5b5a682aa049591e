package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Config is the root configuration for spotibot.
type Config struct {
	General   GeneralConfig   `json:"general"`
	Telegram  TelegramConfig  `json:"telegram"`
	Spotify   SpotifyConfig   `json:"spotify"`
	Store     StoreConfig     `json:"store"`
	Retention RetentionConfig `json:"retention"`
	Locales   LocalesConfig   `json:"locales"`
}

type GeneralConfig struct {
	DownloadDir            string `json:"downloadDir"`
	LogLevel               string `json:"logLevel"`
	LogFile                string `json:"logFile,omitempty"` // optional log file path
	MaxConcurrentMessages  int    `json:"maxConcurrentMessages"`
	MaxConcurrentDownloads int    `json:"maxConcurrentDownloads"`
}

type TelegramConfig struct {
	Token     string         `json:"token"`
	AllowFrom FlexStringList `json:"allowFrom,omitempty"` // user IDs; empty = allow all
}

// SpotifyConfig configures the external spotdl fetch engine.
type SpotifyConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	SpotdlPath   string `json:"spotdlPath"`  // binary name or absolute path
	AudioFormat  string `json:"audioFormat"` // mp3 | m4a | flac | ogg | opus
}

type StoreConfig struct {
	DBPath string `json:"dbPath"`
}

type RetentionConfig struct {
	Enabled              bool `json:"enabled"`
	SweepIntervalMinutes int  `json:"sweepIntervalMinutes"`
	MaxAgeDays           int  `json:"maxAgeDays"`
}

// LocalesConfig points at an optional directory of YAML message overrides.
type LocalesConfig struct {
	Dir string `json:"dir,omitempty"`
}

// FlexStringList is a []string that can unmarshal from JSON arrays containing
// both strings and numbers (e.g. ["123", 456] both become "123", "456").
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	// Fallback: array of mixed types
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			result = append(result, strconv.FormatInt(int64(n), 10))
			continue
		}
		result = append(result, string(item))
	}
	*f = result
	return nil
}

// DefaultConfigDir returns the default config directory (~/.spotibot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotibot"
	}
	return filepath.Join(home, ".spotibot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DownloadDir = ExpandPath(cfg.General.DownloadDir)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Store.DBPath = ExpandPath(cfg.Store.DBPath)
	cfg.Locales.Dir = ExpandPath(cfg.Locales.Dir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.General.MaxConcurrentMessages < 1 || cfg.General.MaxConcurrentMessages > 100 {
		errs = append(errs, "general.maxConcurrentMessages must be between 1 and 100")
	}
	if cfg.General.MaxConcurrentDownloads < 1 || cfg.General.MaxConcurrentDownloads > 32 {
		errs = append(errs, "general.maxConcurrentDownloads must be between 1 and 32")
	}
	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	switch cfg.Spotify.AudioFormat {
	case "", "mp3", "m4a", "flac", "ogg", "opus":
		// valid
	default:
		errs = append(errs, "spotify.audioFormat must be one of: mp3, m4a, flac, ogg, opus")
	}

	if cfg.Retention.SweepIntervalMinutes < 1 {
		errs = append(errs, "retention.sweepIntervalMinutes must be >= 1")
	}
	if cfg.Retention.MaxAgeDays < 1 {
		errs = append(errs, "retention.maxAgeDays must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Sanitize returns a copy of the config with secrets masked, safe for
// printing and logs.
func Sanitize(cfg *Config) *Config {
	out := *cfg
	out.Telegram.Token = maskSecret(cfg.Telegram.Token)
	out.Spotify.ClientSecret = maskSecret(cfg.Spotify.ClientSecret)
	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
