package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"spotibot/internal/domain"
)

// SpotdlEngine implements domain.Catalog by shelling out to the spotdl
// CLI. spotdl's own retry and error semantics are inherited unchanged.
type SpotdlEngine struct {
	bin          string
	downloadDir  string
	clientID     string
	clientSecret string
	format       string
	logger       *slog.Logger
}

type SpotdlConfig struct {
	SpotdlPath   string
	DownloadDir  string
	ClientID     string
	ClientSecret string
	AudioFormat  string
	Logger       *slog.Logger
}

func NewSpotdlEngine(cfg SpotdlConfig) *SpotdlEngine {
	if cfg.SpotdlPath == "" {
		cfg.SpotdlPath = "spotdl"
	}
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = "mp3"
	}
	return &SpotdlEngine{
		bin:          cfg.SpotdlPath,
		downloadDir:  cfg.DownloadDir,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		format:       cfg.AudioFormat,
		logger:       cfg.Logger,
	}
}

// songEntry is the subset of a spotdl save-file entry the bot needs.
type songEntry struct {
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	AlbumName   string `json:"album_name"`
	SongID      string `json:"song_id"`
	URL         string `json:"url"`
	DisplayName string `json:"display_name"`
}

// Resolve runs `spotdl save` for the link and parses the saved metadata.
// Entries come back in catalog order: one for a track, many for an album
// or playlist.
func (e *SpotdlEngine) Resolve(ctx context.Context, url string) ([]domain.TrackInfo, error) {
	tmp, err := os.CreateTemp("", "spotibot-*.spotdl")
	if err != nil {
		return nil, fmt.Errorf("create save file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := append([]string{"save", url, "--save-file", tmpPath}, e.credentialArgs()...)
	if err := e.run(ctx, args); err != nil {
		return nil, fmt.Errorf("spotdl save %q: %w", url, err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read save file: %w", err)
	}
	tracks, err := parseSavedEntries(data)
	if err != nil {
		return nil, fmt.Errorf("parse save file for %q: %w", url, err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("link %q resolved to no tracks", url)
	}

	e.logger.Debug("resolved catalog link", "url", url, "tracks", len(tracks))
	return tracks, nil
}

// Download fetches one track's audio into the download directory and
// returns its local path. A file already present from an earlier request
// is reused as-is.
func (e *SpotdlEngine) Download(ctx context.Context, track domain.TrackInfo) (string, error) {
	if err := os.MkdirAll(e.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	dest := e.trackPath(track)
	if _, err := os.Stat(dest); err == nil {
		e.logger.Debug("track already on disk", "path", dest)
		return dest, nil
	}

	if err := e.run(ctx, e.downloadArgs(track)); err != nil {
		return "", fmt.Errorf("spotdl download %q: %w", track.URL, err)
	}

	if _, err := os.Stat(dest); err != nil {
		return "", fmt.Errorf("spotdl reported success but %s is missing: %w", dest, err)
	}
	return dest, nil
}

// trackPath is the deterministic output location for one track. Files are
// keyed by song id so the download directory stays flat for the sweeper.
func (e *SpotdlEngine) trackPath(track domain.TrackInfo) string {
	return filepath.Join(e.downloadDir, track.ID+"."+e.format)
}

func (e *SpotdlEngine) downloadArgs(track domain.TrackInfo) []string {
	outputTemplate := filepath.Join(e.downloadDir, "{song-id}.{output-ext}")
	args := []string{
		"download", track.URL,
		"--output", outputTemplate,
		"--format", e.format,
	}
	return append(args, e.credentialArgs()...)
}

func (e *SpotdlEngine) credentialArgs() []string {
	if e.clientID == "" || e.clientSecret == "" {
		return nil
	}
	return []string{"--client-id", e.clientID, "--client-secret", e.clientSecret}
}

func (e *SpotdlEngine) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if line := lastLine(stderr.String()); line != "" {
			return fmt.Errorf("%w: %s", err, line)
		}
		return err
	}
	return nil
}

func parseSavedEntries(data []byte) ([]domain.TrackInfo, error) {
	var entries []songEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	tracks := make([]domain.TrackInfo, 0, len(entries))
	for _, s := range entries {
		display := s.DisplayName
		if display == "" {
			display = s.Artist + " - " + s.Name
		}
		tracks = append(tracks, domain.TrackInfo{
			ID:          s.SongID,
			DisplayName: display,
			Artist:      s.Artist,
			Album:       s.AlbumName,
			URL:         s.URL,
		})
	}
	return tracks, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
