// Package locale holds the user-visible message templates, keyed by
// {locale, message key}. English is the default; Russian is the one
// alternate locale. Unknown locales fall back to English.
package locale

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Key names one user-visible message template.
type Key string

const (
	KeyWelcome             Key = "welcome"
	KeyNotLink             Key = "not_link"
	KeyDownloadingTrack    Key = "downloading_track"
	KeyDownloadingAlbum    Key = "downloading_album"
	KeyDownloadingPlaylist Key = "downloading_playlist"
	KeyTrackCaption        Key = "track_caption"
)

// DefaultLocale is used for any locale tag without its own table.
const DefaultLocale = "en"

var builtin = map[string]map[Key]string{
	"en": {
		KeyWelcome: "Hello, @%s!\n" +
			"I am a Telegram Bot for downloading music from Spotify.\n" +
			"Send me a link to a Spotify track, album, or playlist and I'll send you that track, album, or playlist.",
		KeyNotLink:             "It's not a link to a Spotify track, album, or playlist!",
		KeyDownloadingTrack:    "Downloading Spotify track: %s...",
		KeyDownloadingAlbum:    "Downloading Spotify album: %s...",
		KeyDownloadingPlaylist: "Downloading Spotify playlist: %s...",
		KeyTrackCaption:        "Track: %s, Artist: %s, Album: %s",
	},
	"ru": {
		KeyWelcome: "Привет, @%s!\n" +
			"Я являюсь Telegram ботом для скачивания музыки с Spotify.\n" +
			"Отправьте мне ссылку на Spotify трек, альбом или плейлист, и я отправлю тебе этот трек, альбом или плейлист.",
		KeyNotLink:             "Это не ссылка на Spotify трек, альбом или плейлист!",
		KeyDownloadingTrack:    "Скачиваю Spotify трек: %s...",
		KeyDownloadingAlbum:    "Скачиваю Spotify альбом: %s...",
		KeyDownloadingPlaylist: "Скачиваю Spotify плейлист: %s...",
		KeyTrackCaption:        "Трек: %s, Исполнитель: %s, Альбом: %s",
	},
}

// Table resolves message templates per locale.
type Table struct {
	templates map[string]map[Key]string
}

// NewTable returns a table with the built-in locales.
func NewTable() *Table {
	templates := make(map[string]map[Key]string, len(builtin))
	for loc, msgs := range builtin {
		copied := make(map[Key]string, len(msgs))
		for k, v := range msgs {
			copied[k] = v
		}
		templates[loc] = copied
	}
	return &Table{templates: templates}
}

// Format renders the template for the given locale and key with the given
// arguments. Locales without a table, and keys missing from a locale's
// table, fall back to the default locale.
func (t *Table) Format(loc string, key Key, args ...any) string {
	msgs, ok := t.templates[loc]
	if !ok {
		msgs = t.templates[DefaultLocale]
	}
	tmpl, ok := msgs[key]
	if !ok {
		tmpl = t.templates[DefaultLocale][key]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// LoadOverrides merges message templates from YAML files in a directory.
// Each file is named <locale>.yaml (or .yml) and maps message keys to
// templates; unknown keys are skipped. Missing directory is not an error.
func (t *Table) LoadOverrides(dir string, logger *slog.Logger) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("locales directory does not exist, skipping", "dir", dir)
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read locale file", "path", path, "err", err)
			continue
		}

		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			logger.Warn("cannot parse locale file", "path", path, "err", err)
			continue
		}

		loc := strings.TrimSuffix(name, filepath.Ext(name))
		if t.templates[loc] == nil {
			t.templates[loc] = make(map[Key]string, len(msgs))
		}
		for k, v := range msgs {
			t.templates[loc][Key(k)] = v
		}
		logger.Info("loaded locale overrides", "locale", loc, "path", path, "keys", len(msgs))
	}

	return nil
}
