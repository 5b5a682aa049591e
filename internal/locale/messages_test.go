package locale

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormat_RussianLocale(t *testing.T) {
	table := NewTable()

	got := table.Format("ru", KeyDownloadingTrack, "Queen - Bohemian Rhapsody")
	if !strings.HasPrefix(got, "Скачиваю Spotify трек:") {
		t.Fatalf("expected russian template, got %q", got)
	}
	if !strings.Contains(got, "Queen - Bohemian Rhapsody") {
		t.Fatalf("expected track name interpolated, got %q", got)
	}
}

func TestFormat_DefaultLocaleIsEnglish(t *testing.T) {
	table := NewTable()

	got := table.Format("en", KeyNotLink)
	if got != "It's not a link to a Spotify track, album, or playlist!" {
		t.Fatalf("unexpected english not_link: %q", got)
	}
}

func TestFormat_UnknownLocaleFallsBack(t *testing.T) {
	table := NewTable()

	// Any locale that is not "ru" gets the default (English) variant.
	for _, loc := range []string{"de", "fr", "", "pt-BR"} {
		got := table.Format(loc, KeyNotLink)
		want := table.Format("en", KeyNotLink)
		if got != want {
			t.Fatalf("locale %q: expected english fallback %q, got %q", loc, want, got)
		}
	}
}

func TestFormat_EveryKeyHasBothLocales(t *testing.T) {
	table := NewTable()
	keys := []Key{
		KeyWelcome, KeyNotLink, KeyDownloadingTrack,
		KeyDownloadingAlbum, KeyDownloadingPlaylist, KeyTrackCaption,
	}
	for _, key := range keys {
		en := table.Format("en", key)
		ru := table.Format("ru", key)
		if en == "" || ru == "" {
			t.Fatalf("key %q missing a variant (en=%q, ru=%q)", key, en, ru)
		}
		if en == ru {
			t.Fatalf("key %q: russian variant identical to english", key)
		}
	}
}

func TestFormat_CaptionInterpolation(t *testing.T) {
	table := NewTable()
	got := table.Format("en", KeyTrackCaption, "Song", "Artist", "Album")
	want := "Track: Song, Artist: Artist, Album: Album"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLoadOverrides_MergesAndAddsLocales(t *testing.T) {
	dir := t.TempDir()
	// Override an existing key and add a brand new locale.
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"),
		[]byte("not_link: \"nope, not a Spotify link\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "de.yml"),
		[]byte("not_link: \"Das ist kein Spotify-Link!\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewTable()
	if err := table.LoadOverrides(dir, testLogger()); err != nil {
		t.Fatalf("load overrides: %v", err)
	}

	if got := table.Format("en", KeyNotLink); got != "nope, not a Spotify link" {
		t.Fatalf("expected override, got %q", got)
	}
	if got := table.Format("de", KeyNotLink); got != "Das ist kein Spotify-Link!" {
		t.Fatalf("expected german override, got %q", got)
	}
	// Keys not present in the override fall back to English.
	if got := table.Format("de", KeyWelcome, "user"); !strings.HasPrefix(got, "Hello, @user!") {
		t.Fatalf("expected english fallback for missing key, got %q", got)
	}
}

func TestLoadOverrides_MissingDirIsNotAnError(t *testing.T) {
	table := NewTable()
	if err := table.LoadOverrides("/nonexistent/locales", testLogger()); err != nil {
		t.Fatalf("missing dir should be skipped: %v", err)
	}
}
