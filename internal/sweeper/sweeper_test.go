package sweeper

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweep_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	day := 24 * time.Hour

	fresh1 := writeAged(t, dir, "fresh1.mp3", 1*day)
	fresh6 := writeAged(t, dir, "fresh6.mp3", 6*day)
	stale8 := writeAged(t, dir, "stale8.mp3", 8*day)
	stale30 := writeAged(t, dir, "stale30.mp3", 30*day)

	s := New(dir, time.Hour, 7*day, testLogger())
	if err := s.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	for _, path := range []string{fresh1, fresh6} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("fresh file %s should survive: %v", path, err)
		}
	}
	for _, path := range []string{stale8, stale30} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("stale file %s should be removed, stat err: %v", path, err)
		}
	}
}

func TestSweep_IgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	day := 24 * time.Hour

	sub := filepath.Join(dir, "old-subdir")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	stamp := time.Now().Add(-30 * day)
	if err := os.Chtimes(sub, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	s := New(dir, time.Hour, 7*day, testLogger())
	if err := s.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if _, err := os.Stat(sub); err != nil {
		t.Fatalf("subdirectory must not be removed: %v", err)
	}
}

func TestSweep_MissingDirIsNotAnError(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"), time.Hour, time.Hour, testLogger())
	if err := s.Sweep(); err != nil {
		t.Fatalf("missing dir should be fine: %v", err)
	}
}

func TestSweep_ExactBoundaryIsKept(t *testing.T) {
	dir := t.TempDir()
	// A file exactly at max age is kept; only strictly older files go.
	path := writeAged(t, dir, "boundary.mp3", 7*24*time.Hour)

	s := New(dir, time.Hour, 7*24*time.Hour+time.Minute, testLogger())
	if err := s.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("boundary file should survive: %v", err)
	}
}
