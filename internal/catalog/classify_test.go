package catalog

import (
	"testing"

	"spotibot/internal/domain"
)

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.LinkKind
	}{
		{"track link", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", domain.KindTrack},
		{"album link", "https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE", domain.KindAlbum},
		{"playlist link", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", domain.KindPlaylist},
		{"link embedded in text", "check this out https://open.spotify.com/track/abc :)", domain.KindTrack},
		{"no trailing segment required", "https://open.spotify.com/track/", domain.KindTrack},
		{"plain text", "hello there", domain.KindNone},
		{"empty text", "", domain.KindNone},
		{"unrelated url", "https://example.com/track/123", domain.KindNone},
		{"artist link is not handled", "https://open.spotify.com/artist/0TnOYISbd1XYRBk9myaseg", domain.KindNone},
		{"http scheme does not match", "http://open.spotify.com/track/abc", domain.KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Track wins over album and playlist regardless of position in the
	// text; album wins over playlist.
	tests := []struct {
		name string
		text string
		want domain.LinkKind
	}{
		{
			"track beats album",
			"https://open.spotify.com/album/x https://open.spotify.com/track/y",
			domain.KindTrack,
		},
		{
			"track beats playlist",
			"https://open.spotify.com/playlist/x and https://open.spotify.com/track/y",
			domain.KindTrack,
		},
		{
			"album beats playlist",
			"https://open.spotify.com/playlist/x https://open.spotify.com/album/y",
			domain.KindAlbum,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
