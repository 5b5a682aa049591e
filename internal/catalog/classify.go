package catalog

import (
	"strings"

	"spotibot/internal/domain"
)

// Link markers for the three catalog item kinds. Classification is by
// substring presence anywhere in the text, checked in this priority
// order; no URL parsing and no validation of trailing path segments.
const (
	trackMarker    = "https://open.spotify.com/track/"
	albumMarker    = "https://open.spotify.com/album/"
	playlistMarker = "https://open.spotify.com/playlist/"
)

// Classify maps raw message text to a link kind. The first marker found
// wins (track > album > playlist); text with no marker is KindNone.
func Classify(text string) domain.LinkKind {
	switch {
	case strings.Contains(text, trackMarker):
		return domain.KindTrack
	case strings.Contains(text, albumMarker):
		return domain.KindAlbum
	case strings.Contains(text, playlistMarker):
		return domain.KindPlaylist
	default:
		return domain.KindNone
	}
}
