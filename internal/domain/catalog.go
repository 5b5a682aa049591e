package domain

import "context"

// LinkKind classifies what a message text points at in the catalog.
type LinkKind int

const (
	KindNone LinkKind = iota
	KindTrack
	KindAlbum
	KindPlaylist
)

func (k LinkKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	default:
		return "none"
	}
}

// TrackInfo describes one resolvable catalog item. For albums and
// playlists the resolve step returns a slice of these in catalog order,
// and that order is the delivery order.
type TrackInfo struct {
	ID          string
	DisplayName string
	Artist      string
	Album       string
	URL         string
}

// Catalog is the external search/resolve-and-fetch engine. Its retry and
// error semantics are inherited unchanged; callers treat it as a black box.
type Catalog interface {
	// Resolve translates a catalog link into one or more track
	// descriptors, in catalog order.
	Resolve(ctx context.Context, url string) ([]TrackInfo, error)

	// Download fetches the audio for one track and returns the local
	// file path. The file stays on disk; the retention sweeper owns it
	// from then on.
	Download(ctx context.Context, track TrackInfo) (string, error)
}
