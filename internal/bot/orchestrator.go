package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"spotibot/internal/catalog"
	"spotibot/internal/domain"
	"spotibot/internal/locale"
	"spotibot/internal/metrics"
)

// Orchestrator runs the link-to-audio workflow: classify the message,
// resolve the link into track descriptors, post a transient status
// message, then download and deliver each track in catalog order. The
// transient message is removed when the workflow ends, success or not.
type Orchestrator struct {
	transport domain.Transport
	engine    domain.Catalog
	notifier  *Notifier
	locales   *locale.Table
	dlSem     *semaphore.Weighted
	logger    *slog.Logger
}

func NewOrchestrator(
	transport domain.Transport,
	engine domain.Catalog,
	notifier *Notifier,
	locales *locale.Table,
	maxConcurrentDownloads int64,
	logger *slog.Logger,
) *Orchestrator {
	if maxConcurrentDownloads <= 0 {
		maxConcurrentDownloads = 1
	}
	return &Orchestrator{
		transport: transport,
		engine:    engine,
		notifier:  notifier,
		locales:   locales,
		dlSem:     semaphore.NewWeighted(maxConcurrentDownloads),
		logger:    logger,
	}
}

// Handle processes one inbound message end to end. Partial progress is
// kept: tracks already delivered stay delivered even if a later track
// fails. On failure the user gets no error message; the failure is
// logged and the transient status message is still cleaned up.
func (o *Orchestrator) Handle(ctx context.Context, msg domain.InboundMessage) error {
	kind := catalog.Classify(msg.Text)
	if kind == domain.KindNone {
		if _, err := o.transport.Reply(ctx, msg, o.locales.Format(msg.Locale, locale.KeyNotLink)); err != nil {
			return fmt.Errorf("reply not-a-link: %w", err)
		}
		return nil
	}

	log := o.logger.With("workflow_id", uuid.NewString(), "chat_id", msg.ChatID, "kind", kind.String())
	metrics.ActiveWorkflows.Inc()
	defer metrics.ActiveWorkflows.Dec()

	tracks, err := o.engine.Resolve(ctx, msg.Text)
	if err != nil {
		metrics.WorkflowsFailed.Inc()
		return fmt.Errorf("resolve %s link: %w", kind, err)
	}
	if len(tracks) == 0 {
		metrics.WorkflowsFailed.Inc()
		return fmt.Errorf("resolve %s link: engine returned no tracks", kind)
	}
	metrics.LinksResolved.Inc()
	log.Info("link resolved", "tracks", len(tracks))

	notice, err := o.notifier.Begin(ctx, msg.ChatID, o.statusText(msg.Locale, kind, tracks))
	if err != nil {
		// No notice exists yet, so there is nothing to clean up.
		metrics.WorkflowsFailed.Inc()
		return fmt.Errorf("post status message: %w", err)
	}
	// Cleanup must run even when ctx is already cancelled.
	defer func() {
		o.notifier.End(context.WithoutCancel(ctx), notice)
	}()

	for i, track := range tracks {
		if err := o.deliver(ctx, msg, kind, track); err != nil {
			metrics.WorkflowsFailed.Inc()
			return fmt.Errorf("track %d/%d (%s): %w", i+1, len(tracks), track.DisplayName, err)
		}
		log.Debug("track delivered", "track", track.DisplayName, "position", i+1)
	}

	log.Info("workflow complete", "tracks", len(tracks))
	return nil
}

// deliver downloads one track and replies with the audio. Playlist
// deliveries are followed by a metadata caption message.
func (o *Orchestrator) deliver(ctx context.Context, msg domain.InboundMessage, kind domain.LinkKind, track domain.TrackInfo) error {
	path, err := o.download(ctx, track)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	metrics.TracksDownloaded.Inc()

	if _, err := o.transport.ReplyAudio(ctx, msg, track, path); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	metrics.TracksDelivered.Inc()

	if kind == domain.KindPlaylist {
		caption := o.locales.Format(msg.Locale, locale.KeyTrackCaption, track.DisplayName, track.Artist, track.Album)
		if _, err := o.transport.Reply(ctx, msg, caption); err != nil {
			return fmt.Errorf("send caption: %w", err)
		}
	}
	return nil
}

// download runs the fetch under the global download concurrency limit.
func (o *Orchestrator) download(ctx context.Context, track domain.TrackInfo) (string, error) {
	if err := o.dlSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer o.dlSem.Release(1)
	return o.engine.Download(ctx, track)
}

// statusText picks the localized transient message for the link kind. For
// albums and playlists the collection name comes from the first track.
func (o *Orchestrator) statusText(loc string, kind domain.LinkKind, tracks []domain.TrackInfo) string {
	switch kind {
	case domain.KindAlbum:
		return o.locales.Format(loc, locale.KeyDownloadingAlbum, tracks[0].Album)
	case domain.KindPlaylist:
		return o.locales.Format(loc, locale.KeyDownloadingPlaylist, tracks[0].Album)
	default:
		return o.locales.Format(loc, locale.KeyDownloadingTrack, tracks[0].DisplayName)
	}
}
