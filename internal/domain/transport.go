package domain

import (
	"context"
	"errors"
)

// ErrMessageGone reports a delete of a message that no longer exists
// (already deleted, or removed by the user). Callers treat it as
// non-fatal.
var ErrMessageGone = errors.New("message already gone")

// Transport is the chat layer the bot talks through.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (MessageRef, error)

	// DeleteMessage removes a previously sent message. Deleting a
	// message that is already gone returns ErrMessageGone.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	Reply(ctx context.Context, to InboundMessage, text string) (MessageRef, error)

	// ReplyAudio uploads a local audio file as a reply attachment.
	ReplyAudio(ctx context.Context, to InboundMessage, track TrackInfo, filePath string) (MessageRef, error)
}
