package bot

import (
	"context"
	"errors"
	"log/slog"

	"spotibot/internal/domain"
)

// Notifier manages transient status messages: one visible "working on it"
// message per workflow, removed when the workflow ends however it ends.
type Notifier struct {
	transport domain.Transport
	logger    *slog.Logger
}

func NewNotifier(transport domain.Transport, logger *slog.Logger) *Notifier {
	return &Notifier{transport: transport, logger: logger}
}

// Notice is a handle to one transient message. End is idempotent: the
// second and later calls are no-ops.
type Notice struct {
	ref  domain.MessageRef
	done bool
}

// Begin posts the transient status message and returns its handle.
func (n *Notifier) Begin(ctx context.Context, chatID int64, text string) (*Notice, error) {
	ref, err := n.transport.SendMessage(ctx, chatID, text)
	if err != nil {
		return nil, err
	}
	return &Notice{ref: ref}, nil
}

// End deletes the transient message. Safe to call with a nil notice and
// safe to call more than once. A message the user already removed is not
// an error.
func (n *Notifier) End(ctx context.Context, notice *Notice) {
	if notice == nil || notice.done {
		return
	}
	notice.done = true

	err := n.transport.DeleteMessage(ctx, notice.ref)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMessageGone):
		n.logger.Debug("transient message already gone",
			"chat_id", notice.ref.ChatID, "message_id", notice.ref.MessageID)
	default:
		n.logger.Warn("failed to delete transient message",
			"chat_id", notice.ref.ChatID, "message_id", notice.ref.MessageID, "error", err)
	}
}
