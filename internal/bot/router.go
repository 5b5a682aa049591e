package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"spotibot/internal/bus"
	"spotibot/internal/domain"
	"spotibot/internal/locale"
	"spotibot/internal/metrics"
)

// Router consumes inbound messages from the bus and dispatches each one
// on its own goroutine, bounded by a concurrency limit. Command messages
// ("/start") are handled inline; everything else goes through the
// orchestrator.
type Router struct {
	bus          *bus.InMemoryBus
	orchestrator *Orchestrator
	transport    domain.Transport
	users        domain.UserStore
	locales      *locale.Table
	concurrency  int
	logger       *slog.Logger
}

func NewRouter(
	b *bus.InMemoryBus,
	orchestrator *Orchestrator,
	transport domain.Transport,
	users domain.UserStore,
	locales *locale.Table,
	concurrency int,
	logger *slog.Logger,
) *Router {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Router{
		bus:          b,
		orchestrator: orchestrator,
		transport:    transport,
		users:        users,
		locales:      locales,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Run processes messages until the context is cancelled or the bus is
// closed and drained. In-flight handlers are waited for before returning.
func (r *Router) Run(ctx context.Context) {
	inbound := r.bus.Subscribe()
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			r.logger.Info("router stopped")
			return
		case msg, ok := <-inbound:
			if !ok {
				wg.Wait()
				r.logger.Info("router stopped: bus closed")
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(m domain.InboundMessage) {
				defer wg.Done()
				defer func() { <-sem }()
				r.dispatch(ctx, m)
			}(msg)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, msg domain.InboundMessage) {
	metrics.MessagesReceived.Inc()

	if isStartCommand(msg.Text) {
		r.handleStart(ctx, msg)
		return
	}

	if err := r.orchestrator.Handle(ctx, msg); err != nil {
		// The user is not told about failures; the transient status
		// message cleanup already ran.
		r.logger.Error("message handling failed",
			"chat_id", msg.ChatID, "sender", msg.SenderID, "error", err)
	}
}

// isStartCommand matches "/start" as the first token, so deep-link
// payloads ("/start ref123") are still treated as the command.
func isStartCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && fields[0] == "/start"
}

// handleStart registers the user on first contact and always replies with
// the welcome message. Registration is idempotent.
func (r *Router) handleStart(ctx context.Context, msg domain.InboundMessage) {
	exists, err := r.users.Exists(ctx, msg.SenderID)
	if err != nil {
		r.logger.Error("user lookup failed", "sender", msg.SenderID, "error", err)
	} else if !exists {
		if err := r.users.Insert(ctx, msg.SenderID); err != nil {
			r.logger.Error("user registration failed", "sender", msg.SenderID, "error", err)
		} else {
			metrics.UsersRegistered.Inc()
			r.logger.Info("new user registered", "sender", msg.SenderID, "username", msg.Username)
		}
	}

	welcome := r.locales.Format(msg.Locale, locale.KeyWelcome, msg.Username)
	if _, err := r.transport.Reply(ctx, msg, welcome); err != nil {
		r.logger.Error("welcome reply failed", "chat_id", msg.ChatID, "error", err)
	}
}
