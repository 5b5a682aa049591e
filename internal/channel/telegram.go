// Package channel connects the bot to Telegram: long polling for inbound
// messages and the outbound transport for replies and audio uploads.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spotibot/internal/bus"
	"spotibot/internal/domain"
)

const (
	telegramPollTimeout    = 30 // seconds, long-poll
	telegramMaxSendRetries = 3
)

// Telegram implements domain.Transport over the Bot API and feeds inbound
// messages into the bus.
type Telegram struct {
	token     string
	allowFrom []int64 // Allowed user IDs (empty = allow all)

	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

type TelegramConfig struct {
	Token     string
	AllowFrom []string // User IDs as strings
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	return &Telegram{
		token:     cfg.Token,
		allowFrom: allowed,
		logger:    cfg.Logger,
	}
}

// Connect authenticates against the Bot API. Must be called before Start
// or any Transport method.
func (t *Telegram) Connect() error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)
	return nil
}

// Start polls for updates and publishes each text message to the bus.
// Blocks until the context is cancelled.
func (t *Telegram) Start(ctx context.Context, b *bus.InMemoryBus) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = telegramPollTimeout
	updates := t.bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			t.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update, b)
		}
	}
}

func (t *Telegram) handleUpdate(update tgbotapi.Update, b *bus.InMemoryBus) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !t.isAllowed(userID) {
		t.logger.Warn("ignoring message from unauthorized user",
			"user_id", userID,
			"username", update.Message.From.UserName,
		)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	t.logger.Info("telegram message received",
		"user_id", userID,
		"chat_id", chatID,
		"text_len", len(text),
	)

	b.Publish(domain.InboundMessage{
		ChatID:    chatID,
		MessageID: update.Message.MessageID,
		SenderID:  userID,
		Username:  update.Message.From.UserName,
		Text:      text,
		Locale:    update.Message.From.LanguageCode,
		Timestamp: time.Unix(int64(update.Message.Date), 0),
	})
}

func (t *Telegram) isAllowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true // Empty list = allow all
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

// SendMessage posts a plain text message to a chat.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) (domain.MessageRef, error) {
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// Reply posts a text message as a reply to an inbound message.
func (t *Telegram) Reply(ctx context.Context, to domain.InboundMessage, text string) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ReplyToMessageID = to.MessageID
	return t.send(ctx, msg)
}

// ReplyAudio uploads a local audio file as a reply, tagged with the track
// title and performer.
func (t *Telegram) ReplyAudio(ctx context.Context, to domain.InboundMessage, track domain.TrackInfo, filePath string) (domain.MessageRef, error) {
	audio := tgbotapi.NewAudio(to.ChatID, tgbotapi.FilePath(filePath))
	audio.ReplyToMessageID = to.MessageID
	audio.Title = track.DisplayName
	audio.Performer = track.Artist
	return t.send(ctx, audio)
}

// DeleteMessage removes a message the bot sent earlier. A message that
// was already removed maps to domain.ErrMessageGone.
func (t *Telegram) DeleteMessage(ctx context.Context, ref domain.MessageRef) error {
	_, err := t.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	if err != nil {
		if isGoneError(err) {
			return domain.ErrMessageGone
		}
		return fmt.Errorf("delete message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

// send delivers one message with rate limit handling: on HTTP 429 it backs
// off and retries up to telegramMaxSendRetries times.
func (t *Telegram) send(ctx context.Context, c tgbotapi.Chattable) (domain.MessageRef, error) {
	var lastErr error
	for attempt := 0; attempt <= telegramMaxSendRetries; attempt++ {
		sent, err := t.bot.Send(c)
		if err == nil {
			return domain.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
		}
		lastErr = err

		if !isRateLimitError(err) {
			break
		}
		retryAfter := time.Duration(attempt+1) * 3 * time.Second
		t.logger.Warn("telegram rate limited, backing off",
			"retry_after", retryAfter, "attempt", attempt+1,
		)
		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return domain.MessageRef{}, ctx.Err()
		}
	}
	return domain.MessageRef{}, fmt.Errorf("telegram send: %w", lastErr)
}

func isRateLimitError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") || strings.Contains(s, "429")
}

func isGoneError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "message to delete not found") ||
		strings.Contains(s, "message can't be deleted")
}
