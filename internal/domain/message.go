package domain

import "time"

// InboundMessage is one chat message as delivered by the transport layer.
// It is immutable for the duration of a workflow invocation.
type InboundMessage struct {
	ChatID    int64
	MessageID int
	SenderID  int64
	Username  string
	Text      string
	Locale    string // language tag from the transport ("ru", "en", ...)
	Timestamp time.Time
}

// MessageRef identifies a message the bot itself sent, so it can be
// deleted or referenced later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}
