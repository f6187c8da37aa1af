package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// LevelSuccess marks a toast for a completed action.
	LevelSuccess = "success"
	// LevelError marks a toast for a failed action.
	LevelError = "error"
	// LevelInfo marks a neutral toast.
	LevelInfo = "info"
)

// Message describes a user-facing notification payload.
type Message struct {
	Level string    `json:"level"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Notifier delivers notifications to whatever renders them.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "level", message.Level, "title", message.Title, "body", message.Body)
	return nil
}

// Buffer retains the most recent notifications so the UI can render them as
// toasts, forwarding each message to an optional inner notifier.
type Buffer struct {
	mu       sync.Mutex
	messages []Message
	limit    int
	next     Notifier
}

// NewBuffer builds a bounded notification buffer. A limit of zero or less
// falls back to keeping the last 20 messages.
func NewBuffer(limit int, next Notifier) *Buffer {
	if limit <= 0 {
		limit = 20
	}
	return &Buffer{limit: limit, next: next}
}

// Send records the message, stamping it if the caller did not.
func (b *Buffer) Send(ctx context.Context, message Message) error {
	if message.At.IsZero() {
		message.At = time.Now().UTC()
	}

	b.mu.Lock()
	b.messages = append(b.messages, message)
	if len(b.messages) > b.limit {
		b.messages = b.messages[len(b.messages)-b.limit:]
	}
	b.mu.Unlock()

	if b.next != nil {
		return b.next.Send(ctx, message)
	}
	return nil
}

// Recent returns a copy of the buffered messages, oldest first.
func (b *Buffer) Recent() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}
