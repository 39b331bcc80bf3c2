package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

// Telegram allows roughly 30 messages a minute per chat; spacing sends two
// seconds apart stays well clear of 429 responses.
const defaultSendInterval = 2 * time.Second

// sender is the slice of the bot API the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts match notifications to one Telegram chat. Sends are
// serialized and paced by a minimum interval between any two messages.
type Notifier struct {
	bot      sender
	chatID   int64
	interval time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	lastSend time.Time
}

func New(token string, chatID int64, logger *logging.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("verify telegram bot token: %w", err)
	}
	return newWithSender(bot, chatID, logger), nil
}

func newWithSender(bot sender, chatID int64, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{
		bot:      bot,
		chatID:   chatID,
		interval: defaultSendInterval,
		logger:   logger,
	}
}

func (n *Notifier) Post(ctx context.Context, text string) error {
	return n.send(ctx, tgbotapi.NewMessage(n.chatID, text))
}

func (n *Notifier) PostImage(ctx context.Context, text string, image []byte) error {
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FileBytes{Name: "event.png", Bytes: image})
	photo.Caption = text
	return n.send(ctx, photo)
}

func (n *Notifier) send(ctx context.Context, msg tgbotapi.Chattable) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.interval - time.Since(n.lastSend); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	n.lastSend = time.Now()
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Debug("telegram message sent", "chat_id", n.chatID)
	return nil
}

// LogPoster is the dry-run sink: every message lands in the log instead of
// a chat. Used when Telegram is disabled in config.
type LogPoster struct {
	logger *logging.Logger
}

func NewLogPoster(logger *logging.Logger) *LogPoster {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogPoster{logger: logger}
}

func (l *LogPoster) Post(ctx context.Context, text string) error {
	l.logger.Info("dry-run post", "text", text)
	return nil
}

func (l *LogPoster) PostImage(ctx context.Context, text string, image []byte) error {
	l.logger.Info("dry-run post with image", "text", text, "image_bytes", len(image))
	return nil
}
