package notifier

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/offerhound/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

const defaultTelegramPause = time.Second

// TelegramNotifier sends one HTML message per offer to a chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
	pause  time.Duration
}

// NewTelegramNotifier authenticates the bot token (getMe) against endpoint,
// which defaults to the public Bot API.
func NewTelegramNotifier(token string, chatID int64, endpoint string, client *http.Client, logger *slog.Logger) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
		pause:  defaultTelegramPause,
	}, nil
}

// Notify returns an error only if every message fails.
func (t *TelegramNotifier) Notify(offers []model.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	failures := 0
	for i, o := range offers {
		if i > 0 {
			time.Sleep(t.pause)
		}
		msg := tgbotapi.NewMessage(t.chatID, telegramText(o))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error("telegram notification failed", "company", o.Company, "title", o.Title, "error", err)
			failures++
		}
	}

	if failures == len(offers) {
		return fmt.Errorf("all %d telegram notifications failed", failures)
	}
	t.logger.Info("telegram notifications complete", "sent", len(offers)-failures, "failed", failures)
	return nil
}

func telegramText(o model.Offer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", html.EscapeString(o.Title))
	fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(o.Company))
	fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(o.Location))
	fmt.Fprintf(&b, "🗂 %s\n", html.EscapeString(o.Source))
	if o.Description != "" {
		fmt.Fprintf(&b, "\n%s\n\n", html.EscapeString(summary(o.Description, 400)))
	}
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Apply Now</a>", html.EscapeString(o.JobURL))
	return b.String()
}
