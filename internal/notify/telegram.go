package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of the Telegram bot API the presenter needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPresenter pushes notifications into a Telegram chat.
type TelegramPresenter struct {
	api    sender
	chatID int64
	logger *slog.Logger
}

// NewTelegramPresenter authorizes the bot token and targets chatID.
func NewTelegramPresenter(token string, chatID int64, logger *slog.Logger) (*TelegramPresenter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram bot authorized", slog.String("account", api.Self.UserName))
	return &TelegramPresenter{api: api, chatID: chatID, logger: logger}, nil
}

func (p *TelegramPresenter) Present(ctx context.Context, n Notification) {
	if ctx.Err() != nil {
		return
	}
	msg := tgbotapi.NewMessage(p.chatID, formatHTML(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := p.api.Send(msg); err != nil {
		p.logger.ErrorContext(ctx, "send telegram notification",
			slog.String("id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}

func formatHTML(n Notification) string {
	return fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(n.Title), html.EscapeString(n.Body))
}
