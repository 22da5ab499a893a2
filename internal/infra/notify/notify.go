package notify

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier is the sink for operation outcomes shown to the operator.
type Notifier interface {
	Notify(message string, kind Kind)
}

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(message string, kind Kind) {
	if kind == KindError {
		n.log.Error(message)
		return
	}
	n.log.Info(message)
}

// TelegramNotifier mirrors outcomes to the admin chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{api: api, chatID: chatID, log: log}, nil
}

func (n *TelegramNotifier) Notify(message string, kind Kind) {
	prefix := "✅ "
	if kind == KindError {
		prefix = "⚠️ "
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, prefix+message)); err != nil {
		n.log.Error("telegram notify failed", "err", err)
	}
}
