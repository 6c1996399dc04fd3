// Package telegram mirrors warning-level lifecycle events to a Telegram chat
// so admins see reopenings and overdue reminders without polling the panel.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Alerter sends alert messages to a fixed admin chat. Delivery is
// best-effort; failures are logged and dropped.
type Alerter struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
	Log    *zap.SugaredLogger
}

// NewAlerter connects the bot and returns an alerter targeting the given
// chat.
func NewAlerter(token string, chatID int64, log *zap.SugaredLogger) (*Alerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Telegram alerter authorized as %s", bot.Self.UserName)
	return &Alerter{BotAPI: bot, ChatID: chatID, Log: log}, nil
}

// Alert sends one message to the admin chat.
func (a *Alerter) Alert(title, message string) {
	msg := tgbotapi.NewMessage(a.ChatID, "*"+title+"*\n"+message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := a.BotAPI.Send(msg); err != nil {
		a.Log.Errorf("ERROR: Failed to send Telegram alert: %v", err)
	}
}
