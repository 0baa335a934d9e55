// Package notification pushes run results to Telegram so long
// backtests can be started and left unattended.
package notification

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/ezquant/backlab/backlab/service"
	"github.com/ezquant/backlab/backlab/tools/log"
)

// Telegram notifies a single chat when a backtest run finishes or
// fails.
type Telegram struct {
	bot  *tb.Bot
	chat *tb.Chat
}

// NewTelegram connects the bot and resolves the target chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}

	return &Telegram{
		bot:  bot,
		chat: &tb.Chat{ID: chatID},
	}, nil
}

// OnRunFinished sends a short summary of a completed run.
func (t *Telegram) OnRunFinished(summary service.RunSummary) {
	text := fmt.Sprintf(
		"Backtest finished\nStrategy: %s\nPeriod: %s to %s\nUniverse: %d symbols\nTrades: %d",
		summary.Strategy, summary.Start, summary.End,
		summary.UniverseSize, summary.TradesCount,
	)
	if sharpe, ok := summary.Metrics["sharpe"]; ok {
		text += fmt.Sprintf("\nSharpe: %.2f", sharpe)
	}

	if _, err := t.bot.Send(t.chat, text); err != nil {
		log.Errorf("send telegram notification: %v", err)
	}
}

// OnError reports a failed run.
func (t *Telegram) OnError(err error) {
	if _, sendErr := t.bot.Send(t.chat, fmt.Sprintf("Backtest failed: %v", err)); sendErr != nil {
		log.Errorf("send telegram notification: %v", sendErr)
	}
}
