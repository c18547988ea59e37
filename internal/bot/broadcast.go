package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleBroadcastMessage fans the admin's text out to every known user.
// Individual send failures (blocked bot, deleted account) are counted and
// skipped; the pass between successful sends is throttled to stay under
// Telegram's per-second limits.
func (b *Bot) handleBroadcastMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.sessions.clear(userID)
		return
	}
	text := msg.Text
	if strings.TrimSpace(text) == "" {
		b.reply(msg.Chat.ID, msgEnterBroadcast)
		return
	}
	b.sessions.clear(userID)

	ids, err := b.store.ListUserIDs()
	if err != nil {
		slog.Error("list broadcast recipients", "err", err)
		b.reply(msg.Chat.ID, msgGenericError)
		return
	}
	b.reply(msg.Chat.ID, msgBroadcastSending)

	var sent, failed int
	for _, id := range ids {
		if _, err := b.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
			failed++
			slog.Warn("broadcast send", "user_id", id, "err", err)
			continue
		}
		sent++
		time.Sleep(b.cfg.SendDelay)
	}

	if err := b.store.RecordBroadcast(text, sent); err != nil {
		slog.Error("record broadcast", "err", err)
	}
	slog.Info("broadcast finished", "sent", sent, "failed", failed)
	b.reply(msg.Chat.ID, fmt.Sprintf(msgBroadcastFinished, sent, failed))
}
