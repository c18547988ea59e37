package bot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kitobbot/internal/domain"
)

// handleStart registers the user and presents the subscription gate.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	from := msg.From
	err := b.store.UpsertUser(domain.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	})
	if err != nil {
		slog.Error("upsert user", "user_id", from.ID, "err", err)
	}
	b.sessions.clear(from.ID)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.verifier.Channels())+1)
	for _, ch := range b.verifier.Channels() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 "+ch.Name, ch.URL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(msgButtonConfirmSub, callbackCheckSubscription),
	))

	m := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(msgGreeting, from.FirstName))
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(m)
}

// handleSubscriptionCallback re-checks all channels and either opens the
// code prompt or offers a retry.
func (b *Bot) handleSubscriptionCallback(q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID
	if b.verifier.SubscribedToAll(q.From.ID) {
		b.editText(chatID, q.Message.MessageID, msgSubscribed)
		b.sessions.set(q.From.ID, session{step: stepAwaitBookCode})
		return
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(msgButtonRetrySub, callbackCheckSubscription),
	))
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, q.Message.MessageID, msgNotSubscribed, markup))
}

// handleBookCode redeems a code: both files are delivered, the download is
// recorded, and the promo follow-up is sent. The session stays open for
// further codes.
func (b *Bot) handleBookCode(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	if !b.limiter.Allow(userID) {
		b.reply(chatID, msgRateLimited)
		return
	}

	code := domain.NormalizeCode(msg.Text)
	book, found, err := b.store.GetBook(code)
	if err != nil {
		slog.Error("get book", "code", code, "err", err)
		b.reply(chatID, msgGenericError)
		return
	}
	if !found {
		b.reply(chatID, msgInvalidCode)
		return
	}

	ctx := context.Background()
	if !b.files.Exists(ctx, book.BookFileRef) || !b.files.Exists(ctx, book.TestFileRef) {
		slog.Error("book files missing", "code", book.Code,
			"book_ref", book.BookFileRef, "test_ref", book.TestFileRef)
		b.reply(chatID, msgDeliveryFailed)
		return
	}

	if err := b.sendStoredDocument(ctx, chatID, book.BookFileRef, book.Code+".pdf", "📕 "+book.Title); err != nil {
		slog.Error("send book file", "code", book.Code, "err", err)
		b.reply(chatID, msgDeliveryFailed)
		return
	}
	testName := book.Code + "_test" + filepath.Ext(book.TestFileRef)
	if err := b.sendStoredDocument(ctx, chatID, book.TestFileRef, testName, "📝 "+book.Title+" - Test savollari"); err != nil {
		slog.Error("send test file", "code", book.Code, "err", err)
		b.reply(chatID, msgDeliveryFailed)
		return
	}

	if err := b.store.RecordDownload(userID, book.Code); err != nil {
		slog.Error("record download", "user_id", userID, "code", book.Code, "err", err)
	}
	b.reply(chatID, fmt.Sprintf(msgPromo, b.cfg.PromoChannel))
}

func (b *Bot) sendStoredDocument(ctx context.Context, chatID int64, ref, filename, caption string) error {
	rc, err := b.files.Open(ctx, ref)
	if err != nil {
		return err
	}
	defer rc.Close()
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: filename, Reader: rc})
	doc.Caption = caption
	_, err = b.api.Send(doc)
	return err
}
