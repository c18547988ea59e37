package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kitobbot/internal/domain"
	"kitobbot/internal/store"
)

// handleAdminMenu shows the admin panel. Non-operators get a rejection and
// no state change.
func (b *Bot) handleAdminMenu(msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, msgNotAdmin)
		return
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Kitob qo'shish", callbackAdminAddBook)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Kitoblar ro'yxati", callbackAdminBookList)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Statistika", callbackAdminStats)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📤 Xabar yuborish", callbackAdminBroadcast)),
	)
	m := tgbotapi.NewMessage(msg.Chat.ID, msgAdminMenu)
	m.ReplyMarkup = markup
	b.send(m)
}

func (b *Bot) handleAdminCallback(q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	if !b.isAdmin(q.From.ID) {
		b.editText(chatID, messageID, msgNotAdmin)
		return
	}
	data := q.Data
	switch {
	case data == callbackAdminAddBook:
		b.sessions.set(q.From.ID, session{step: stepAdminCode})
		b.editText(chatID, messageID, msgEnterBookCode)
	case data == callbackAdminBookList:
		b.showBookList(chatID, messageID)
	case data == callbackAdminStats:
		b.showStats(chatID, messageID)
	case data == callbackAdminBroadcast:
		b.sessions.set(q.From.ID, session{step: stepAdminBroadcast})
		b.editText(chatID, messageID, msgEnterBroadcast)
	case strings.HasPrefix(data, prefixConfirmDelete):
		b.deleteBook(chatID, messageID, strings.TrimPrefix(data, prefixConfirmDelete))
	case strings.HasPrefix(data, prefixDeleteBook):
		b.confirmDeleteBook(chatID, messageID, strings.TrimPrefix(data, prefixDeleteBook))
	case data == callbackCancelDelete:
		b.editText(chatID, messageID, msgDeleteAborted)
	}
}

func (b *Bot) showBookList(chatID int64, messageID int) {
	books, err := b.store.ListBooks()
	if err != nil {
		slog.Error("list books", "err", err)
		b.editText(chatID, messageID, msgGenericError)
		return
	}
	if len(books) == 0 {
		b.editText(chatID, messageID, msgNoBooks)
		return
	}
	var sb strings.Builder
	sb.WriteString("📚 Barcha kitoblar:\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(books))
	for _, book := range books {
		fmt.Fprintf(&sb, "📖 %s - %s\n   📥 Yuklab olingan: %d marta\n\n", book.Code, book.Title, book.DownloadCount)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+book.Code+" o'chirish", prefixDeleteBook+book.Code),
		))
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)))
}

func (b *Bot) showStats(chatID int64, messageID int) {
	stats, err := b.store.Stats()
	if err != nil {
		slog.Error("load stats", "err", err)
		b.editText(chatID, messageID, msgGenericError)
		return
	}
	var sb strings.Builder
	sb.WriteString("📊 Bot statistikasi:\n\n")
	fmt.Fprintf(&sb, "👥 Jami foydalanuvchilar: %d\n", stats.TotalUsers)
	fmt.Fprintf(&sb, "📚 Faol foydalanuvchilar: %d\n", stats.ActiveUsers)
	fmt.Fprintf(&sb, "📥 Jami yuklab olingan: %d\n\n", stats.TotalDownloads)
	if len(stats.TopBooks) > 0 {
		sb.WriteString("🔥 Eng mashhur kitoblar:\n")
		for i, book := range stats.TopBooks {
			fmt.Fprintf(&sb, "%d. %s - %s (%d marta)\n", i+1, book.Code, book.Title, book.DownloadCount)
		}
	}
	b.editText(chatID, messageID, sb.String())
}

// handleAdminBookCode is the first add-book step: a fresh unique code.
func (b *Bot) handleAdminBookCode(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.sessions.clear(userID)
		return
	}
	code := domain.NormalizeCode(msg.Text)
	if code == "" {
		b.reply(msg.Chat.ID, msgEnterBookCode)
		return
	}
	_, exists, err := b.store.GetBook(code)
	if err != nil {
		slog.Error("check book code", "code", code, "err", err)
		b.reply(msg.Chat.ID, msgGenericError)
		return
	}
	if exists {
		// stay at this step; the operator can try another code or /cancel
		b.reply(msg.Chat.ID, fmt.Sprintf(msgCodeExists, code))
		return
	}
	b.sessions.set(userID, session{step: stepAdminTitle, draft: bookDraft{code: code}})
	b.reply(msg.Chat.ID, fmt.Sprintf(msgEnterBookTitle, code))
}

func (b *Bot) handleAdminBookTitle(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.sessions.clear(userID)
		return
	}
	sess := b.sessions.get(userID)
	title := strings.TrimSpace(msg.Text)
	if title == "" {
		b.reply(msg.Chat.ID, fmt.Sprintf(msgEnterBookTitle, sess.draft.code))
		return
	}
	sess.draft.title = title
	sess.step = stepAdminBookFile
	b.sessions.set(userID, sess)
	b.reply(msg.Chat.ID, msgUploadBookFile)
}

// handleAdminFile covers both upload steps. Validation failures keep the
// conversation at the same step for a retry.
func (b *Bot) handleAdminFile(msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	if !b.isAdmin(userID) {
		b.sessions.clear(userID)
		return
	}
	if msg.Document == nil {
		b.reply(chatID, msgNeedDocument)
		return
	}
	doc := msg.Document
	if int64(doc.FileSize) > b.cfg.MaxFileSize {
		b.reply(chatID, msgFileTooLarge)
		return
	}

	sess := b.sessions.get(userID)
	name := strings.ToLower(doc.FileName)
	if sess.step == stepAdminBookFile {
		if !strings.HasSuffix(name, ".pdf") {
			b.reply(chatID, msgBookPDFOnly)
			return
		}
		ref, err := b.fetchAndStore(doc.FileID, sess.draft.code+".pdf", true)
		if err != nil {
			slog.Error("store book file", "code", sess.draft.code, "err", err)
			b.reply(chatID, uploadErrorMessage(err))
			return
		}
		sess.draft.bookFileRef = ref
		sess.step = stepAdminTestFile
		b.sessions.set(userID, sess)
		b.reply(chatID, msgBookFileSaved)
		return
	}

	// test file step
	ext := extOf(name)
	if ext != ".pdf" && ext != ".doc" && ext != ".docx" {
		b.reply(chatID, msgTestFormats)
		return
	}
	ref, err := b.fetchAndStore(doc.FileID, sess.draft.code+"_test"+ext, ext == ".pdf")
	if err != nil {
		slog.Error("store test file", "code", sess.draft.code, "err", err)
		b.reply(chatID, uploadErrorMessage(err))
		return
	}

	err = b.store.AddBook(domain.Book{
		Code:        sess.draft.code,
		Title:       sess.draft.title,
		BookFileRef: sess.draft.bookFileRef,
		TestFileRef: ref,
	})
	b.sessions.clear(userID)
	switch {
	case errors.Is(err, store.ErrDuplicateCode):
		// a concurrent add won the race; the orphaned files stay behind
		b.reply(chatID, fmt.Sprintf(msgCodeExists, sess.draft.code))
	case err != nil:
		slog.Error("add book", "code", sess.draft.code, "err", err)
		b.reply(chatID, msgBookSaveFailed)
	default:
		b.reply(chatID, fmt.Sprintf(msgBookAdded, sess.draft.code, sess.draft.title, sess.draft.code))
	}
}

func (b *Bot) confirmDeleteBook(chatID int64, messageID int, code string) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Ha, o'chirish", prefixConfirmDelete+code)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Yo'q, bekor qilish", callbackCancelDelete)),
	)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, fmt.Sprintf(msgConfirmDelete, code), markup))
}

// deleteBook removes the files best-effort, then the store record. File
// removal failures are logged but never block the record deletion.
func (b *Bot) deleteBook(chatID int64, messageID int, code string) {
	book, found, err := b.store.GetBook(code)
	if err != nil {
		slog.Error("get book for delete", "code", code, "err", err)
		b.editText(chatID, messageID, msgGenericError)
		return
	}
	if !found {
		b.editText(chatID, messageID, msgBookNotFound)
		return
	}

	ctx := context.Background()
	if err := b.files.Delete(ctx, book.BookFileRef); err != nil {
		slog.Warn("delete book file", "code", book.Code, "ref", book.BookFileRef, "err", err)
	}
	if err := b.files.Delete(ctx, book.TestFileRef); err != nil {
		slog.Warn("delete test file", "code", book.Code, "ref", book.TestFileRef, "err", err)
	}

	removed, err := b.store.DeleteBook(code)
	if err != nil || !removed {
		slog.Error("delete book record", "code", code, "removed", removed, "err", err)
		b.editText(chatID, messageID, msgDeleteFailed)
		return
	}
	b.editText(chatID, messageID, fmt.Sprintf(msgDeleted, book.Code))
}

func uploadErrorMessage(err error) string {
	if errors.Is(err, errBadPDF) {
		return msgCorruptPDF
	}
	return msgUploadFailed
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
