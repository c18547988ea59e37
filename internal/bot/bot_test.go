package bot

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kitobbot/internal/domain"
	"kitobbot/internal/storage"
	"kitobbot/internal/store"
	"kitobbot/internal/subscription"
)

// fakeAPI records everything the bot sends and answers membership and
// file-info lookups from fixtures.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	statuses map[int64]string // channel chat ID -> member status, default "member"
	failSend map[int64]bool   // chat IDs whose sends error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := chattableChatID(c); ok && f.failSend[id] {
		return tgbotapi.Message{}, errors.New("forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error) {
	return tgbotapi.File{FileID: cfg.FileID, FilePath: "documents/" + cfg.FileID}, nil
}

func (f *fakeAPI) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	status := "member"
	if s, ok := f.statuses[cfg.ChatID]; ok {
		status = s
	}
	return tgbotapi.ChatMember{Status: status}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

// texts returns the plain and edited message texts in send order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch v := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, v.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, v.Text)
		}
	}
	return out
}

func (f *fakeAPI) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func chattableChatID(c tgbotapi.Chattable) (int64, bool) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID, true
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID, true
	case tgbotapi.DocumentConfig:
		return v.ChatID, true
	}
	return 0, false
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

const (
	adminID  = int64(1000)
	readerID = int64(42)
)

var testChannels = []subscription.Channel{
	{Name: "Kanal 1", URL: "https://t.me/kanal1", ChatID: -100111},
	{Name: "Kanal 2", URL: "https://t.me/kanal2", ChatID: -100222},
}

func newTestBot(t *testing.T, api *fakeAPI) (*Bot, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	b := New(api, st, files, nil, Config{
		Token:        "test-token",
		AdminIDs:     []int64{adminID},
		Channels:     testChannels,
		PromoChannel: "@kitob_tahlil",
		MaxFileSize:  50 * 1024 * 1024,
		SendDelay:    1, // no broadcast pauses in tests
	})
	b.httpc = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("%PDF-1.4 stub payload")),
		}, nil
	})}
	b.probePDF = func(string) (int, error) { return 3, nil }
	return b, st
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "user", FirstName: "Aziz"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func commandMessage(userID int64, cmd string) *tgbotapi.Message {
	msg := textMessage(userID, cmd)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return msg
}

func documentMessage(userID int64, name string, size int) *tgbotapi.Message {
	msg := textMessage(userID, "")
	msg.Document = &tgbotapi.Document{FileID: "file-" + name, FileName: name, FileSize: size}
	return msg
}

func callback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: userID}},
	}
}

func lastText(t *testing.T, api *fakeAPI) string {
	t.Helper()
	texts := api.texts()
	if len(texts) == 0 {
		t.Fatalf("no message sent")
	}
	return texts[len(texts)-1]
}

// seedBook installs a book with both files directly through the store and
// blob layer.
func seedBook(t *testing.T, b *Bot, st *store.MemoryStore, code, title string) {
	t.Helper()
	ctx := t.Context()
	bookRef, err := b.files.Save(ctx, code+".pdf", strings.NewReader("%PDF book"), 9)
	if err != nil {
		t.Fatalf("save book file: %v", err)
	}
	testRef, err := b.files.Save(ctx, code+"_test.pdf", strings.NewReader("%PDF test"), 9)
	if err != nil {
		t.Fatalf("save test file: %v", err)
	}
	err = st.AddBook(domain.Book{
		Code:        code,
		Title:       title,
		BookFileRef: bookRef,
		TestFileRef: testRef,
	})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
}

func TestStartShowsSubscriptionGate(t *testing.T) {
	api := &fakeAPI{}
	b, st := newTestBot(t, api)

	b.handleMessage(commandMessage(readerID, "/start"))

	if _, ok := st.User(readerID); !ok {
		t.Fatalf("user was not registered on /start")
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", api.sent[0])
	}
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("greeting has no inline keyboard")
	}
	// one URL row per channel plus the confirm button
	if got := len(markup.InlineKeyboard); got != len(testChannels)+1 {
		t.Fatalf("keyboard rows = %d, want %d", got, len(testChannels)+1)
	}
}

func TestSubscriptionCheckOpensCodePrompt(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(t, api)

	b.handleCallback(callback(readerID, callbackCheckSubscription))

	if got := lastText(t, api); got != msgSubscribed {
		t.Fatalf("reply = %q, want subscription success", got)
	}
	if b.sessions.get(readerID).step != stepAwaitBookCode {
		t.Fatalf("session not advanced to code prompt")
	}
}

func TestSubscriptionCheckRejectsLeftMember(t *testing.T) {
	api := &fakeAPI{statuses: map[int64]string{-100222: "left"}}
	b, _ := newTestBot(t, api)

	b.handleCallback(callback(readerID, callbackCheckSubscription))

	if got := lastText(t, api); got != msgNotSubscribed {
		t.Fatalf("reply = %q, want not-subscribed", got)
	}
	if b.sessions.get(readerID).step != stepNone {
		t.Fatalf("session advanced despite failed check")
	}
}

func TestBookCodeDeliversFilesAndRecordsDownload(t *testing.T) {
	api := &fakeAPI{}
	b, st := newTestBot(t, api)
	seedBook(t, b, st, "ABC123", "Atomic Habits")
	b.sessions.set(readerID, session{step: stepAwaitBookCode})

	b.handleMessage(textMessage(readerID, " abc123 "))

	docs := api.documents()
	if len(docs) != 2 {
		t.Fatalf("delivered %d documents, want 2", len(docs))
	}
	if docs[0].Caption != "📕 Atomic Habits" {
		t.Fatalf("book caption = %q", docs[0].Caption)
	}
	if !strings.Contains(docs[1].Caption, "Test savollari") {
		t.Fatalf("test caption = %q", docs[1].Caption)
	}
	if got := lastText(t, api); !strings.Contains(got, "@kitob_tahlil") {
		t.Fatalf("promo follow-up missing, last text %q", got)
	}

	book, _, _ := st.GetBook("ABC123")
	if book.DownloadCount != 1 {
		t.Fatalf("download count = %d, want 1", book.DownloadCount)
	}
	if len(st.Downloads()) != 1 {
		t.Fatalf("recorded %d downloads, want 1", len(st.Downloads()))
	}
	if b.sessions.get(readerID).step != stepAwaitBookCode {
		t.Fatalf("session closed after delivery; repeat codes must work")
	}
}

func TestBookCodeUnknownCode(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(t, api)
	b.sessions.set(readerID, session{step: stepAwaitBookCode})

	b.handleMessage(textMessage(readerID, "NOPE99"))

	if got := lastText(t, api); got != msgInvalidCode {
		t.Fatalf("reply = %q, want invalid-code", got)
	}
	if len(api.documents()) != 0 {
		t.Fatalf("documents delivered for unknown code")
	}
}

func TestBookCodeMissingFileIsDeliveryFailure(t *testing.T) {
	api := &fakeAPI{}
	b, st := newTestBot(t, api)
	seedBook(t, b, st, "ABC123", "Atomic Habits")
	book, _, _ := st.GetBook("ABC123")
	if err := b.files.Delete(t.Context(), book.TestFileRef); err != nil {
		t.Fatalf("delete test file: %v", err)
	}
	b.sessions.set(readerID, session{step: stepAwaitBookCode})

	b.handleMessage(textMessage(readerID, "ABC123"))

	if got := lastText(t, api); got != msgDeliveryFailed {
		t.Fatalf("reply = %q, want delivery failure (not invalid code)", got)
	}
	if got, _, _ := st.GetBook("ABC123"); got.DownloadCount != 0 {
		t.Fatalf("failed delivery was counted as a download")
	}
}

func TestCancelResetsConversation(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(t, api)
	b.sessions.set(readerID, session{step: stepAwaitBookCode})

	b.handleMessage(commandMessage(readerID, "/cancel"))

	if b.sessions.get(readerID).step != stepNone {
		t.Fatalf("session survived /cancel")
	}
	if got := lastText(t, api); got != msgCancelled {
		t.Fatalf("reply = %q", got)
	}
}

func TestTextWithoutConversationIsIgnored(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(t, api)

	b.handleMessage(textMessage(readerID, "ABC123"))

	if len(api.sent) != 0 {
		t.Fatalf("bot replied to a message outside any conversation")
	}
}
