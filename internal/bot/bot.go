package bot

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kitobbot/internal/ratelimit"
	"kitobbot/internal/storage"
	"kitobbot/internal/store"
	"kitobbot/internal/subscription"
)

// API is the slice of the Telegram client the workflows use.
// *tgbotapi.BotAPI satisfies it; tests plug in a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Config holds the runtime settings the workflows need.
type Config struct {
	Token        string
	AdminIDs     []int64
	Channels     []subscription.Channel
	PromoChannel string
	MaxFileSize  int64
	SendDelay    time.Duration // pause between broadcast sends
}

// Bot routes incoming updates to the unlock and admin workflows.
type Bot struct {
	api      API
	store    store.Store
	files    storage.BlobStore
	verifier *subscription.Verifier
	limiter  *ratelimit.FixedWindowLimiter
	sessions *sessionMap
	admins   map[int64]bool
	cfg      Config

	httpc    *http.Client
	probePDF func(path string) (int, error)
}

// New wires the bot together. limiter may be nil to disable rate limiting.
func New(api API, st store.Store, files storage.BlobStore, limiter *ratelimit.FixedWindowLimiter, cfg Config) *Bot {
	if cfg.SendDelay == 0 {
		cfg.SendDelay = 100 * time.Millisecond
	}
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}
	return &Bot{
		api:      api,
		store:    st,
		files:    files,
		verifier: subscription.NewVerifier(chatMemberClient{api: api}, cfg.Channels),
		limiter:  limiter,
		sessions: newSessionMap(),
		admins:   admins,
		cfg:      cfg,
		httpc:    &http.Client{Timeout: 2 * time.Minute},
		probePDF: storage.ProbePDF,
	}
}

// Run polls for updates until ctx is cancelled. Each update is handled in
// its own goroutine; the design assumes one conversation per user at a time
// but different users proceed concurrently.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	slog.Info("bot polling for updates")
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(upd)
		}
	}
}

func (b *Bot) handleUpdate(upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r)
			if chatID := updateChatID(upd); chatID != 0 {
				b.reply(chatID, msgGenericError)
			}
		}
	}()
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(upd.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
		return
	case "admin":
		b.handleAdminMenu(msg)
		return
	case "cancel":
		b.handleCancel(msg)
		return
	}
	if msg.IsCommand() {
		return
	}

	step := b.sessions.get(msg.From.ID).step
	// only the upload steps accept attachments; a document or sticker sent
	// to a text prompt carries no text and is ignored
	if msg.Text == "" && step != stepAdminBookFile && step != stepAdminTestFile {
		return
	}
	switch step {
	case stepAdminCode:
		b.handleAdminBookCode(msg)
	case stepAdminTitle:
		b.handleAdminBookTitle(msg)
	case stepAdminBookFile, stepAdminTestFile:
		b.handleAdminFile(msg)
	case stepAdminBroadcast:
		b.handleBroadcastMessage(msg)
	case stepAwaitBookCode:
		b.handleBookCode(msg)
	default:
		// no conversation in progress; ignore until a fresh /start cycle
	}
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	b.answerCallback(q.ID)
	if q.From == nil || q.Message == nil || q.Message.Chat == nil {
		return
	}
	if q.Data == callbackCheckSubscription {
		b.handleSubscriptionCallback(q)
		return
	}
	b.handleAdminCallback(q)
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) {
	b.sessions.clear(msg.From.ID)
	b.reply(msg.Chat.ID, msgCancelled)
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

// send pushes a chattable out and logs transport failures.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		slog.Warn("telegram send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Warn("answer callback failed", "err", err)
	}
}

func updateChatID(upd tgbotapi.Update) int64 {
	if upd.Message != nil && upd.Message.Chat != nil {
		return upd.Message.Chat.ID
	}
	if upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil {
		return upd.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// chatMemberClient adapts the Telegram API to subscription.ChatMemberAPI.
type chatMemberClient struct {
	api API
}

func (c chatMemberClient) ChatMemberStatus(chatID, userID int64) (string, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}
