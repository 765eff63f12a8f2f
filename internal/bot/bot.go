package bot

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"persons-admin/internal/api"
	"persons-admin/internal/form"
	"persons-admin/internal/model"
	"sync"
)

// messenger is the part of *tgbotapi.BotAPI used to talk to chats.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type PersonsAPI interface {
	api.Lister
	form.Creator
}

// SessionStore persists per-chat state between updates and restarts.
type SessionStore interface {
	SaveGrid(ctx context.Context, chatID int64, state model.GridState) error
	GetGrid(ctx context.Context, chatID int64) (*model.GridState, error)
	SaveForm(ctx context.Context, chatID int64, state model.FormState) error
	GetForm(ctx context.Context, chatID int64) (*model.FormState, error)
	DeleteForm(ctx context.Context, chatID int64) error
}

type Options struct {
	PageSize            int
	ShowExtendedToolbar bool
	RedirectPath        string
}

type Bot struct {
	api      *tgbotapi.BotAPI
	out      messenger
	persons  PersonsAPI
	store    SessionStore
	actions  *actionCache
	opts     Options
	sessions sync.Map       // chat ID -> *chatSession
	stopChan chan struct{}  // Channel to signal stopping
	wg       sync.WaitGroup // WaitGroup for graceful shutdown
}

func NewBot(token string, store SessionStore, persons PersonsAPI, opts Options) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(botAPI, store, persons, opts)
	b.api = botAPI
	return b, nil
}

func newBot(out messenger, store SessionStore, persons PersonsAPI, opts Options) *Bot {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.RedirectPath == "" {
		opts.RedirectPath = "/"
	}
	return &Bot{
		out:      out,
		persons:  persons,
		store:    store,
		actions:  newActionCache(),
		opts:     opts,
		stopChan: make(chan struct{}),
	}
}

// Start reads updates until ctx is done or Stop is called. Every update is
// handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) {
	slog.Info("Authorized on account", slog.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.stopChan:
			slog.Info("Stopping bot update processing")
			return
		case <-ctx.Done():
			slog.Info("Context done, stopping bot update processing")
			return
		case update, ok := <-updates:
			if !ok {
				slog.Info("Updates channel closed")
				return
			}

			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if !update.Message.IsCommand() {
		b.handleMessage(ctx, update.Message)
		return
	}

	b.handleCommand(ctx, update.Message)
}

func (b *Bot) Stop() {
	slog.Info("Initiating bot shutdown...")
	close(b.stopChan) // Signal to stop processing updates

	// Close the bot API connection
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}

	b.wg.Wait() // Wait for in-flight updates and notifications
	b.sessions.Range(func(_, value any) bool {
		value.(*chatSession).grid.Close()
		return true
	})

	slog.Info("Bot shutdown complete")
}
