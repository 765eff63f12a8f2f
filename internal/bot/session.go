package bot

import (
	"context"
	"log/slog"
	"persons-admin/internal/api"
	"persons-admin/internal/form"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"persons-admin/internal/notify"
	"sync"
)

// chatSession is everything a chat keeps between updates.
type chatSession struct {
	grid *grid.Controller
	form *form.Form

	mu   sync.Mutex // guards step
	step string

	render sync.Mutex // orders grid sends after a load
}

func (s *chatSession) Step() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *chatSession) setStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

func (b *Bot) session(ctx context.Context, chatID int64) *chatSession {
	if v, ok := b.sessions.Load(chatID); ok {
		return v.(*chatSession)
	}

	notifier := b.chatNotifier(chatID)
	s := &chatSession{
		grid: grid.NewController(api.NewPageFetcher(b.persons, notifier), notifier, b.opts.PageSize),
		form: form.New(b.persons, form.NavigatorFunc(func(path string) {
			b.navigateAfterCreate(ctx, chatID, path)
		}), b.opts.RedirectPath),
	}
	b.restoreSession(ctx, chatID, s)

	actual, loaded := b.sessions.LoadOrStore(chatID, s)
	if loaded {
		s.grid.Close()
	}
	return actual.(*chatSession)
}

func (b *Bot) restoreSession(ctx context.Context, chatID int64, s *chatSession) {
	gridState, err := b.store.GetGrid(ctx, chatID)
	if err != nil {
		slog.Error("Error getting grid state from Redis", "chat", chatID, "error", err)
	} else if gridState != nil {
		if err := s.grid.Restore(gridState.Request); err != nil {
			slog.Warn("Ignoring saved grid state", "chat", chatID, "error", err)
		}
	}

	formState, err := b.store.GetForm(ctx, chatID)
	if err != nil {
		slog.Error("Error getting form state from Redis", "chat", chatID, "error", err)
		return
	}
	if formState != nil {
		s.form.Restore(formState.Draft, formState.Touched)
		s.step = formState.Step
	}
}

func (b *Bot) saveGrid(ctx context.Context, chatID int64, s *chatSession) {
	state := model.GridState{Request: s.grid.Request()}
	if err := b.store.SaveGrid(ctx, chatID, state); err != nil {
		slog.Error("Error saving grid state to Redis", "chat", chatID, "error", err)
	}
}

func (b *Bot) saveForm(ctx context.Context, chatID int64, s *chatSession) {
	state := model.FormState{
		Draft:   s.form.Draft(),
		Touched: s.form.Touched(),
		Step:    s.Step(),
	}
	if err := b.store.SaveForm(ctx, chatID, state); err != nil {
		slog.Error("Error saving form state to Redis", "chat", chatID, "error", err)
	}
}

// chatNotifier delivers notifications as chat messages without blocking
// the caller.
func (b *Bot) chatNotifier(chatID int64) notify.Notifier {
	return notify.NotifierFunc(func(n notify.Notification) {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.sendNotification(chatID, n)
		}()
	})
}
