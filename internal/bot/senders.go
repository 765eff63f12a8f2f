package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"persons-admin/internal/grid"
	"persons-admin/internal/notify"
	"strings"
	"time"
)

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.out.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Error sending message", "error", err)
	}
}

func (b *Bot) sendStateExpired(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "This list is out of date. Please open it again with /persons")
	msg.ReplyMarkup = b.createMainMenuKeyboard()
	_, err := b.out.Send(msg)
	if err != nil {
		slog.Error("Error sending session expired message", "error", err)
	}
}

// sendGrid shows a grid snapshot, editing messageID in place when it is set.
func (b *Bot) sendGrid(chatID int64, messageID int, snap grid.Snapshot) {
	start := time.Now()
	defer func() {
		slog.Debug("sendGrid executed",
			"duration", time.Since(start).Seconds(),
			"rows", len(snap.Rows))
	}()

	text := formatGrid(snap, b.opts.ShowExtendedToolbar)
	keyboard := b.createGridKeyboard(snap)

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
		edit.ParseMode = "HTML"
		edit.DisableWebPagePreview = true
		_, err := b.out.Send(edit)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			return
		}
		slog.Warn("Edit grid message failed, sending a new one", "error", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = keyboard
	if _, err := b.out.Send(msg); err != nil {
		slog.Error("Send grid err:", "error", err)
	}
}

func (b *Bot) sendNotification(chatID int64, n notify.Notification) {
	msg := tgbotapi.NewMessage(chatID, formatNotification(n))
	msg.ParseMode = "HTML"

	if n.Action != nil {
		onClick := n.Action.OnClick
		id := b.actions.Put(func() {
			if onClick != nil {
				onClick()
			}
			b.afterAction(chatID)
		})
		msg.ReplyMarkup = b.createActionKeyboard(actionLabel(n.Action), id)
	}

	if _, err := b.out.Send(msg); err != nil {
		slog.Error("Error sending notification", "title", n.Title, "error", err)
	}
}

// afterAction re-renders the grid from memory so an undone selection shows.
func (b *Bot) afterAction(chatID int64) {
	v, ok := b.sessions.Load(chatID)
	if !ok {
		return
	}
	snap := v.(*chatSession).grid.Snapshot()
	if len(snap.Rows) == 0 {
		return
	}
	b.sendGrid(chatID, 0, snap)
}
