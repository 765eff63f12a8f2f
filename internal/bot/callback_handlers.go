package bot

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"persons-admin/internal/form"
	"strconv"
	"strings"
)

const (
	cbPage        = "page"
	cbSelect      = "select"
	cbSelectAll   = "select_all"
	cbSelectClear = "select_clear"
	cbRefresh     = "refresh"
	cbAddPerson   = "add_person"
	cbFormType    = "form_type"
	cbFormSubmit  = "form_submit"
	cbFormCancel  = "form_cancel"
	cbAction      = "action"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		slog.Warn("Received callback without message", "data", query.Data)
		return
	}

	callbackConfig := tgbotapi.CallbackConfig{
		CallbackQueryID: query.ID,
	}
	if _, err := b.out.Request(callbackConfig); err != nil {
		slog.Error("Error sending callback response", "error", err)
	}

	data := query.Data
	parts := strings.SplitN(data, ":", 2)
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	requireSecondParam := map[string]bool{
		cbPage:     true,
		cbSelect:   true,
		cbFormType: true,
		cbAction:   true,
	}

	if requireSecondParam[parts[0]] && len(parts) < 2 {
		slog.Warn("Invalid callback format", "data", data)
		return
	}

	switch parts[0] {
	case cbPage:
		page, err := strconv.Atoi(parts[1])
		if err != nil {
			slog.Warn("Invalid page in callback", "data", data)
			return
		}
		b.handlePageCallback(ctx, chatID, messageID, page)
	case cbSelect:
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			slog.Warn("Invalid person id in callback", "data", data)
			return
		}
		b.handleSelectCallback(ctx, chatID, messageID, id)
	case cbSelectAll:
		s := b.session(ctx, chatID)
		s.grid.SelectAll()
		b.sendGrid(chatID, messageID, s.grid.Snapshot())
	case cbSelectClear:
		s := b.session(ctx, chatID)
		s.grid.ClearSelection()
		b.sendGrid(chatID, messageID, s.grid.Snapshot())
	case cbRefresh:
		b.reloadGrid(ctx, chatID, b.session(ctx, chatID), messageID)
	case cbAddPerson:
		b.startForm(ctx, chatID)
	case cbFormType:
		s := b.session(ctx, chatID)
		if s.Step() != form.FieldPersonType {
			slog.Debug("Stale person type callback", "chat", chatID)
			return
		}
		b.applyFormValue(ctx, chatID, s, form.FieldPersonType, parts[1])
	case cbFormSubmit:
		b.submitForm(ctx, chatID, b.session(ctx, chatID))
	case cbFormCancel:
		b.cancelForm(ctx, chatID)
	case cbAction:
		b.handleActionCallback(chatID, messageID, parts[1])
	default:
		slog.Warn("Unknown callback", "data", data)
	}
}

func (b *Bot) handlePageCallback(ctx context.Context, chatID int64, messageID int, page int) {
	s := b.session(ctx, chatID)
	if _, err := s.grid.SetPageIndex(page); err != nil {
		slog.Warn("Invalid page index", "page", page, "error", err)
		return
	}
	b.reloadGrid(ctx, chatID, s, messageID)
}

func (b *Bot) handleSelectCallback(ctx context.Context, chatID int64, messageID int, id int64) {
	s := b.session(ctx, chatID)
	if !s.grid.ToggleRow(id) {
		b.sendStateExpired(chatID)
		return
	}
	b.sendGrid(chatID, messageID, s.grid.Snapshot())
}

func (b *Bot) handleActionCallback(chatID int64, messageID int, id string) {
	if !b.actions.Run(id) {
		b.sendText(chatID, "This action has expired")
		return
	}
	if _, err := b.out.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		slog.Error("Error deleting notification message", "error", err)
	}
}
