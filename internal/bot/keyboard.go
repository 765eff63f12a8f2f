package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"persons-admin/internal/notify"
	"strconv"
)

const selectButtonsPerRow = 5

func (b *Bot) createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuPersons),
			tgbotapi.NewKeyboardButton(menuAddPerson),
		),
	)
}

func (b *Bot) createCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbFormCancel),
		),
	)
}

func (b *Bot) createPersonTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, t := range model.PersonTypes {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(string(t), cbFormType+":"+string(t)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		buttons,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbFormCancel),
		),
	)
}

func (b *Bot) createConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", cbFormSubmit),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbFormCancel),
		),
	)
}

func (b *Bot) createGridKeyboard(snap grid.Snapshot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var selectRow []tgbotapi.InlineKeyboardButton
	for i, p := range snap.Rows {
		mark := "☐"
		if snap.Selected[p.Id] {
			mark = "☑"
		}
		selectRow = append(selectRow, tgbotapi.NewInlineKeyboardButtonData(
			mark+" "+strconv.Itoa(i+1),
			cbSelect+":"+strconv.FormatInt(p.Id, 10),
		))
		if len(selectRow) == selectButtonsPerRow {
			rows = append(rows, selectRow)
			selectRow = nil
		}
	}
	if len(selectRow) > 0 {
		rows = append(rows, selectRow)
	}
	if len(snap.Rows) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Select all", cbSelectAll),
			tgbotapi.NewInlineKeyboardButtonData("Clear", cbSelectClear),
		))
	}

	rows = append(rows, b.createPaginationRow(snap))

	if b.opts.ShowExtendedToolbar {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(menuAddPerson, cbAddPerson),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) createPaginationRow(snap grid.Snapshot) []tgbotapi.InlineKeyboardButton {
	page := snap.Request.PageIndex
	var buttons []tgbotapi.InlineKeyboardButton
	if snap.HasPrev() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("⬅", cbPage+":"+strconv.Itoa(page-1)))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("🔄", cbRefresh))
	if snap.HasNext() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("➡", cbPage+":"+strconv.Itoa(page+1)))
	}
	return buttons
}

func (b *Bot) createActionKeyboard(label, id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbAction+":"+id),
		),
	)
}

func actionLabel(a *notify.Action) string {
	if a.Label == "" {
		return "Ok"
	}
	return a.Label
}
