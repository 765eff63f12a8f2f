package bot

import (
	"context"
	"errors"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"persons-admin/internal/form"
	"strings"
)

const (
	stepConfirm = "confirm"
	skipAnswer  = "-"
)

func (b *Bot) startForm(ctx context.Context, chatID int64) {
	s := b.session(ctx, chatID)
	s.form.Reset()
	s.setStep(form.Fields[0])
	b.saveForm(ctx, chatID, s)
	b.askField(chatID, form.Fields[0], "")
}

func (b *Bot) cancelForm(ctx context.Context, chatID int64) {
	s := b.session(ctx, chatID)
	s.form.Reset()
	s.setStep("")
	if err := b.store.DeleteForm(ctx, chatID); err != nil {
		slog.Error("Error deleting form state from Redis", "error", err)
	}

	reply := tgbotapi.NewMessage(chatID, "Adding a person cancelled")
	reply.ReplyMarkup = b.createMainMenuKeyboard()
	if _, err := b.out.Send(reply); err != nil {
		slog.Error("Error sending cancel message", "error", err)
	}
}

func (b *Bot) handleFormInput(ctx context.Context, chatID int64, s *chatSession, text string) {
	field := s.Step()
	switch field {
	case form.FieldPersonType:
		b.askField(chatID, field, "Please choose a type with the buttons")
		return
	case stepConfirm:
		b.sendFormSummary(chatID, s, "Please press Save or Cancel")
		return
	}

	value := strings.TrimSpace(text)
	if field == form.FieldGST && value == skipAnswer {
		value = ""
	}
	b.applyFormValue(ctx, chatID, s, field, value)
}

// applyFormValue stores one answer and either re-asks the field or moves
// to the next one.
func (b *Bot) applyFormValue(ctx context.Context, chatID int64, s *chatSession, field, value string) {
	if err := s.form.Set(field, value); err != nil {
		slog.Error("Error setting form field", "field", field, "error", err)
		return
	}

	if problem := s.form.Errors().Error(field); problem != "" {
		b.saveForm(ctx, chatID, s)
		b.askField(chatID, field, problem)
		return
	}

	next := nextStep(field)
	s.setStep(next)
	b.saveForm(ctx, chatID, s)
	if next == stepConfirm {
		b.sendFormSummary(chatID, s, "")
		return
	}
	b.askField(chatID, next, "")
}

func (b *Bot) submitForm(ctx context.Context, chatID int64, s *chatSession) {
	if s.Step() != stepConfirm {
		b.sendText(chatID, "There is nothing to save. Use /add to add a person")
		return
	}

	person, err := s.form.Submit(ctx)
	var validationErr *form.ValidationError
	var submitErr *form.SubmitError
	switch {
	case err == nil:
		slog.Info("Person added from chat", "chat", chatID, "id", person.Id)
	case errors.Is(err, form.ErrSubmitInProgress):
		b.sendText(chatID, "⏳ Saving, please wait..")
	case errors.As(err, &validationErr):
		field := firstInvalid(validationErr.Fields)
		s.setStep(field)
		b.saveForm(ctx, chatID, s)
		b.askField(chatID, field, validationErr.Fields.Error(field))
	case errors.As(err, &submitErr):
		b.sendFormSummary(chatID, s, "⚠️ "+submitErr.Status)
	default:
		slog.Error("Unexpected submit error", "error", err)
		b.sendFormSummary(chatID, s, "⚠️ "+form.StatusIncorrect)
	}
}

// navigateAfterCreate is the form's navigation target: it closes the
// dialog and shows what the redirect path points at.
func (b *Bot) navigateAfterCreate(ctx context.Context, chatID int64, path string) {
	s := b.session(ctx, chatID)
	s.form.Reset()
	s.setStep("")
	if err := b.store.DeleteForm(ctx, chatID); err != nil {
		slog.Error("Error deleting form state from Redis", "error", err)
	}

	slog.Debug("Navigating after create", "chat", chatID, "path", path)
	if path == "/persons" {
		b.sendText(chatID, "✅ Person saved")
		b.reloadGrid(ctx, chatID, s, 0)
		return
	}

	reply := tgbotapi.NewMessage(chatID, "✅ Person saved")
	reply.ReplyMarkup = b.createMainMenuKeyboard()
	if _, err := b.out.Send(reply); err != nil {
		slog.Error("Error sending main menu", "error", err)
	}
}

func (b *Bot) askField(chatID int64, field, problem string) {
	text := fieldPrompt(field)
	if problem != "" {
		text = "⚠️ " + problem + "\n" + text
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if field == form.FieldPersonType {
		msg.ReplyMarkup = b.createPersonTypeKeyboard()
	} else {
		msg.ReplyMarkup = b.createCancelKeyboard()
	}
	if _, err := b.out.Send(msg); err != nil {
		slog.Error("Error sending form prompt", "field", field, "error", err)
	}
}

func (b *Bot) sendFormSummary(chatID int64, s *chatSession, status string) {
	text := formatDraft(s.form.Draft())
	if status != "" {
		text = status + "\n\n" + text
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = b.createConfirmKeyboard()
	if _, err := b.out.Send(msg); err != nil {
		slog.Error("Error sending form summary", "error", err)
	}
}

func nextStep(field string) string {
	for i, f := range form.Fields {
		if f == field && i+1 < len(form.Fields) {
			return form.Fields[i+1]
		}
	}
	return stepConfirm
}

func firstInvalid(result form.ValidationResult) string {
	for _, f := range form.Fields {
		if result.Error(f) != "" {
			return f
		}
	}
	return form.Fields[0]
}

func fieldPrompt(field string) string {
	switch field {
	case form.FieldGST:
		return fmt.Sprintf("Enter %s (15 symbols) or %q to skip:", form.Label(field), skipAnswer)
	case form.FieldPersonType:
		return "Choose " + form.Label(field) + ":"
	}
	return "Enter " + form.Label(field) + ":"
}
