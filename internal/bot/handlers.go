package bot

import (
	"context"
	"errors"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"log/slog"
	"persons-admin/internal/grid"
	"strconv"
	"strings"
)

const (
	menuPersons   = "📋 Persons"
	menuAddPerson = "➕ Add person"
)

var errUsage = errors.New("usage")

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.handleStartCommand(msg)
	case "help":
		b.handleHelpCommand(msg)
	case "persons":
		b.handlePersonsCommand(ctx, chatID)
	case "search":
		s := b.session(ctx, chatID)
		s.grid.SetSearch(args)
		b.reloadGrid(ctx, chatID, s, 0)
	case "sort":
		b.handleSortCommand(ctx, chatID, args)
	case "filter":
		b.handleFilterCommand(ctx, chatID, args)
	case "size":
		b.handleSizeCommand(ctx, chatID, args)
	case "add":
		b.startForm(ctx, chatID)
	case "cancel":
		b.cancelForm(ctx, chatID)
	default:
		b.sendText(chatID, "Unknown command. See /help")
	}
}

func (b *Bot) handleStartCommand(msg *tgbotapi.Message) {
	text := "Hi! I manage persons: customers, vendors and providers.\n\n" +
		"Open the list or add a new person:"
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyMarkup = b.createMainMenuKeyboard()
	_, err := b.out.Send(reply)
	if err != nil {
		slog.Error("Error sending message in handleStartCommand", "error", err)
	}
}

func (b *Bot) handleHelpCommand(msg *tgbotapi.Message) {
	text := "How to use the bot:\n\n" +
		"/persons - show the persons list\n" +
		"/search <text> - search, empty text clears\n" +
		"/sort <" + strings.Join(grid.SortableColumns(), "|") + "> [asc|desc] - sort, /sort off clears\n" +
		"/filter <column> <value> - filter a column, no value clears it, /filter off clears all\n" +
		"/size <n> - rows per page\n" +
		"/add - add a person\n" +
		"/cancel - cancel adding\n\n" +
		"Any other text searches the list."
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyMarkup = b.createMainMenuKeyboard()
	_, err := b.out.Send(reply)
	if err != nil {
		slog.Error("Error sending message in handleHelpCommand", "error", err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Text {
	case menuPersons:
		b.handlePersonsCommand(ctx, chatID)
		return
	case menuAddPerson:
		b.startForm(ctx, chatID)
		return
	}

	s := b.session(ctx, chatID)
	if s.Step() != "" {
		b.handleFormInput(ctx, chatID, s, msg.Text)
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		b.sendText(chatID, "Please send a search text or use the menu below 👇")
		return
	}
	s.grid.SetSearch(msg.Text)
	b.reloadGrid(ctx, chatID, s, 0)
}

// handlePersonsCommand opens a fresh grid with the configured page size.
func (b *Bot) handlePersonsCommand(ctx context.Context, chatID int64) {
	s := b.session(ctx, chatID)
	s.grid.ClearFilters()
	s.grid.ClearSort()
	s.grid.SetSearch("")
	if _, err := s.grid.SetPageSize(b.opts.PageSize); err != nil {
		slog.Error("Error resetting page size", "error", err)
	}
	if _, err := s.grid.SetPageIndex(0); err != nil {
		slog.Error("Error resetting page index", "error", err)
	}
	b.reloadGrid(ctx, chatID, s, 0)
}

func (b *Bot) handleSortCommand(ctx context.Context, chatID int64, args string) {
	column, descending, off, err := parseSortArgs(args)
	if err != nil {
		b.sendText(chatID, fmt.Sprintf("Usage: /sort <%s> [asc|desc] or /sort off", strings.Join(grid.SortableColumns(), "|")))
		return
	}

	s := b.session(ctx, chatID)
	if off {
		s.grid.ClearSort()
	} else if _, err := s.grid.SetSort(column, descending); err != nil {
		b.sendText(chatID, "Cannot sort: "+err.Error())
		return
	}
	b.reloadGrid(ctx, chatID, s, 0)
}

func (b *Bot) handleFilterCommand(ctx context.Context, chatID int64, args string) {
	column, value, off, err := parseFilterArgs(args)
	if err != nil {
		b.sendText(chatID, "Usage: /filter <column> <value> or /filter off")
		return
	}

	s := b.session(ctx, chatID)
	if off {
		s.grid.ClearFilters()
	} else if _, err := s.grid.SetFilter(column, value); err != nil {
		b.sendText(chatID, "Cannot filter: "+err.Error())
		return
	}
	b.reloadGrid(ctx, chatID, s, 0)
}

func (b *Bot) handleSizeCommand(ctx context.Context, chatID int64, args string) {
	size, err := strconv.Atoi(args)
	if err != nil || size <= 0 || size > maxPageSize {
		b.sendText(chatID, fmt.Sprintf("Usage: /size <1-%d>", maxPageSize))
		return
	}

	s := b.session(ctx, chatID)
	if _, err := s.grid.SetPageSize(size); err != nil {
		b.sendText(chatID, "Cannot change page size: "+err.Error())
		return
	}
	b.reloadGrid(ctx, chatID, s, 0)
}

// reloadGrid fetches the current page and shows it. A result overtaken by a
// newer fetch is dropped, before or after it was applied; that fetch will
// render instead.
func (b *Bot) reloadGrid(ctx context.Context, chatID int64, s *chatSession, messageID int) {
	b.saveGrid(ctx, chatID, s)

	snap, applied := s.grid.Load(ctx)
	if !applied {
		slog.Debug("Grid result superseded", "chat", chatID)
		return
	}
	b.sendLatestGrid(chatID, messageID, s, snap)
}

func (b *Bot) sendLatestGrid(chatID int64, messageID int, s *chatSession, snap grid.Snapshot) {
	s.render.Lock()
	defer s.render.Unlock()

	if !s.grid.IsLatest(snap.Seq) {
		slog.Debug("Grid snapshot superseded before send", "chat", chatID, "seq", snap.Seq)
		return
	}
	b.sendGrid(chatID, messageID, snap)
}

func parseSortArgs(args string) (column string, descending bool, off bool, err error) {
	fields := strings.Fields(strings.ToLower(args))
	switch {
	case len(fields) == 0 || len(fields) > 2:
		return "", false, false, errUsage
	case fields[0] == "off":
		return "", false, true, nil
	case len(fields) == 1:
		return fields[0], false, false, nil
	}

	switch fields[1] {
	case "asc":
		return fields[0], false, false, nil
	case "desc":
		return fields[0], true, false, nil
	}
	return "", false, false, errUsage
}

func parseFilterArgs(args string) (column string, value string, off bool, err error) {
	column, value, _ = strings.Cut(strings.TrimSpace(args), " ")
	column = strings.ToLower(column)
	switch column {
	case "":
		return "", "", false, errUsage
	case "off":
		return "", "", true, nil
	}
	return column, strings.TrimSpace(value), false, nil
}
