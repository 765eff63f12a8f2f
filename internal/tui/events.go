package tui

import (
	"log/slog"
	"persons-admin/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

type notificationMsg struct {
	notification notify.Notification
}

type navigateMsg struct {
	path string
}

// Events carries notifications and navigation requests from the core into
// the bubbletea loop. It is both the notifier and the form navigator.
type Events struct {
	ch chan tea.Msg
}

func NewEvents(size int) *Events {
	return &Events{ch: make(chan tea.Msg, size)}
}

func (e *Events) Notify(n notify.Notification) {
	e.push(notificationMsg{notification: n})
}

func (e *Events) NavigateAfterCreate(path string) {
	e.push(navigateMsg{path: path})
}

func (e *Events) push(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
		slog.Warn("UI event queue full, dropping event")
	}
}

// Wait returns a command that delivers the next event.
func (e *Events) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
