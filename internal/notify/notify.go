// Package notify defines the toast-style notification sink shared by the
// fetch adapter, the grid and the front ends.
package notify

import "log/slog"

type Action struct {
	Label   string
	OnClick func()
}

type Notification struct {
	Title       string
	Description string
	Action      *Action
}

// Notifier is fire-and-forget: implementations must not block the caller.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Log writes notifications to slog. Used when no front end is attached.
type Log struct{}

func (Log) Notify(n Notification) {
	attrs := []any{"title", n.Title, "description", n.Description}
	if n.Action != nil {
		attrs = append(attrs, "action", n.Action.Label)
	}
	slog.Info("Notification", attrs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Notify(Notification) {}

func Or(n Notifier) Notifier {
	if n == nil {
		return Log{}
	}
	return n
}
