// Package tui is the terminal front end: the persons grid and the create
// form as bubbletea pages.
package tui

import (
	"context"
	"persons-admin/internal/form"
	"persons-admin/internal/grid"
	"persons-admin/internal/notify"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type page int

const (
	pageGrid page = iota
	pageForm
)

type Options struct {
	ShowExtendedToolbar bool
}

type Model struct {
	events *Events
	page   page
	grid   gridPage
	form   formPage
	status string
	action *notify.Action
	styles Styles
}

// New builds the screen. events must be the notifier of ctrl and the
// navigator of f.
func New(ctx context.Context, ctrl *grid.Controller, f *form.Form, events *Events, opts Options) Model {
	styles := DefaultStyles()
	return Model{
		events: events,
		page:   pageGrid,
		grid:   newGridPage(ctx, ctrl, opts.ShowExtendedToolbar, styles),
		form:   newFormPage(ctx, f, styles),
		styles: styles,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.events.Wait(), m.grid.fetch())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.grid.setSize(msg.Width, msg.Height)
		return m, nil

	case pageLoadedMsg:
		m.grid.apply(msg)
		return m, nil

	case notificationMsg:
		m.status = msg.notification.Title
		if msg.notification.Description != "" {
			m.status += " " + msg.notification.Description
		}
		m.action = msg.notification.Action
		return m, m.events.Wait()

	case navigateMsg:
		m.page = pageGrid
		m.form.form.Reset()
		m.status = "Person saved"
		m.action = nil
		return m, m.events.Wait()

	case submitDoneMsg:
		return m, m.form.done(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.page == pageForm {
			cmd, closed := m.form.update(msg)
			if closed {
				m.page = pageGrid
			}
			return m, cmd
		}
		if msg.String() == "x" && m.grid.focus == focusTable && m.action != nil {
			return m, m.runAction()
		}
		cmd, openForm := m.grid.update(msg)
		if openForm {
			m.page = pageForm
			return m, m.form.open()
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) runAction() tea.Cmd {
	action := m.action
	m.action = nil
	m.status = ""
	if action.OnClick != nil {
		action.OnClick()
	}
	m.grid.refresh()
	return nil
}

func (m Model) View() string {
	var sb strings.Builder
	if m.page == pageForm {
		sb.WriteString(m.form.view())
	} else {
		sb.WriteString(m.grid.view())
	}

	if m.status != "" {
		line := m.status
		if m.action != nil {
			line += "  [x] " + m.action.Label
		}
		sb.WriteString("\n\n" + m.styles.StatusBar.Render(line))
	}
	return sb.String()
}
