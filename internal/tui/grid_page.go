package tui

import (
	"context"
	"fmt"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pageLoadedMsg struct {
	ticket grid.Ticket
	resp   model.GridResponse
}

type inputFocus int

const (
	focusTable inputFocus = iota
	focusSearch
	focusFilter
)

// filterColumn is the column the filter bar edits.
const filterColumn = "name"

var columnWidths = map[string]int{
	"name":   22,
	"email":  26,
	"gst":    17,
	"mobile": 14,
	"type":   10,
}

type gridPage struct {
	ctx      context.Context
	ctrl     *grid.Controller
	table    table.Model
	search   textinput.Model
	filter   textinput.Model
	focus    inputFocus
	snap     grid.Snapshot
	extended bool
	styles   Styles
}

func newGridPage(ctx context.Context, ctrl *grid.Controller, extended bool, styles Styles) gridPage {
	t := table.New(
		table.WithColumns(tableColumns(nil)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	search := textinput.New()
	search.Placeholder = "Search persons..."
	search.CharLimit = 100
	search.Width = 30

	filter := textinput.New()
	filter.Placeholder = "Filter by name..."
	filter.CharLimit = 50
	filter.Width = 24

	return gridPage{
		ctx:      ctx,
		ctrl:     ctrl,
		table:    t,
		search:   search,
		filter:   filter,
		snap:     ctrl.Snapshot(),
		extended: extended,
		styles:   styles,
	}
}

func tableColumns(sort *model.Sort) []table.Column {
	columns := []table.Column{{Title: "✓", Width: 3}}
	for _, c := range grid.Columns {
		title := c.Title
		if sort != nil && sort.ColumnID == c.ID {
			if sort.Descending {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		columns = append(columns, table.Column{Title: title, Width: columnWidths[c.ID]})
	}
	return columns
}

// fetch issues a new ticket and loads it off the update loop.
func (p *gridPage) fetch() tea.Cmd {
	ticket := p.ctrl.Begin(p.ctx)
	p.snap = p.ctrl.Snapshot()
	ctrl := p.ctrl
	return func() tea.Msg {
		return pageLoadedMsg{ticket: ticket, resp: ctrl.Fetch(ticket)}
	}
}

func (p *gridPage) apply(msg pageLoadedMsg) {
	if !p.ctrl.Complete(msg.ticket, msg.resp) {
		return
	}
	p.refresh()
}

// refresh redraws the table from the controller without fetching.
func (p *gridPage) refresh() {
	p.snap = p.ctrl.Snapshot()
	p.table.SetColumns(tableColumns(p.snap.Request.Sort))

	rows := make([]table.Row, 0, len(p.snap.Rows))
	for _, person := range p.snap.Rows {
		mark := ""
		if p.snap.Selected[person.Id] {
			mark = "✓"
		}
		row := table.Row{mark}
		for _, c := range grid.Columns {
			row = append(row, c.Value(person))
		}
		rows = append(rows, row)
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(0)
	}
}

func (p *gridPage) setSize(w, h int) {
	p.table.SetWidth(w - 4)
	p.table.SetHeight(max(h-12, 3))
}

// update handles a key on the grid page. openForm is set when the create
// form should be shown.
func (p *gridPage) update(msg tea.KeyMsg) (cmd tea.Cmd, openForm bool) {
	switch p.focus {
	case focusSearch:
		return p.updateInput(msg, &p.search, func(v string) bool { return p.ctrl.SetSearch(v) }), false
	case focusFilter:
		return p.updateInput(msg, &p.filter, func(v string) bool {
			changed, _ := p.ctrl.SetFilter(filterColumn, strings.TrimSpace(v))
			return changed
		}), false
	}

	switch msg.String() {
	case "q":
		return tea.Quit, false
	case "/":
		p.focus = focusSearch
		return p.search.Focus(), false
	case "f":
		p.focus = focusFilter
		return p.filter.Focus(), false
	case "1", "2", "3", "4":
		sortable := grid.SortableColumns()
		i := int(msg.String()[0] - '1')
		if i >= len(sortable) {
			return nil, false
		}
		if changed, _ := p.ctrl.CycleSort(sortable[i]); changed {
			return p.fetch(), false
		}
	case "left", "h":
		if p.snap.HasPrev() {
			return p.goToPage(p.snap.Request.PageIndex - 1), false
		}
	case "right", "l":
		if p.snap.HasNext() {
			return p.goToPage(p.snap.Request.PageIndex + 1), false
		}
	case "r":
		return p.fetch(), false
	case " ":
		if i := p.table.Cursor(); i >= 0 && i < len(p.snap.Rows) {
			p.ctrl.ToggleRow(p.snap.Rows[i].Id)
			p.refresh()
		}
	case "A":
		p.ctrl.SelectAll()
		p.refresh()
	case "c":
		p.ctrl.ClearSelection()
		p.refresh()
	case "a":
		return nil, true
	default:
		var tableCmd tea.Cmd
		p.table, tableCmd = p.table.Update(msg)
		return tableCmd, false
	}
	return nil, false
}

func (p *gridPage) goToPage(index int) tea.Cmd {
	changed, err := p.ctrl.SetPageIndex(index)
	if err != nil || !changed {
		return nil
	}
	return p.fetch()
}

// updateInput edits a focused text input. enter applies the value through
// set, esc drops the edit.
func (p *gridPage) updateInput(msg tea.KeyMsg, input *textinput.Model, set func(string) bool) tea.Cmd {
	switch msg.String() {
	case "enter":
		p.focus = focusTable
		input.Blur()
		if set(input.Value()) {
			return p.fetch()
		}
		return nil
	case "esc":
		p.focus = focusTable
		input.Blur()
		req := p.ctrl.Request()
		if input == &p.search {
			input.SetValue(req.Search)
		} else {
			value, _ := req.Filter(filterColumn)
			s, _ := value.(string)
			input.SetValue(s)
		}
		return nil
	}

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (p gridPage) view() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Header.Render(" Persons "))
	if p.snap.Loading {
		sb.WriteString(p.styles.Muted.Render("  loading..."))
	}
	sb.WriteString("\n\n")

	if p.extended {
		toolbar := fmt.Sprintf("Total: %d persons | Selected: %d | [a] Add person", p.snap.TotalCount, len(p.snap.Selected))
		sb.WriteString(p.styles.Info.Render(toolbar) + "\n\n")
	}

	searchStyle, filterStyle := p.styles.Input, p.styles.Input
	switch p.focus {
	case focusSearch:
		searchStyle = p.styles.Focused
	case focusFilter:
		filterStyle = p.styles.Focused
	}
	sb.WriteString(searchStyle.Render(p.search.View()))
	sb.WriteString("  ")
	sb.WriteString(filterStyle.Render(p.filter.View()))
	sb.WriteString("\n")

	sb.WriteString(p.table.View())
	sb.WriteString("\n")

	if len(p.snap.Rows) == 0 && !p.snap.Loading {
		sb.WriteString(p.styles.Muted.Render("No persons found") + "\n")
	}

	pages := max(p.snap.PageCount, 1)
	sb.WriteString(fmt.Sprintf("Page %d of %d", p.snap.Request.PageIndex+1, pages))
	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render("[/] Search  [f] Filter  [1-4] Sort  [←/→] Page  [space] Select  [A] All  [c] Clear  [r] Reload  [q] Quit"))
	return sb.String()
}
