package tui

import (
	"context"
	"errors"
	"log/slog"
	"persons-admin/internal/form"
	"persons-admin/internal/model"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type submitDoneMsg struct {
	person model.Person
	err    error
}

var placeholders = map[string]string{
	form.FieldFirstName: "first name",
	form.FieldLastName:  "last name",
	form.FieldMobile:    "mobile",
	form.FieldEmail:     "email@email.com",
	form.FieldGST:       "gst",
}

// formPage edits one person draft. Text fields come first, the person type
// selector is the last focus stop.
type formPage struct {
	ctx        context.Context
	form       *form.Form
	inputs     []textinput.Model
	focus      int
	typeIndex  int
	submitting bool
	styles     Styles
}

func newFormPage(ctx context.Context, f *form.Form, styles Styles) formPage {
	p := formPage{ctx: ctx, form: f, typeIndex: -1, styles: styles}
	for _, field := range form.Fields {
		if field == form.FieldPersonType {
			continue
		}
		in := textinput.New()
		in.Placeholder = placeholders[field]
		in.CharLimit = 64
		in.Width = 40
		p.inputs = append(p.inputs, in)
	}
	return p
}

func (p *formPage) field() string {
	return form.Fields[p.focus]
}

func (p *formPage) onTypeSelector() bool {
	return p.focus == len(p.inputs)
}

// open resets the form and focuses the first field.
func (p *formPage) open() tea.Cmd {
	p.form.Reset()
	for i := range p.inputs {
		p.inputs[i].SetValue("")
		p.inputs[i].Blur()
	}
	p.typeIndex = -1
	p.submitting = false
	p.focus = 0
	return p.inputs[0].Focus()
}

func (p *formPage) moveFocus(delta int) tea.Cmd {
	p.form.Touch(p.field())
	if !p.onTypeSelector() {
		p.inputs[p.focus].Blur()
	}
	stops := len(p.inputs) + 1
	p.focus = (p.focus + delta + stops) % stops
	if p.onTypeSelector() {
		return nil
	}
	return p.inputs[p.focus].Focus()
}

func (p *formPage) focusField(field string) tea.Cmd {
	for i, f := range form.Fields {
		if f == field {
			return p.moveFocus(i - p.focus)
		}
	}
	return nil
}

func (p *formPage) cycleType(delta int) {
	n := len(model.PersonTypes)
	if p.typeIndex < 0 {
		p.typeIndex = 0
	} else {
		p.typeIndex = (p.typeIndex + delta + n) % n
	}
	if err := p.form.Set(form.FieldPersonType, string(model.PersonTypes[p.typeIndex])); err != nil {
		slog.Error("Person type set err", "error", err)
	}
}

// update handles a key on the form. closed is set when the form is dismissed.
func (p *formPage) update(msg tea.KeyMsg) (cmd tea.Cmd, closed bool) {
	switch msg.String() {
	case "esc":
		p.form.Reset()
		return nil, true
	case "tab", "down":
		return p.moveFocus(1), false
	case "shift+tab", "up":
		return p.moveFocus(-1), false
	case "enter":
		return p.submit(), false
	}

	if p.onTypeSelector() {
		switch msg.String() {
		case "left":
			p.cycleType(-1)
		case "right", " ":
			p.cycleType(1)
		}
		return nil, false
	}

	var inputCmd tea.Cmd
	p.inputs[p.focus], inputCmd = p.inputs[p.focus].Update(msg)
	if err := p.form.Change(p.field(), p.inputs[p.focus].Value()); err != nil {
		slog.Error("Form field change err", "field", p.field(), "error", err)
	}
	return inputCmd, false
}

func (p *formPage) submit() tea.Cmd {
	if p.submitting {
		return nil
	}
	p.form.Touch(p.field())
	p.submitting = true

	ctx, f := p.ctx, p.form
	return func() tea.Msg {
		person, err := f.Submit(ctx)
		return submitDoneMsg{person: person, err: err}
	}
}

func (p *formPage) done(msg submitDoneMsg) tea.Cmd {
	p.submitting = false
	var verr *form.ValidationError
	if errors.As(msg.err, &verr) {
		for _, field := range form.Fields {
			if verr.Fields.Error(field) != "" {
				return p.focusField(field)
			}
		}
	}
	return nil
}

func (p formPage) view() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Header.Render(" Person "))
	sb.WriteString("\n\n")

	if status := p.form.Status(); status != "" {
		sb.WriteString(p.styles.Error.Render(status) + "\n\n")
	}

	errs := p.form.Errors()
	for i, field := range form.Fields {
		sb.WriteString(p.styles.Label.Render(form.Label(field)) + "\n")

		style := p.styles.Input
		if i == p.focus {
			style = p.styles.Focused
		}
		if field == form.FieldPersonType {
			sb.WriteString(style.Render(p.typeOptions()))
		} else {
			sb.WriteString(style.Render(p.inputs[i].View()))
		}
		sb.WriteString("\n")

		if msg := errs.Error(field); msg != "" {
			sb.WriteString(p.styles.Error.Render(msg) + "\n")
		}
	}

	sb.WriteString("\n")
	if p.submitting {
		sb.WriteString(p.styles.Muted.Render("Saving..."))
	} else {
		sb.WriteString(p.styles.Muted.Render("[enter] Save  [tab] Next  [←/→] Type  [esc] Close"))
	}
	return sb.String()
}

func (p formPage) typeOptions() string {
	var parts []string
	for i, t := range model.PersonTypes {
		if i == p.typeIndex {
			parts = append(parts, p.styles.Selected.Render(string(t)))
		} else {
			parts = append(parts, p.styles.Muted.Render(string(t)))
		}
	}
	return strings.Join(parts, "  ")
}
