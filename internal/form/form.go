// Package form holds the create-person form: its draft, touched fields,
// validation and the single in-flight submit.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"persons-admin/internal/model"
	"sync"
)

const StatusIncorrect = "The person details are incorrect"

var (
	ErrSubmitInProgress = errors.New("submit already in progress")
	ErrUnknownField     = errors.New("unknown form field")
)

type ValidationError struct {
	Fields ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("person draft has %d invalid fields", len(e.Fields))
}

// SubmitError carries only the status shown to the user. The underlying
// cause is kept for logs.
type SubmitError struct {
	Status string
	cause  error
}

func (e *SubmitError) Error() string { return e.Status }

func (e *SubmitError) Unwrap() error { return e.cause }

type Creator interface {
	CreatePerson(ctx context.Context, draft model.PersonDraft) (model.Person, error)
}

type Navigator interface {
	NavigateAfterCreate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateAfterCreate(path string) { f(path) }

type State int

const (
	Editing State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "editing"
}

type Form struct {
	mu           sync.Mutex
	creator      Creator
	navigator    Navigator
	redirectPath string
	draft        model.PersonDraft
	touched      map[string]bool
	submitting   bool
	status       string
}

func New(creator Creator, navigator Navigator, redirectPath string) *Form {
	if redirectPath == "" {
		redirectPath = "/"
	}
	return &Form{
		creator:      creator,
		navigator:    navigator,
		redirectPath: redirectPath,
		touched:      make(map[string]bool),
	}
}

// Restore loads a draft saved earlier, e.g. by a chat session.
func (f *Form) Restore(draft model.PersonDraft, touched map[string]bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
	f.touched = make(map[string]bool, len(touched))
	for k, v := range touched {
		if v {
			f.touched[k] = true
		}
	}
}

func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = model.PersonDraft{}
	f.touched = make(map[string]bool)
	f.status = ""
}

// Set changes one field and marks it touched.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.change(field, value); err != nil {
		return err
	}
	f.touched[field] = true
	return nil
}

// Change updates a field without touching it, as typing does before the
// input loses focus.
func (f *Form) Change(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.change(field, value)
}

func (f *Form) change(field, value string) error {
	switch field {
	case FieldFirstName:
		f.draft.FirstName = value
	case FieldLastName:
		f.draft.LastName = value
	case FieldMobile:
		f.draft.Mobile = value
	case FieldEmail:
		f.draft.Email = value
	case FieldGST:
		f.draft.GST = value
	case FieldPersonType:
		f.draft.PersonType = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (f *Form) Touch(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
}

func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fieldValue(f.draft, field)
}

func fieldValue(d model.PersonDraft, field string) string {
	switch field {
	case FieldFirstName:
		return d.FirstName
	case FieldLastName:
		return d.LastName
	case FieldMobile:
		return d.Mobile
	case FieldEmail:
		return d.Email
	case FieldGST:
		return d.GST
	case FieldPersonType:
		return d.PersonType
	}
	return ""
}

func (f *Form) Draft() model.PersonDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form) Touched() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.touched))
	for k, v := range f.touched {
		out[k] = v
	}
	return out
}

// Errors returns validation messages for touched fields only.
func (f *Form) Errors() ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	visible := ValidationResult{}
	for field, msg := range Validate(f.draft) {
		if f.touched[field] {
			visible[field] = msg
		}
	}
	return visible
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return Submitting
	}
	return Editing
}

// Status is the coarse message left by the last failed submit.
func (f *Form) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submit validates the draft and sends one create request. Only one submit
// may be in flight at a time.
func (f *Form) Submit(ctx context.Context) (model.Person, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return model.Person{}, ErrSubmitInProgress
	}
	for _, field := range Fields {
		f.touched[field] = true
	}
	if result := Validate(f.draft); !result.Valid() {
		f.mu.Unlock()
		return model.Person{}, &ValidationError{Fields: result}
	}
	f.submitting = true
	f.status = ""
	draft := f.draft
	f.mu.Unlock()

	slog.Debug("Started person create")
	person, err := f.creator.CreatePerson(ctx, draft)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.status = StatusIncorrect
		f.mu.Unlock()
		slog.Error("Person create err", "error", err)
		return model.Person{}, &SubmitError{Status: StatusIncorrect, cause: err}
	}
	f.mu.Unlock()

	slog.Info("Person created", "id", person.Id)
	if f.navigator != nil {
		f.navigator.NavigateAfterCreate(f.redirectPath)
	}
	return person, nil
}
