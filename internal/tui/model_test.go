package tui

import (
	"context"
	"errors"
	"fmt"
	"persons-admin/internal/api"
	"persons-admin/internal/form"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	rows     []model.Person
	listErr  error
	requests []model.GridRequest
	created  []model.PersonDraft
}

func (f *fakeAPI) ListPersons(_ context.Context, req model.GridRequest) (model.GridResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.listErr != nil {
		return model.GridResponse{}, f.listErr
	}
	start := min(req.PageIndex*req.PageSize, len(f.rows))
	end := min(start+req.PageSize, len(f.rows))
	return model.GridResponse{Rows: f.rows[start:end], TotalCount: len(f.rows)}, nil
}

func (f *fakeAPI) CreatePerson(_ context.Context, d model.PersonDraft) (model.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, d)
	return model.Person{Id: 99}, nil
}

func (f *fakeAPI) lastRequest() model.GridRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func rows(n int) []model.Person {
	out := make([]model.Person, n)
	for i := range out {
		out[i] = model.Person{
			Id:         int64(i + 1),
			FirstName:  "Person",
			LastName:   fmt.Sprintf("N%02d", i+1),
			Email:      "p@example.com",
			Mobile:     "0123456789",
			PersonType: model.PersonTypeVendor,
		}
	}
	return out
}

func newTestModel(t *testing.T, fake *fakeAPI) (Model, *Events) {
	t.Helper()
	ctx := context.Background()
	events := NewEvents(16)
	ctrl := grid.NewController(api.NewPageFetcher(fake, events), events, 5)
	t.Cleanup(ctrl.Close)
	f := form.New(fake, events, "/")

	m := New(ctx, ctrl, f, events, Options{ShowExtendedToolbar: true})
	m = run(t, m, m.grid.fetch())
	return m, events
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())
	return m
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(m, key(k))
	}
	return m, cmd
}

func TestGridRendersAndPages(t *testing.T) {
	fake := &fakeAPI{rows: rows(12)}
	m, _ := newTestModel(t, fake)

	view := m.View()
	assert.Contains(t, view, "Person N01")
	assert.Contains(t, view, "Page 1 of 3")
	assert.Contains(t, view, "Total: 12 persons")

	m, cmd := press(m, "left")
	assert.Nil(t, cmd)

	m, cmd = press(m, "right")
	m = run(t, m, cmd)
	assert.Equal(t, 1, fake.lastRequest().PageIndex)
	assert.Contains(t, m.View(), "Page 2 of 3")
	assert.Contains(t, m.View(), "Person N06")
}

func TestSearchResetsPage(t *testing.T) {
	fake := &fakeAPI{rows: rows(12)}
	m, _ := newTestModel(t, fake)
	m, cmd := press(m, "right")
	m = run(t, m, cmd)

	m, _ = press(m, "/", "jo")
	m, cmd = press(m, "enter")
	m = run(t, m, cmd)

	req := fake.lastRequest()
	assert.Equal(t, "jo", req.Search)
	assert.Equal(t, 0, req.PageIndex)

	// the same text again does not refetch
	m, _ = press(m, "/")
	_, cmd = press(m, "enter")
	assert.Nil(t, cmd)
}

func TestNameFilter(t *testing.T) {
	fake := &fakeAPI{rows: rows(3)}
	m, _ := newTestModel(t, fake)

	m, _ = press(m, "f", "ann")
	_, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []model.ColumnFilter{{ColumnID: "name", Value: "ann"}}, fake.lastRequest().Filters)
}

func TestSortKeysCycle(t *testing.T) {
	fake := &fakeAPI{rows: rows(3)}
	m, _ := newTestModel(t, fake)

	m, cmd := press(m, "1")
	m = run(t, m, cmd)
	assert.Equal(t, &model.Sort{ColumnID: "name"}, fake.lastRequest().Sort)
	assert.Contains(t, m.View(), "Name ↑")

	m, cmd = press(m, "1")
	m = run(t, m, cmd)
	assert.Equal(t, &model.Sort{ColumnID: "name", Descending: true}, fake.lastRequest().Sort)

	m, cmd = press(m, "3")
	run(t, m, cmd)
	assert.Equal(t, &model.Sort{ColumnID: "mobile"}, fake.lastRequest().Sort)
}

func TestSelectionNotificationAndUndo(t *testing.T) {
	fake := &fakeAPI{rows: rows(3)}
	m, events := newTestModel(t, fake)

	m, _ = press(m, " ")
	m = run(t, m, events.Wait())

	assert.Contains(t, m.View(), "Total 1 are selected. Selected row IDs: 1")
	assert.Contains(t, m.View(), "[x] Undo")
	assert.Equal(t, []int64{1}, m.grid.ctrl.Selection())

	m, _ = press(m, "x")
	assert.Empty(t, m.grid.ctrl.Selection())
	assert.NotContains(t, m.View(), "Undo")
}

func TestFetchFailureShowsConnectionError(t *testing.T) {
	fake := &fakeAPI{listErr: errors.New("connection refused")}
	m, events := newTestModel(t, fake)

	m = run(t, m, events.Wait())
	view := m.View()
	assert.Contains(t, view, "Connection Error")
	assert.Contains(t, view, "No persons found")
}

func TestStaleResultIsIgnored(t *testing.T) {
	fake := &fakeAPI{rows: rows(12)}
	m, _ := newTestModel(t, fake)

	first := m.grid.fetch()
	_, _ = m.grid.ctrl.SetPageIndex(2)
	second := m.grid.fetch()

	m = run(t, m, second)
	m = run(t, m, first)
	assert.Contains(t, m.View(), "Page 3 of 3")
	assert.Contains(t, m.View(), "Person N11")
}

func TestCreateForm(t *testing.T) {
	fake := &fakeAPI{rows: rows(2)}
	m, events := newTestModel(t, fake)

	m, _ = press(m, "a")
	assert.Contains(t, m.View(), "First Name")

	m, cmd := press(m, "enter")
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "First Name is required")
	assert.Contains(t, m.View(), "Person Type is required")
	assert.Empty(t, fake.created)

	m, _ = press(m, "John", "tab", "Smith", "tab", "0123456789", "tab", "john@example.com", "tab", "tab", "right")
	assert.NotContains(t, m.View(), "is required")

	m, cmd = press(m, "enter")
	assert.Contains(t, m.View(), "Saving...")
	m = run(t, m, cmd)

	require.Len(t, fake.created, 1)
	assert.Equal(t, model.PersonDraft{
		FirstName:  "John",
		LastName:   "Smith",
		Mobile:     "0123456789",
		Email:      "john@example.com",
		PersonType: "customer",
	}, fake.created[0])

	m = run(t, m, events.Wait())
	assert.Equal(t, pageGrid, m.page)
	assert.Contains(t, m.View(), "Person saved")
}

func TestFormShowsErrorsOnlyForTouchedFields(t *testing.T) {
	m, _ := newTestModel(t, &fakeAPI{})

	m, _ = press(m, "a", "Jo")
	assert.NotContains(t, m.View(), "Minimum 3 symbols")

	m, _ = press(m, "tab")
	assert.Contains(t, m.View(), "Minimum 3 symbols")
	assert.NotContains(t, m.View(), "Last Name is required")

	m, _ = press(m, "esc")
	assert.Equal(t, pageGrid, m.page)
}
