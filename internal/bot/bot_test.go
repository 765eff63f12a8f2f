package bot

import (
	"context"
	"errors"
	"persons-admin/internal/model"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChat = int64(42)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (m *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return tgbotapi.Message{MessageID: len(m.sent)}, nil
}

func (m *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent message and edit, in order.
func (m *fakeMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.sent {
		switch v := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, v.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, v.Text)
		}
	}
	return out
}

func (m *fakeMessenger) last() string {
	texts := m.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type memoryStore struct {
	mu    sync.Mutex
	grids map[int64]model.GridState
	forms map[int64]model.FormState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{grids: map[int64]model.GridState{}, forms: map[int64]model.FormState{}}
}

func (s *memoryStore) SaveGrid(_ context.Context, chatID int64, state model.GridState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids[chatID] = state
	return nil
}

func (s *memoryStore) GetGrid(_ context.Context, chatID int64) (*model.GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.grids[chatID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *memoryStore) SaveForm(_ context.Context, chatID int64, state model.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[chatID] = state
	return nil
}

func (s *memoryStore) GetForm(_ context.Context, chatID int64) (*model.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.forms[chatID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *memoryStore) DeleteForm(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, chatID)
	return nil
}

type fakePersons struct {
	mu        sync.Mutex
	rows      []model.Person
	listErr   error
	createErr error
	requests  []model.GridRequest
	created   []model.PersonDraft
}

func (p *fakePersons) ListPersons(_ context.Context, req model.GridRequest) (model.GridResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.listErr != nil {
		return model.GridResponse{}, p.listErr
	}
	start := req.PageIndex * req.PageSize
	if start >= len(p.rows) {
		return model.GridResponse{Rows: []model.Person{}, TotalCount: len(p.rows)}, nil
	}
	end := min(start+req.PageSize, len(p.rows))
	return model.GridResponse{Rows: p.rows[start:end], TotalCount: len(p.rows)}, nil
}

func (p *fakePersons) CreatePerson(_ context.Context, d model.PersonDraft) (model.Person, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return model.Person{}, p.createErr
	}
	p.created = append(p.created, d)
	return model.Person{Id: 100, FirstName: d.FirstName, LastName: d.LastName}, nil
}

func (p *fakePersons) lastRequest() model.GridRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func samplePersons(n int) []model.Person {
	out := make([]model.Person, n)
	for i := range out {
		out[i] = model.Person{
			Id:         int64(i + 1),
			FirstName:  "Person",
			LastName:   strings.Repeat("x", i+3),
			Email:      "p@example.com",
			Mobile:     "0123456789",
			PersonType: model.PersonTypeCustomer,
		}
	}
	return out
}

func newTestBot(persons *fakePersons) (*Bot, *fakeMessenger, *memoryStore) {
	out := &fakeMessenger{}
	store := newMemoryStore()
	b := newBot(out, store, persons, Options{PageSize: 5, ShowExtendedToolbar: true})
	return b, out, store
}

func command(text string) *tgbotapi.Message {
	name, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: testChat},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func text(s string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: s, Chat: &tgbotapi.Chat{ID: testChat}}
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb",
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: testChat},
		},
	}
}

func TestPersonsCommandShowsFirstPage(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(12)}
	b, out, store := newTestBot(persons)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: command("/persons")})

	grid := out.last()
	assert.Contains(t, grid, "Page 1 of 3 · 12 persons")
	assert.Contains(t, grid, "1. <b>Person xxx</b>")
	assert.Equal(t, 5, persons.lastRequest().PageSize)
	assert.Equal(t, 0, persons.lastRequest().PageIndex)
	assert.Contains(t, store.grids, testChat)
}

func TestPageCallbackEditsGrid(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(12)}
	b, out, store := newTestBot(persons)
	ctx := context.Background()
	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/persons")})

	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("page:2")})

	assert.Equal(t, 2, persons.lastRequest().PageIndex)
	assert.Contains(t, out.last(), "Page 3 of 3")
	assert.Contains(t, out.last(), "11. ")
	assert.Equal(t, 2, store.grids[testChat].Request.PageIndex)

	out.mu.Lock()
	_, edited := out.sent[len(out.sent)-1].(tgbotapi.EditMessageTextConfig)
	out.mu.Unlock()
	assert.True(t, edited)
}

func TestSearchAndSortCommandsResetPage(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(12)}
	b, _, _ := newTestBot(persons)
	ctx := context.Background()
	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/persons")})
	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("page:1")})

	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/sort mobile desc")})
	req := persons.lastRequest()
	assert.Equal(t, 0, req.PageIndex)
	assert.Equal(t, &model.Sort{ColumnID: "mobile", Descending: true}, req.Sort)

	b.handleUpdate(ctx, tgbotapi.Update{Message: text("  john ")})
	assert.Equal(t, "  john ", persons.lastRequest().Search)

	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/filter gst 22AAAAA0000A1Z5")})
	assert.Equal(t, []model.ColumnFilter{{ColumnID: "gst", Value: "22AAAAA0000A1Z5"}}, persons.lastRequest().Filters)
}

func TestFetchFailureSendsOneNotification(t *testing.T) {
	persons := &fakePersons{listErr: errors.New("connection refused")}
	b, out, _ := newTestBot(persons)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: command("/persons")})
	b.wg.Wait()

	var notifications int
	for _, s := range out.texts() {
		if strings.Contains(s, "Connection Error") {
			notifications++
		}
	}
	assert.Equal(t, 1, notifications)
	assert.Contains(t, strings.Join(out.texts(), "\n"), "No persons found")
}

func TestSelectionNotificationAndUndo(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(3)}
	b, out, _ := newTestBot(persons)
	ctx := context.Background()
	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/persons")})

	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("select:2")})
	b.wg.Wait()

	assert.Contains(t, strings.Join(out.texts(), "\n"), "Total 1 are selected.")
	s := b.session(ctx, testChat)
	assert.Equal(t, []int64{2}, s.grid.Selection())

	var actionID string
	b.actions.entries.Range(func(key, _ any) bool {
		actionID = key.(string)
		return false
	})
	require.NotEmpty(t, actionID)

	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("action:" + actionID)})
	assert.Empty(t, s.grid.Selection())
	assert.False(t, b.actions.Run(actionID))
}

func TestCreateDialog(t *testing.T) {
	persons := &fakePersons{}
	b, out, store := newTestBot(persons)
	ctx := context.Background()

	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/add")})
	assert.Equal(t, "Enter First Name:", out.last())

	b.handleUpdate(ctx, tgbotapi.Update{Message: text("Jo")})
	assert.Equal(t, "⚠️ Minimum 3 symbols\nEnter First Name:", out.last())

	for _, answer := range []string{"John", "Smith", "0123456789", "john@example.com", "-"} {
		b.handleUpdate(ctx, tgbotapi.Update{Message: text(answer)})
	}
	assert.Equal(t, "Choose Person Type:", out.last())
	assert.Equal(t, "person_type", store.forms[testChat].Step)

	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("form_type:vendor")})
	assert.Contains(t, out.last(), "Person Type: vendor")

	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("form_submit")})

	require.Len(t, persons.created, 1)
	assert.Equal(t, model.PersonDraft{
		FirstName:  "John",
		LastName:   "Smith",
		Mobile:     "0123456789",
		Email:      "john@example.com",
		PersonType: "vendor",
	}, persons.created[0])
	assert.Equal(t, "✅ Person saved", out.last())
	assert.NotContains(t, store.forms, testChat)
	assert.Empty(t, b.session(ctx, testChat).Step())
}

func TestCreateDialogFailureShowsStatus(t *testing.T) {
	persons := &fakePersons{createErr: errors.New("bad status: 500")}
	b, out, _ := newTestBot(persons)
	ctx := context.Background()

	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/add")})
	for _, answer := range []string{"John", "Smith", "0123456789", "john@example.com", "-"} {
		b.handleUpdate(ctx, tgbotapi.Update{Message: text(answer)})
	}
	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("form_type:customer")})
	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback("form_submit")})

	assert.True(t, strings.HasPrefix(out.last(), "⚠️ The person details are incorrect"))
	assert.NotContains(t, out.last(), "500")
	assert.Equal(t, stepConfirm, b.session(ctx, testChat).Step())
}

func TestSessionRestoredFromStore(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(12)}
	b, _, store := newTestBot(persons)
	store.grids[testChat] = model.GridState{Request: model.GridRequest{PageIndex: 1, PageSize: 4, Search: "x"}}
	store.forms[testChat] = model.FormState{Draft: model.PersonDraft{FirstName: "Ann"}, Step: "last_name"}

	s := b.session(context.Background(), testChat)

	assert.Equal(t, model.GridRequest{PageIndex: 1, PageSize: 4, Search: "x"}, s.grid.Request())
	assert.Equal(t, "last_name", s.Step())
	assert.Equal(t, "Ann", s.form.Draft().FirstName)
}

func TestCancelCommand(t *testing.T) {
	b, out, store := newTestBot(&fakePersons{})
	ctx := context.Background()

	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/add")})
	b.handleUpdate(ctx, tgbotapi.Update{Message: command("/cancel")})

	assert.Equal(t, "Adding a person cancelled", out.last())
	assert.NotContains(t, store.forms, testChat)
}

func TestOlderSnapshotIsNotSentAfterNewerOne(t *testing.T) {
	persons := &fakePersons{rows: samplePersons(12)}
	b, out, _ := newTestBot(persons)
	ctx := context.Background()
	s := b.session(ctx, testChat)

	older, applied := s.grid.Load(ctx)
	require.True(t, applied)
	_, err := s.grid.SetPageIndex(1)
	require.NoError(t, err)
	newer, applied := s.grid.Load(ctx)
	require.True(t, applied)

	b.sendLatestGrid(testChat, 7, s, newer)
	b.sendLatestGrid(testChat, 7, s, older)

	require.Len(t, out.texts(), 1)
	assert.Contains(t, out.last(), "Page 2 of 3")
}
