// Package grid owns the persons grid state: the current request, the last
// applied page and the row selection.
//
// Fetches are sequenced. Begin hands out a ticket with a new sequence number
// and cancels the previous ticket's context; Complete applies a response
// only when its ticket is still the latest one, so a slow early response can
// never overwrite a newer page.
package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"persons-admin/internal/model"
	"persons-admin/internal/notify"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

var (
	ErrInvalidPageIndex = errors.New("page index must not be negative")
	ErrInvalidPageSize  = errors.New("page size must be positive")
	ErrUnknownColumn    = errors.New("unknown column")
)

type Fetcher interface {
	FetchPage(ctx context.Context, req model.GridRequest) model.GridResponse
}

type Ticket struct {
	Seq     uint64
	Request model.GridRequest
	ctx     context.Context
	cancel  context.CancelFunc
}

func (t Ticket) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Snapshot is a consistent copy of the grid for rendering. Seq is the ticket
// sequence of the applied page, zero before the first load.
type Snapshot struct {
	Seq        uint64
	Request    model.GridRequest
	Rows       []model.Person
	TotalCount int
	PageCount  int
	Loading    bool
	Selected   map[int64]bool
}

func (s Snapshot) HasPrev() bool { return s.Request.PageIndex > 0 }

func (s Snapshot) HasNext() bool { return s.Request.PageIndex+1 < s.PageCount }

type Controller struct {
	mu        sync.Mutex
	fetcher   Fetcher
	notifier  notify.Notifier
	request   model.GridRequest
	issued    uint64
	applied   uint64
	cancel    context.CancelFunc
	response  model.GridResponse
	loading   bool
	selection map[int64]bool
}

func NewController(fetcher Fetcher, notifier notify.Notifier, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller{
		fetcher:   fetcher,
		notifier:  notify.Or(notifier),
		request:   model.GridRequest{PageSize: pageSize},
		response:  model.EmptyResponse(),
		selection: make(map[int64]bool),
	}
}

func (c *Controller) Request() model.GridRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request.Clone()
}

// Restore replaces the request, e.g. with one loaded from a session store.
func (c *Controller) Restore(req model.GridRequest) error {
	if req.PageIndex < 0 {
		return ErrInvalidPageIndex
	}
	if req.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request = req.Clone()
	return nil
}

// SetPageIndex moves to a page. It is the only mutator that keeps filters,
// sort and search and does not reset the index.
func (c *Controller) SetPageIndex(index int) (bool, error) {
	if index < 0 {
		return false, ErrInvalidPageIndex
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request.PageIndex == index {
		return false, nil
	}
	c.request = c.request.Clone()
	c.request.PageIndex = index
	return true, nil
}

func (c *Controller) SetPageSize(size int) (bool, error) {
	if size <= 0 {
		return false, ErrInvalidPageSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request.PageSize == size {
		return false, nil
	}
	c.request = c.request.Clone()
	c.request.PageSize = size
	c.request.PageIndex = 0
	return true, nil
}

func (c *Controller) SetSort(columnID string, descending bool) (bool, error) {
	col, ok := ColumnByID(columnID)
	if !ok || !col.Sortable {
		return false, fmt.Errorf("%w: %q is not sortable", ErrUnknownColumn, columnID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.request.Sort; s != nil && s.ColumnID == columnID && s.Descending == descending {
		return false, nil
	}
	c.request = c.request.Clone()
	c.request.Sort = &model.Sort{ColumnID: columnID, Descending: descending}
	c.request.PageIndex = 0
	return true, nil
}

func (c *Controller) ClearSort() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.request.Sort == nil {
		return false
	}
	c.request = c.request.Clone()
	c.request.Sort = nil
	c.request.PageIndex = 0
	return true
}

// CycleSort steps a column through ascending, descending and unsorted.
func (c *Controller) CycleSort(columnID string) (bool, error) {
	current := c.Request().Sort
	switch {
	case current == nil || current.ColumnID != columnID:
		return c.SetSort(columnID, false)
	case !current.Descending:
		return c.SetSort(columnID, true)
	default:
		return c.ClearSort(), nil
	}
}

// SetFilter sets or, for a nil or empty value, removes a column filter.
func (c *Controller) SetFilter(columnID string, value any) (bool, error) {
	col, ok := ColumnByID(columnID)
	if !ok || !col.Filterable {
		return false, fmt.Errorf("%w: %q is not filterable", ErrUnknownColumn, columnID)
	}
	if s, isString := value.(string); isString && s == "" {
		value = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	filters := make([]model.ColumnFilter, 0, len(c.request.Filters)+1)
	found, changed := false, false
	for _, f := range c.request.Filters {
		if f.ColumnID != columnID {
			filters = append(filters, f)
			continue
		}
		found = true
		if value == nil {
			changed = true
			continue
		}
		if cast.ToString(f.Value) != cast.ToString(value) {
			changed = true
		}
		filters = append(filters, model.ColumnFilter{ColumnID: columnID, Value: value})
	}
	if !found && value != nil {
		filters = append(filters, model.ColumnFilter{ColumnID: columnID, Value: value})
		changed = true
	}
	if !changed {
		return false, nil
	}

	c.request = c.request.Clone()
	c.request.Filters = filters
	if len(filters) == 0 {
		c.request.Filters = nil
	}
	c.request.PageIndex = 0
	return true, nil
}

func (c *Controller) ClearFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.request.Filters) == 0 {
		return false
	}
	c.request = c.request.Clone()
	c.request.Filters = nil
	c.request.PageIndex = 0
	return true
}

func (c *Controller) SetSearch(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(c.request.Search) == strings.TrimSpace(query) {
		return false
	}
	c.request = c.request.Clone()
	c.request.Search = query
	c.request.PageIndex = 0
	return true
}

// Begin issues a new fetch ticket for the current request and cancels the
// context of the one before it.
func (c *Controller) Begin(parent context.Context) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.issued++
	c.cancel = cancel
	c.loading = true

	return Ticket{Seq: c.issued, Request: c.request.Clone(), ctx: ctx, cancel: cancel}
}

// Complete applies resp if t is the latest ticket and reports whether it did.
func (c *Controller) Complete(t Ticket, resp model.GridResponse) bool {
	if t.cancel != nil {
		defer t.cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Seq != c.issued {
		slog.Debug("Discarding stale page", "seq", t.Seq, "latest", c.issued)
		return false
	}
	if resp.Rows == nil {
		resp.Rows = []model.Person{}
	}
	c.response = resp
	c.applied = t.Seq
	c.loading = false
	c.cancel = nil
	c.selection = make(map[int64]bool)
	return true
}

// Fetch runs one ticket through the fetcher. It is safe to call from a
// goroutine; use Complete with the result.
func (c *Controller) Fetch(t Ticket) model.GridResponse {
	return c.fetcher.FetchPage(t.Context(), t.Request)
}

// Load is Begin, Fetch and Complete in one blocking call.
func (c *Controller) Load(ctx context.Context) (Snapshot, bool) {
	t := c.Begin(ctx)
	applied := c.Complete(t, c.Fetch(t))
	return c.Snapshot(), applied
}

// Close cancels any fetch in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := make(map[int64]bool, len(c.selection))
	for id, ok := range c.selection {
		if ok {
			selected[id] = true
		}
	}
	return Snapshot{
		Seq:        c.applied,
		Request:    c.request.Clone(),
		Rows:       append([]model.Person(nil), c.response.Rows...),
		TotalCount: c.response.TotalCount,
		PageCount:  model.PageCount(c.response.TotalCount, c.request.PageSize),
		Loading:    c.loading,
		Selected:   selected,
	}
}

// IsLatest reports whether seq belongs to the newest ticket issued, i.e. no
// fetch has been started since the page with that sequence was applied.
func (c *Controller) IsLatest(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.issued
}

func (c *Controller) onPage(id int64) bool {
	for _, p := range c.response.Rows {
		if p.Id == id {
			return true
		}
	}
	return false
}

// ToggleRow flips the selection of a row on the current page. Ids that are
// not on the page are ignored.
func (c *Controller) ToggleRow(id int64) bool {
	c.mu.Lock()
	if !c.onPage(id) {
		c.mu.Unlock()
		return false
	}
	prev, gen := c.copySelection(), c.applied
	if c.selection[id] {
		delete(c.selection, id)
	} else {
		c.selection[id] = true
	}
	c.mu.Unlock()

	c.notifySelection(prev, gen)
	return true
}

func (c *Controller) SelectAll() {
	c.mu.Lock()
	prev, gen := c.copySelection(), c.applied
	for _, p := range c.response.Rows {
		c.selection[p.Id] = true
	}
	c.mu.Unlock()

	c.notifySelection(prev, gen)
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = make(map[int64]bool)
}

// Selection returns the selected ids in ascending order.
func (c *Controller) Selection() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedIDs()
}

func (c *Controller) selectedIDs() []int64 {
	ids := make([]int64, 0, len(c.selection))
	for id, ok := range c.selection {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Controller) copySelection() map[int64]bool {
	out := make(map[int64]bool, len(c.selection))
	for id, ok := range c.selection {
		out[id] = ok
	}
	return out
}

// notifySelection announces the selection with an Undo that restores prev.
// Undo is a no-op once another page has been applied since gen.
func (c *Controller) notifySelection(prev map[int64]bool, gen uint64) {
	ids := c.Selection()
	if len(ids) == 0 {
		return
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	c.notifier.Notify(notify.Notification{
		Title:       fmt.Sprintf("Total %d are selected.", len(ids)),
		Description: "Selected row IDs: " + strings.Join(parts, ","),
		Action: &notify.Action{
			Label: "Undo",
			OnClick: func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				if c.applied != gen {
					slog.Debug("Ignoring undo for a replaced page", "gen", gen, "applied", c.applied)
					return
				}
				c.selection = prev
			},
		},
	})
}
