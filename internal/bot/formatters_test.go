package bot

import (
	"fmt"
	"persons-admin/internal/grid"
	"persons-admin/internal/model"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRequest(t *testing.T) {
	req := model.GridRequest{
		Sort:    &model.Sort{ColumnID: "name", Descending: true},
		Search:  "  <b>ob ",
		Filters: []model.ColumnFilter{{ColumnID: "gst", Value: "A&B"}, {ColumnID: "type", Value: ""}},
	}
	assert.Equal(t, `Sort: name ↓ · Search: "&lt;b&gt;ob" · gst=A&amp;B`, formatRequest(req))
	assert.Empty(t, formatRequest(model.GridRequest{}))
}

func TestFormatGridEmpty(t *testing.T) {
	snap := grid.Snapshot{Request: model.GridRequest{PageSize: 5}}
	out := formatGrid(snap, false)
	assert.Contains(t, out, "No persons found")
	assert.Contains(t, out, "Page 1 of 1")
	assert.NotContains(t, out, "· 0 persons")
}

func TestFormatGridDropsWholeRowsWhenTooLong(t *testing.T) {
	for _, n := range []int{2, 7, 12, 40} {
		rows := make([]model.Person, 50)
		for i := range rows {
			rows[i] = model.Person{
				Id:         int64(i + 1),
				FirstName:  strings.Repeat("Ж", n),
				LastName:   "Иванов",
				Email:      "ivanov@example.com",
				Mobile:     "0123456789",
				PersonType: model.PersonTypeCustomer,
			}
		}
		snap := grid.Snapshot{
			Request:    model.GridRequest{PageSize: 50},
			Rows:       rows,
			TotalCount: 50,
			PageCount:  1,
		}

		out := formatGrid(snap, true)

		require.True(t, utf8.ValidString(out), "n=%d", n)
		assert.LessOrEqual(t, telegramLen(out), telegramMessageLimit, "n=%d", n)
		assert.Equal(t, strings.Count(out, "<b>"), strings.Count(out, "</b>"), "n=%d", n)
		assert.True(t, strings.HasSuffix(out, "Page 1 of 1 · 50 persons"), "n=%d", n)

		shown := strings.Count(out, "Иванов</b>")
		if shown < 50 {
			assert.Contains(t, out, fmt.Sprintf("…and %d more\n", 50-shown), "n=%d", n)
		}
	}
}

func TestFormatRequestShortensLongSearch(t *testing.T) {
	out := formatRequest(model.GridRequest{Search: strings.Repeat("я", 200)})
	assert.Equal(t, `Search: "`+strings.Repeat("я", maxShownQuery)+`…"`, out)
}

func TestFormatPersonRow(t *testing.T) {
	p := model.Person{Id: 3, FirstName: "Ann", LastName: "Lee", Email: "a@b.io", Mobile: "0123456789", PersonType: "vendor"}
	assert.Equal(t,
		"4. ☑ <b>Ann Lee</b> &lt;a@b.io&gt;\n    GST: - · 📱 0123456789 · vendor",
		formatPersonRow(4, p, true))
}

func TestParseSortArgs(t *testing.T) {
	tests := []struct {
		args       string
		column     string
		descending bool
		off        bool
		wantErr    bool
	}{
		{args: "name", column: "name"},
		{args: "GST desc", column: "gst", descending: true},
		{args: "mobile asc", column: "mobile"},
		{args: "off", off: true},
		{args: "", wantErr: true},
		{args: "name sideways", wantErr: true},
		{args: "a b c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			column, descending, off, err := parseSortArgs(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.column, column)
			assert.Equal(t, tt.descending, descending)
			assert.Equal(t, tt.off, off)
		})
	}
}

func TestParseFilterArgs(t *testing.T) {
	column, value, off, err := parseFilterArgs("name  John Smith ")
	assert.NoError(t, err)
	assert.Equal(t, "name", column)
	assert.Equal(t, "John Smith", value)
	assert.False(t, off)

	column, value, _, err = parseFilterArgs("gst")
	assert.NoError(t, err)
	assert.Equal(t, "gst", column)
	assert.Empty(t, value)

	_, _, off, _ = parseFilterArgs("off")
	assert.True(t, off)

	_, _, _, err = parseFilterArgs(" ")
	assert.ErrorIs(t, err, errUsage)
}

func TestActionCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newActionCache()
	c.now = func() time.Time { return now }

	ran := 0
	old := c.Put(func() { ran++ })
	now = now.Add(11 * time.Minute)
	fresh := c.Put(func() { ran++ })

	assert.Equal(t, 1, c.ClearExpired(10*time.Minute))
	assert.False(t, c.Run(old))
	assert.True(t, c.Run(fresh))
	assert.False(t, c.Run(fresh))
	assert.Equal(t, 1, ran)
}

func TestNextStep(t *testing.T) {
	assert.Equal(t, "last_name", nextStep("first_name"))
	assert.Equal(t, "person_type", nextStep("gst"))
	assert.Equal(t, stepConfirm, nextStep("person_type"))
}
