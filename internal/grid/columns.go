package grid

import "persons-admin/internal/model"

// Column describes one grid column. Value is the typed accessor used for
// rendering; the ID is what goes on the wire for sort and filter.
type Column struct {
	ID         string
	Title      string
	Sortable   bool
	Filterable bool
	Value      func(p model.Person) string
}

var Columns = []Column{
	{
		ID:         "name",
		Title:      "Name",
		Sortable:   true,
		Filterable: true,
		Value:      func(p model.Person) string { return p.FullName() },
	},
	{
		ID:    "email",
		Title: "Email",
		Value: func(p model.Person) string { return p.Email },
	},
	{
		ID:         "gst",
		Title:      "GST",
		Sortable:   true,
		Filterable: true,
		Value:      func(p model.Person) string { return p.GST },
	},
	{
		ID:         "mobile",
		Title:      "Mobile",
		Sortable:   true,
		Filterable: true,
		Value:      func(p model.Person) string { return p.Mobile },
	},
	{
		ID:         "type",
		Title:      "Type",
		Sortable:   true,
		Filterable: true,
		Value:      func(p model.Person) string { return string(p.PersonType) },
	},
}

func ColumnByID(id string) (Column, bool) {
	for _, c := range Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// SortableColumns returns the ids accepted by SetSort, in display order.
func SortableColumns() []string {
	var ids []string
	for _, c := range Columns {
		if c.Sortable {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
