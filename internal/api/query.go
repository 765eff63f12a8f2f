package api

import (
	"fmt"
	"net/url"
	"persons-admin/internal/model"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CanonicalQuery serializes a grid request for the persons collection.
// Parameter order is fixed: page, items_per_page, sort, order, query, then
// filters in request order. The server pages from 1.
func CanonicalQuery(req model.GridRequest) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	add("page", strconv.Itoa(req.PageIndex+1))
	add("items_per_page", strconv.Itoa(req.PageSize))

	if req.Sort != nil && req.Sort.ColumnID != "" {
		add("sort", req.Sort.ColumnID)
		add("order", req.Sort.Order())
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		add("query", search)
	}

	seen := make(map[string]bool, len(req.Filters))
	for _, f := range req.Filters {
		if f.ColumnID == "" || seen[f.ColumnID] {
			continue
		}
		value, ok := FilterValue(f.Value)
		if !ok {
			continue
		}
		seen[f.ColumnID] = true
		add("filter["+url.QueryEscape(f.ColumnID)+"]", value)
	}

	return b.String()
}

// FilterValue returns the wire form of a filter value. Nil and empty string
// mean "no filter".
func FilterValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
