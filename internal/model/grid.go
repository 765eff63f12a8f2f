package model

type Sort struct {
	ColumnID   string `json:"column_id"`
	Descending bool   `json:"descending"`
}

func (s Sort) Order() string {
	if s.Descending {
		return "desc"
	}
	return "asc"
}

// ColumnFilter holds a scalar or string value for one column.
type ColumnFilter struct {
	ColumnID string `json:"column_id"`
	Value    any    `json:"value"`
}

// GridRequest is rebuilt on every interaction and never mutated in place.
type GridRequest struct {
	PageIndex int            `json:"page_index"`
	PageSize  int            `json:"page_size"`
	Sort      *Sort          `json:"sort,omitempty"`
	Filters   []ColumnFilter `json:"filters,omitempty"`
	Search    string         `json:"search,omitempty"`
}

// Clone returns a copy that shares no memory with r.
func (r GridRequest) Clone() GridRequest {
	out := r
	if r.Sort != nil {
		s := *r.Sort
		out.Sort = &s
	}
	if r.Filters != nil {
		out.Filters = append([]ColumnFilter(nil), r.Filters...)
	}
	return out
}

func (r GridRequest) Filter(columnID string) (any, bool) {
	for _, f := range r.Filters {
		if f.ColumnID == columnID {
			return f.Value, true
		}
	}
	return nil, false
}

type GridResponse struct {
	Rows       []Person `json:"rows"`
	TotalCount int      `json:"total_count"`
}

// EmptyResponse is what a failed fetch resolves to.
func EmptyResponse() GridResponse {
	return GridResponse{Rows: []Person{}, TotalCount: 0}
}

// PageCount returns ceil(total/pageSize), or 0 for a zero page size.
func PageCount(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
