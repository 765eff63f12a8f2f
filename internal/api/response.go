package api

import "persons-admin/internal/model"

// PersonsResponse is the body of GET /persons/. Both fields are required;
// pointers let decodeList tell a missing field from an empty one.
type PersonsResponse struct {
	Data       *[]model.Person `json:"data"`
	Pagination *struct {
		Total    *int `json:"total"`
		Page     int  `json:"page"`
		LastPage int  `json:"last_page"`
	} `json:"pagination"`
}
