package model

type PersonType string

const (
	PersonTypeCustomer PersonType = "customer"
	PersonTypeVendor   PersonType = "vendor"
	PersonTypeProvider PersonType = "provider"
)

// PersonTypes lists the categories offered by the type selector. The API
// accepts other values too.
var PersonTypes = []PersonType{PersonTypeCustomer, PersonTypeVendor, PersonTypeProvider}

type Person struct {
	Id         int64      `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Mobile     string     `json:"mobile"`
	Email      string     `json:"email"`
	GST        string     `json:"gst"`
	PersonType PersonType `json:"person_type"`
}

func (p Person) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// PersonDraft is the payload of the create form and of POST /persons/.
type PersonDraft struct {
	FirstName  string `json:"first_name" validate:"required,min=3,max=50"`
	LastName   string `json:"last_name" validate:"required,min=3,max=50"`
	Mobile     string `json:"mobile" validate:"required,min=10,max=13"`
	Email      string `json:"email" validate:"required,email,min=3,max=50"`
	GST        string `json:"gst" validate:"omitempty,len=15"`
	PersonType string `json:"person_type" validate:"required"`
}
