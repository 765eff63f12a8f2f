package form

import (
	"errors"
	"fmt"
	"log/slog"
	"persons-admin/internal/model"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldMobile     = "mobile"
	FieldEmail      = "email"
	FieldGST        = "gst"
	FieldPersonType = "person_type"
)

// Fields is the input order of the create form.
var Fields = []string{FieldFirstName, FieldLastName, FieldMobile, FieldEmail, FieldGST, FieldPersonType}

var labels = map[string]string{
	FieldFirstName:  "First Name",
	FieldLastName:   "Last Name",
	FieldMobile:     "Mobile",
	FieldEmail:      "Email",
	FieldGST:        "GST",
	FieldPersonType: "Person Type",
}

func Label(field string) string {
	return labels[field]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationResult maps a field name to its first violated rule's message.
// An empty result is valid.
type ValidationResult map[string]string

func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

func (r ValidationResult) Error(field string) string {
	return r[field]
}

// Validate checks every field of d and reports all violations at once.
func Validate(d model.PersonDraft) ValidationResult {
	return collect(validate.Struct(d))
}

// collect turns a validator error into per-field messages. An error that is
// not a list of field violations marks every field invalid so the draft
// never passes.
func collect(err error) ValidationResult {
	result := ValidationResult{}
	if err == nil {
		return result
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		slog.Error("Validation failed", "error", err)
		for _, field := range Fields {
			result[field] = Label(field) + " is invalid"
		}
		return result
	}
	for _, fe := range errs {
		if _, seen := result[fe.Field()]; seen {
			continue
		}
		result[fe.Field()] = message(fe)
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return Label(fe.Field()) + " is required"
	case "email":
		return "Wrong email format"
	case "min":
		return fmt.Sprintf("Minimum %s symbols", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum %s symbols", fe.Param())
	case "len":
		value, _ := fe.Value().(string)
		if utf8.RuneCountInString(value) < 15 {
			return fmt.Sprintf("Minimum %s symbols", fe.Param())
		}
		return fmt.Sprintf("Maximum %s symbols", fe.Param())
	default:
		return Label(fe.Field()) + " is invalid"
	}
}
