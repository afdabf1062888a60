package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", validateNotBlank)
	_ = validate.RegisterValidation("flightdate", validateFlightDate)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateFlightDate(fl validator.FieldLevel) bool {
	_, err := ParseFlightDate(fl.Field().String())
	return err == nil
}

// Human labels used in validation messages
var fieldLabels = map[string]string{
	"ID":          "ID",
	"Name":        "Client name",
	"PhoneNumber": "Phone number",
	"City":        "City",
	"Country":     "Country",
	"CompanyName": "Company name",
	"ClientID":    "Client ID",
	"AirlineID":   "Airline ID",
	"StartCity":   "Start city",
	"EndCity":     "End city",
}

// Validate checks the per-kind field rules of a record. It does not look at
// other records; reference checks belong to the store.
func Validate(r Record) error {
	if r == nil {
		return &ValidationError{Field: "Type", Reason: "record is missing"}
	}

	var base Base
	switch v := r.(type) {
	case Client:
		base = v.Base
	case Airline:
		base = v.Base
	case Flight:
		base = v.Base
	default:
		return &ValidationError{Field: "Type", Reason: fmt.Sprintf("unsupported record %T", r)}
	}
	if base.Type != r.RecordKind() {
		return &ValidationError{Field: "Type", Reason: fmt.Sprintf("must be %q, got %q", r.RecordKind(), base.Type)}
	}

	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return describeFieldError(fieldErrs[0])
		}
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}

	var reason string
	switch fe.Tag() {
	case "notblank":
		reason = label + " is required"
	case "gt":
		reason = label + " must be a positive integer"
	case "lte":
		reason = fmt.Sprintf("%s must not exceed %d", label, MaxID)
	case "flightdate":
		reason = fmt.Sprintf("Invalid date format: %q. Use YYYY-MM-DD or ISO format", fe.Value())
	default:
		reason = fmt.Sprintf("%s failed rule '%s'", label, fe.Tag())
	}
	return &ValidationError{Field: field, Reason: reason}
}
