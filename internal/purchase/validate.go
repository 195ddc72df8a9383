package purchase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// nigerianPhone matches the 11-digit mobile formats the networks issue.
var nigerianPhone = regexp.MustCompile(`^0[7-9][0-1]\d{8}$`)

// NewValidator builds the shared validator with the wallet's custom rules.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ngphone", func(fl validator.FieldLevel) bool {
		return nigerianPhone.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pindigits", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != PinLength {
			return false
		}
		return strings.Trim(value, "0123456789") == ""
	})
	return v
}

// FieldErrors maps form fields to user-facing validation messages. These
// never reach the network.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// ValidateForm runs the declarative rules, translating validator output into
// per-field messages.
func ValidateForm(v *validator.Validate, form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := FieldErrors{}
	for _, violation := range violations {
		fields[violation.Field()] = fieldMessage(violation)
	}
	return fields
}

func fieldMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", v.Field())
	case "ngphone":
		return "Enter a valid 11-digit phone number"
	case "pindigits":
		return fmt.Sprintf("Enter a valid %d-digit PIN", PinLength)
	case "gte", "min":
		return fmt.Sprintf("Minimum value is %s", v.Param())
	case "lte", "max":
		return fmt.Sprintf("Maximum value is %s", v.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", v.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a number", v.Field())
	default:
		return fmt.Sprintf("%s is invalid", v.Field())
	}
}
