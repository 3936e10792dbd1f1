package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "campus/pkg/domain-errors"
)

// DateLayout is the calendar date format accepted by the "isodate" tag.
const DateLayout = "2006-01-02"

var dniPattern = regexp.MustCompile(`(?i)^[0-9]{8}[TRWAGMYFPDXBNJZSQVHLCKE]$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so messages and the "field" attribute
	// match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("hasupper", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
	})
	_ = v.RegisterValidation("hasdigit", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
	})
	_ = v.RegisterValidation("dni", func(fl validator.FieldLevel) bool {
		return dniPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// Messages maps "field.tag" (or just "field") to the user-facing text for a
// failed rule. Lookups fall back from the specific key to the field key.
type Messages map[string]string

// Validate runs the struct tags of req and returns the first failure as a
// field-bound validation error.
func Validate(req any, msgs Messages) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request")
	}
	fe := validationErrs[0]
	field := fe.Field()
	return dErrors.NewField(dErrors.CodeValidation, field, msgs.lookup(field, fe.Tag()))
}

func (m Messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return field + " is invalid"
}

// ValidateVar checks a single value against tag and reports failures against
// field. Used when rules must run in a fixed order across fields.
func ValidateVar(value any, tag, field string, msgs Messages) error {
	err := defaultValidator.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request")
	}
	return dErrors.NewField(dErrors.CodeValidation, field, msgs.lookup(field, validationErrs[0].Tag()))
}
