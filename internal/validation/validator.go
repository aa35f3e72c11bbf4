// Package validation checks event, location and registration forms and
// reports field-keyed, user-facing messages. Nothing here touches the network.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// Result is the outcome of validating one form.
type Result struct {
	Valid  bool              `json:"isValid"`
	Errors map[string]string `json:"errors"`
}

func newResult() Result {
	return Result{Valid: true, Errors: map[string]string{}}
}

func (r *Result) add(field, message string) {
	if _, exists := r.Errors[field]; exists {
		return
	}
	r.Errors[field] = message
	r.Valid = false
}

// MergeErrors returns a copy of r with message recorded under key unless key
// already carries an error. An empty message leaves r unchanged.
func MergeErrors(r Result, key, message string) Result {
	out := Result{Valid: r.Valid, Errors: make(map[string]string, len(r.Errors)+1)}
	for k, v := range r.Errors {
		out.Errors[k] = v
	}
	if message != "" {
		out.add(key, message)
	}
	return out
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with json field names and the event enum rules.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.EventType(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
		return models.EventStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return &Validator{validate: v}
}

var defaultValidator = New()

// Default returns the shared Validator.
func Default() *Validator {
	return defaultValidator
}

// Engine exposes the underlying validator for request binding.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct validates any tagged struct and returns generic field messages.
// It is used for request bodies that have no dedicated message table.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = genericMessage(fe)
		}
	}
	return out
}

// collect runs struct validation and maps each failing field through messageFor.
func (v *Validator) collect(r *Result, s interface{}, messageFor func(validator.FieldError) string) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		r.add("_", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		r.add(fe.Field(), messageFor(fe))
	}
}

func genericMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
