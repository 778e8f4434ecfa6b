package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError collects field violations of a request payload. Details
// maps the JSON field name to a human-readable message.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Details))
	for field, msg := range e.Details {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so messages match what clients sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// validateStruct returns nil or a *ValidationError.
func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Details: map[string]string{"request": err.Error()}}
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = translateError(fe)
	}
	return &ValidationError{Details: details}
}

// fieldPath drops the struct name prefix: "NewArticlePayload.authorIds[0]" -> "authorIds[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

var errorMessageTemplates = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
}

var errorMessageWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"min":   "must be at least %s",
	"max":   "must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if msg, ok := errorMessageTemplates[fe.Tag()]; ok {
		return msg
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		param := fe.Param()
		if fe.Tag() == "min" || fe.Tag() == "max" {
			if fe.Kind() == reflect.String {
				param += " characters"
			} else if fe.Kind() == reflect.Slice {
				param += " items"
			}
		}
		return fmt.Sprintf(template, param)
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
