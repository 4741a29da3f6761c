package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// customRules are registered on the shared validator in addition to the
// built-in go-playground tags.
var customRules = map[string]validator.Func{
	"notblank": notBlank,
}

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError describes one failed rule on a request field.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param == "" {
		return f.Field + " failed on " + f.Tag
	}
	return f.Field + " failed on " + f.Tag + "=" + f.Param
}

// ValidationErrors lists the failed rules of one payload, keyed by JSON field name.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any failure refers to field.
func (v ValidationErrors) Has(field string) bool {
	for _, f := range v {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ValidateStruct runs the validate tags of s. Rule failures are returned as
// ValidationErrors; anything else (e.g. a non-struct argument) is returned as is.
func ValidateStruct(s any) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	failures := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		failures = append(failures, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return failures
}

// notBlank rejects strings that are empty once surrounding whitespace is removed.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func shared() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		for tag, fn := range customRules {
			if err := validate.RegisterValidation(tag, fn); err != nil {
				panic("validator: register " + tag + ": " + err.Error())
			}
		}
	})
	return validate
}
