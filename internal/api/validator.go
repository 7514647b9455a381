package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"customerbooking/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator checks request payloads and reports failures keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Dates validate as their wire string so that "required" rejects the zero date.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			if d.IsZero() {
				return ""
			}
			return d.String()
		}
		return nil
	}, models.Date{})

	return &Validator{validate: v}
}

// Struct returns nil or a field -> message map.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
