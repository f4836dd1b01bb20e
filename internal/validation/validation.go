// Package validation turns binding failures into field-level messages keyed
// by the JSON or form name of the field.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Errors maps field names to a human readable message.
type Errors map[string]string

func (e Errors) Add(field, message string) Errors {
	e[field] = message
	return e
}

// FromBinding converts an error returned by ShouldBind* into Errors. Syntax
// and type errors land under "non_field_errors" or the offending field.
func FromBinding(err error) Errors {
	out := Errors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[trimNamespace(fe.Namespace())] = message(fe)
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return out.Add(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.String()))
	}

	return out.Add("non_field_errors", "Invalid request body.")
}

// trimNamespace drops the root struct name: "createOrderRequest.items[0].title"
// becomes "items[0].title".
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return "Enter a valid email address."
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
