package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the "nonblank" tag: the field must contain
// something other than whitespace. Field names in errors follow the json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Describe flattens validator output into a short client-facing message.
func Describe(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}

	parts := make([]string, 0, len(fields))
	for _, fe := range fields {
		switch fe.Tag() {
		case "nonblank":
			parts = append(parts, fe.Field()+" must not be blank")
		case "max":
			parts = append(parts, fe.Field()+" is too long")
		case "email":
			parts = append(parts, fe.Field()+" is not a valid email")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
