package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// reservedUsernames collide with fixed routes under /users.
var reservedUsernames = map[string]bool{"me": true}

// RegisterValidations configures v to report JSON field names and adds the
// custom "slug" and "username" tags. Pass gin's binding engine here at startup.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})
}

// IsUsername reports whether s is an allowed username.
func IsUsername(s string) bool {
	return usernamePattern.MatchString(s) && !reservedUsernames[strings.ToLower(s)]
}

// IsSlug reports whether s is a valid slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// FromBinding converts a request binding error into a validation error with
// per-field messages.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(Fields, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = friendlyMessage(fe)
		}
		return ValidationWithFields("validation failed", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Fieldf(typeErr.Field, "must be of type %s", typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Validation("malformed JSON body")
	}

	return &Error{Code: CodeValidation, Message: "invalid request body", cause: err}
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "may contain only letters, numbers, hyphens and underscores"
	case "username":
		return "may contain only letters, numbers and @/./+/-/_ and cannot be \"me\""
	default:
		return "is invalid"
	}
}
