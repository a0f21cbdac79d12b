package response

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/julefagdag/agenda/internal/apperr"
)

func init() {
	// Report fields by their JSON name so errors match the request body.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// BindError turns a ShouldBindJSON failure into an *apperr.ValidationError naming the
// first offending field.
func BindError(err error) error {
	if err == nil {
		return nil
	}
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		return fieldError(verrs[0])
	case errors.As(err, &typeErr):
		return apperr.Validation(typeErr.Field, "must be of type "+typeErr.Type.String())
	default:
		return apperr.Validation("", "invalid request body")
	}
}

func fieldError(fe validator.FieldError) *apperr.ValidationError {
	return &apperr.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a uuid"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "cannot exceed " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
