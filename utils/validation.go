package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"regportal-go/schema"
	"regportal-go/submission"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return submission.ValidPeriod(fl.Field().String())
	})
	validate.RegisterValidation("returntype", func(fl validator.FieldLevel) bool {
		return schema.IsKnown(schema.ReturnType(fl.Field().String()))
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// FormatValidationError turns every field failure into a message keyed by
// the field's JSON name.
func FormatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			switch fieldError.Tag() {
			case "required":
				errs[field] = fmt.Sprintf("%s is required", field)
			case "numeric":
				errs[field] = fmt.Sprintf("%s must be numeric", field)
			case "period":
				errs[field] = fmt.Sprintf("%s must be YYYY-MM or Qn-YYYY", field)
			case "returntype":
				errs[field] = fmt.Sprintf("%s must be one of %s", field, strings.Join(schema.Names(), ", "))
			case "max":
				errs[field] = fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
			default:
				errs[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errs
}
