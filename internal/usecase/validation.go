package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names so errors line up with the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateInput checks the struct tags of an input DTO and returns every
// violation as a ValidationError. An empty slice means the input is valid.
func ValidateInput(input any) []*entity.ValidationError {
	err := validatorInstance().Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*entity.ValidationError{entity.NewValidationError("body", err.Error())}
	}

	out := make([]*entity.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, entity.NewValidationError(fieldName(fe), message(fe)))
	}
	return out
}

// validateInput returns the first violation, or nil.
func validateInput(input any) error {
	if errs := ValidateInput(input); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	// Namespace is "CreateLeadInput.notes[0]"; drop the struct name
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", fe.Param())
	case "excluded_with":
		return fmt.Sprintf("must be empty when %s is set", fe.Param())
	case "email":
		return "is invalid"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}
