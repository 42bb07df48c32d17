package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phillip/campus-services-go/apperrors"
)

var configKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]{0,127}$`)

// NewValidator returns a validator that reports json field names and knows the configkey rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("configkey", func(fl validator.FieldLevel) bool {
		return configKeyPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct runs v over s and converts failures into an *apperrors.ValidationError.
func ValidateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperrors.ValidationError{Fields: make([]apperrors.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the root struct name
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, apperrors.FieldError{Field: field, Rule: fe.Tag()})
	}
	return out
}
