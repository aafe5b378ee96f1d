// internal/app/system/inputval/inputval.go
//
// Package inputval validates decoded request bodies with
// go-playground/validator and reports failures as apperr validation errors
// keyed by JSON field name.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a configured validator.Validate. It is safe for
// concurrent use; build one at startup and share it.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields by their json tag and knows the
// custom "segment" tag (a single, safe path segment).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("segment", func(fl validator.FieldLevel) bool {
		return IsSafeSegment(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s. On failure it returns an *apperr.Error whose details
// map each offending field to a short message.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe)
		fields[path] = message(fe)
		names = append(names, path)
	}
	return apperr.ValidationWithDetails("Missing or invalid fields: "+strings.Join(names, ", "), fields)
}

// StructMessage is Struct with a fixed client-facing message. The field
// details are kept.
func (v *Validator) StructMessage(s any, msg string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Code == apperr.CodeValidation {
		return apperr.ValidationWithDetails(msg, e.Details)
	}
	return err
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like "items[2].alias".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "segment":
		return "must be a single path segment"
	case "max":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "dive":
		return "contains an invalid entry"
	default:
		return "is invalid"
	}
}

// IsSafeSegment reports whether s can be used as one directory name below
// the media root: non-empty, not "." or "..", no separators, no NUL.
func IsSafeSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}
