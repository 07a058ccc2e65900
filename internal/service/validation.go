package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidSession is returned when session parameters fail validation.
	ErrInvalidSession = errors.New("invalid session parameters")
	// ErrInvalidFriend is returned when a join request fails validation.
	ErrInvalidFriend = errors.New("invalid join request")
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// describeValidation turns validator errors into one readable sentence.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must have at most %s items or characters", field, fe.Param())
		case "lte":
			msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "url":
			msg = fmt.Sprintf("%s must be a valid URL", field)
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

// fieldPath is the JSON path of the failing field without the struct name,
// e.g. products[2].unitPrice.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
