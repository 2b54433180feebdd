package errors

import (
	"errors"
	"fmt"
	"strings"
)

// NonFieldErrors is the param name of errors that concern the request as a whole.
const NonFieldErrors = "nonFieldErrors"

const (
	CodeInvalid                 = "invalid"
	CodeParseError              = "parse_error"
	CodeRequired                = "required"
	CodeUnique                  = "unique"
	CodeDoesNotExist            = "does_not_exist"
	CodeBadURL                  = "bad-url"
	CodeInvalidResource         = "invalid-resource"
	CodeInvalidProduct          = "invalid-product"
	CodeIdentificatieNietUniek  = "identificatie-niet-uniek"
	CodeWijzigenNietToegelaten  = "wijzigen-niet-toegelaten"
	CodeInconsistentRelation    = "inconsistent-relation"
	CodeRemoteRelationExists    = "remote-relation-exists"
	CodeRelationValidationError = "relation-validation-error"
	CodeRelationLookupError     = "relation-lookup-error"
)

type InvalidParam struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ValidationError is a client error (HTTP 400) carrying one or more invalid params.
type ValidationError struct {
	Params []InvalidParam
}

func NewFieldError(field, code, reason string) *ValidationError {
	return &ValidationError{Params: []InvalidParam{{Name: field, Code: code, Reason: reason}}}
}

func NewFieldErrorf(field, code, format string, args ...any) *ValidationError {
	return NewFieldError(field, code, fmt.Sprintf(format, args...))
}

func NewNonFieldError(code, reason string) *ValidationError {
	return NewFieldError(NonFieldErrors, code, reason)
}

func NewNonFieldErrorf(code, format string, args ...any) *ValidationError {
	return NewNonFieldError(code, fmt.Sprintf(format, args...))
}

// Add appends a param and returns the receiver; a nil receiver starts a new error.
func (e *ValidationError) Add(field, code, reason string) *ValidationError {
	if e == nil {
		return NewFieldError(field, code, reason)
	}
	e.Params = append(e.Params, InvalidParam{Name: field, Code: code, Reason: reason})
	return e
}

// Merge appends the params of other. Errors that are not validation errors are ignored.
func (e *ValidationError) Merge(other error) *ValidationError {
	verr, ok := AsValidationError(other)
	if !ok {
		return e
	}
	if e == nil {
		return &ValidationError{Params: append([]InvalidParam(nil), verr.Params...)}
	}
	e.Params = append(e.Params, verr.Params...)
	return e
}

// OrNil returns nil when no params were collected, so callers can return it as error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Params) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", p.Name, p.Reason, p.Code))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Code returns the code of the first param.
func (e *ValidationError) Code() string {
	if len(e.Params) == 0 {
		return CodeInvalid
	}
	return e.Params[0].Code
}

// Param returns the first param reported for name.
func (e *ValidationError) Param(name string) (InvalidParam, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return InvalidParam{}, false
}

func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) && verr != nil {
		return verr, true
	}
	return nil, false
}
