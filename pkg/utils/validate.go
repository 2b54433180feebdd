package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/rsin"
)

// TagNoDiacritics accepts ascii text only, so letters carrying diacritics are rejected.
const TagNoDiacritics = "alphanum_nodiacritics"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so errors line up with the request body
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := rsin.Register(v); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation(TagNoDiacritics, func(fl validator.FieldLevel) bool {
		return withoutDiacritics(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func withoutDiacritics(value string) bool {
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, ToValidationError(err)
	}
	return value, nil
}

// ToValidationError converts validator errors into invalid params keyed by json field path.
func ToValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var result *apierrors.ValidationError
	for _, fe := range verrs {
		result = result.Add(fieldPath(fe), codeForTag(fe.Tag()), reasonFor(fe))
	}
	return result.OrNil()
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func codeForTag(tag string) string {
	switch tag {
	case "required":
		return apierrors.CodeRequired
	case "max":
		return "max_length"
	case "min":
		return "min_length"
	case "oneof":
		return "invalid_choice"
	case "url", "http_url":
		return apierrors.CodeBadURL
	default:
		return apierrors.CodeInvalid
	}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Dit veld is vereist."
	case "max":
		return fmt.Sprintf("Zorg ervoor dat dit veld niet meer dan %s karakters bevat.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is een ongeldige keuze. Kies uit: %s.", fe.Value(), fe.Param())
	case "url", "http_url":
		return "Voer een geldige URL in."
	case rsin.Tag:
		return "Onjuist RSIN nummer."
	case TagNoDiacritics:
		return "Waarde bevat niet alfanumerieke tekens/diacrieten."
	default:
		return fmt.Sprintf("rule '%s' failed for value '%v'", fe.Tag(), fe.Value())
	}
}
