// Package rsin validates RSIN numbers (Rechtspersonen en Samenwerkingsverbanden Informatienummer).
package rsin

import (
	"github.com/go-playground/validator/v10"
)

// Tag is the validator tag registered by Register.
const Tag = "rsin"

// Valid reports whether value is 9 digits passing the 11-check: the last digit weighs -1,
// the others 9 down to 2, and the weighted sum is divisible by 11.
func Valid(value string) bool {
	if len(value) != 9 {
		return false
	}

	total := 0
	for i, r := range value {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i == 8 {
			total -= digit
			continue
		}
		total += (9 - i) * digit
	}
	return total%11 == 0
}

func Register(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return Valid(fl.Field().String())
	})
}
