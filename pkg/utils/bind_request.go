package utils

import (
	"github.com/labstack/echo/v4"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
)

// BindRequest binds the JSON body into T and validates it.
func BindRequest[T any](c echo.Context) (T, error) {
	var v T

	if err := (&echo.DefaultBinder{}).BindBody(c, &v); err != nil {
		return v, apierrors.NewNonFieldErrorf(apierrors.CodeParseError, "Het verzoek bevat ongeldige JSON: %v", err)
	}

	return Validate(v)
}
