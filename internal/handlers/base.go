package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/verzoeken/pkg/context"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const DefaultPageSize = 100

// ParseUUID parses a UUID from a path parameter. An unparseable id names no resource.
func ParseUUID(c echo.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, httperror.NewHTTPError(http.StatusNotFound, "Niet gevonden.")
	}
	return id, nil
}

// ParsePage reads the 1-based page query parameter.
func ParsePage(c echo.Context, size int) (models.Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	page := models.Page{Number: 1, Size: size}

	raw := c.QueryParam("page")
	if raw == "" {
		return page, nil
	}
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return page, httperror.NewHTTPError(http.StatusNotFound, "Ongeldige pagina.")
	}
	page.Number = number
	return page, nil
}

// PaginatedResponse is the envelope of every list endpoint.
type PaginatedResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Paginate wraps results and links the neighbouring pages of the current request.
func Paginate[T any](c echo.Context, page models.Page, count int, results []T) PaginatedResponse[T] {
	if results == nil {
		results = []T{}
	}
	response := PaginatedResponse[T]{Count: count, Results: results}

	if page.Number*page.Size < count {
		response.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		response.Previous = pageURL(c, page.Number-1)
	}
	return response
}

func pageURL(c echo.Context, number int) *string {
	ctx := c.Request().Context()
	scheme := appctx.GetScheme(ctx)
	if scheme == "" {
		scheme = c.Scheme()
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request().Host,
		Path:     c.Request().URL.Path,
		RawQuery: c.Request().URL.RawQuery,
	}
	query := u.Query()
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()

	s := u.String()
	return &s
}

// VerzoekRef resolves a verzoek hyperlink given in field.
func VerzoekRef(resolver *urls.Resolver, field, raw string) (uuid.UUID, error) {
	id, err := resolver.Parse(raw, urls.CollectionVerzoeken)
	if err != nil {
		return uuid.Nil, apierrors.NewFieldError(field, apierrors.CodeDoesNotExist, "Ongeldige hyperlink - Object bestaat niet.")
	}
	return id, nil
}

// OptionalVerzoekRef resolves a nullable verzoek hyperlink.
func OptionalVerzoekRef(resolver *urls.Resolver, field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := VerzoekRef(resolver, field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
