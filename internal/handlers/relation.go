package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
	"github.com/Ramsey-B/verzoeken/pkg/utils"
)

// RelationService is served by the relation services, including the document links.
type RelationService[T any] interface {
	Create(ctx context.Context, item T) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, filter models.RelationFilter) (models.PageResult[T], error)
	Delete(ctx context.Context, id uuid.UUID) error
	URL(ctx context.Context, item T) string
}

// RelationResource describes the wire format of one relation type. Req is the validated request body.
type RelationResource[T, Req any] struct {
	Collection string
	// Counterpart is the query parameter matched against the remote reference.
	Counterpart string
	Decode      func(ctx context.Context, resolver *urls.Resolver, req Req) (T, error)
	Encode      func(ctx context.Context, resolver *urls.Resolver, url string, item T) any
	// Filter reads extra query parameters beyond verzoek and Counterpart.
	Filter func(c echo.Context, filter *models.RelationFilter)
}

// RelationHandler serves create, list, retrieve and destroy of a relation type. Relations are
// immutable so there is no update.
type RelationHandler[T, Req any] struct {
	resource RelationResource[T, Req]
	service  RelationService[T]
	urls     *urls.Resolver
	pageSize int
}

func NewRelationHandler[T, Req any](resource RelationResource[T, Req], service RelationService[T], resolver *urls.Resolver, pageSize int) *RelationHandler[T, Req] {
	return &RelationHandler[T, Req]{
		resource: resource,
		service:  service,
		urls:     resolver,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the relation routes
func (h *RelationHandler[T, Req]) RegisterRoutes(g *echo.Group) {
	relations := g.Group("/" + h.resource.Collection)
	relations.GET("", h.List)
	relations.POST("", h.Create)
	relations.GET("/:uuid", h.Get)
	relations.DELETE("/:uuid", h.Delete)
}

func (h *RelationHandler[T, Req]) encode(ctx context.Context, item T) any {
	return h.resource.Encode(ctx, h.urls, h.service.URL(ctx, item), item)
}

func (h *RelationHandler[T, Req]) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, err := ParsePage(c, h.pageSize)
	if err != nil {
		return err
	}

	filter := models.RelationFilter{Page: page, Counterpart: c.QueryParam(h.resource.Counterpart)}
	if raw := c.QueryParam("verzoek"); raw != "" {
		id, err := VerzoekRef(h.urls, "verzoek", raw)
		if err != nil {
			return err
		}
		filter.Verzoek = &id
	}
	if h.resource.Filter != nil {
		h.resource.Filter(c, &filter)
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		return err
	}

	results := make([]any, 0, len(result.Items))
	for _, item := range result.Items {
		results = append(results, h.encode(ctx, item))
	}
	return SuccessResponse(c, Paginate(c, page, result.Count, results))
}

func (h *RelationHandler[T, Req]) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "uuid")
	if err != nil {
		return err
	}

	item, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, h.encode(ctx, *item))
}

func (h *RelationHandler[T, Req]) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[Req](c)
	if err != nil {
		return err
	}

	item, err := h.resource.Decode(ctx, h.urls, req)
	if err != nil {
		return err
	}

	created, err := h.service.Create(ctx, item)
	if err != nil {
		return err
	}
	return CreatedResponse(c, h.encode(ctx, *created))
}

func (h *RelationHandler[T, Req]) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "uuid")
	if err != nil {
		return err
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}
	return NoContentResponse(c)
}
