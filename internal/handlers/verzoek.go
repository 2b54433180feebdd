package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	verzoeksvc "github.com/Ramsey-B/verzoeken/internal/services/verzoek"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
	"github.com/Ramsey-B/verzoeken/pkg/utils"
)

type VerzoekService interface {
	Create(ctx context.Context, v models.Verzoek) (*models.Verzoek, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Verzoek, error)
	List(ctx context.Context, filter models.VerzoekFilter) (models.PageResult[models.Verzoek], error)
	Update(ctx context.Context, id uuid.UUID, patch verzoeksvc.Patch, partial bool) (*models.Verzoek, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type VerzoekHandler struct {
	service  VerzoekService
	urls     *urls.Resolver
	pageSize int
}

func NewVerzoekHandler(service VerzoekService, resolver *urls.Resolver, pageSize int) *VerzoekHandler {
	return &VerzoekHandler{
		service:  service,
		urls:     resolver,
		pageSize: pageSize,
	}
}

// VerzoekRequest is the body of create and full update requests
type VerzoekRequest struct {
	Bronorganisatie      string     `json:"bronorganisatie" validate:"required,rsin"`
	Registratiedatum     *time.Time `json:"registratiedatum"`
	Tekst                string     `json:"tekst"`
	Voorkeurskanaal      string     `json:"voorkeurskanaal" validate:"max=50"`
	Identificatie        string     `json:"identificatie" validate:"max=40,alphanum_nodiacritics"`
	ExterneIdentificatie string     `json:"externeIdentificatie" validate:"max=40,alphanum_nodiacritics"`
	Status               string     `json:"status" validate:"required,oneof=ontvangen in_behandeling afgehandeld afgewezen ingetrokken"`
	InTeTrekkenVerzoek   *string    `json:"inTeTrekkenVerzoek" validate:"omitempty,url"`
	AangevuldeVerzoek    *string    `json:"aangevuldeVerzoek" validate:"omitempty,url"`
}

// NullableURL tells an explicit null apart from an absent key.
type NullableURL struct {
	Set   bool
	Value *string
}

func (n *NullableURL) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// VerzoekPatchRequest is the body of a partial update. Absent keys keep their value.
type VerzoekPatchRequest struct {
	Bronorganisatie      *string     `json:"bronorganisatie" validate:"omitempty,rsin"`
	Registratiedatum     *time.Time  `json:"registratiedatum"`
	Tekst                *string     `json:"tekst"`
	Voorkeurskanaal      *string     `json:"voorkeurskanaal" validate:"omitempty,max=50"`
	Identificatie        *string     `json:"identificatie" validate:"omitempty,max=40,alphanum_nodiacritics"`
	ExterneIdentificatie *string     `json:"externeIdentificatie" validate:"omitempty,max=40,alphanum_nodiacritics"`
	Status               *string     `json:"status" validate:"omitempty,oneof=ontvangen in_behandeling afgehandeld afgewezen ingetrokken"`
	InTeTrekkenVerzoek   NullableURL `json:"inTeTrekkenVerzoek"`
	AangevuldeVerzoek    NullableURL `json:"aangevuldeVerzoek"`
}

type VerzoekResponse struct {
	URL                  string    `json:"url"`
	UUID                 uuid.UUID `json:"uuid"`
	Bronorganisatie      string    `json:"bronorganisatie"`
	Registratiedatum     time.Time `json:"registratiedatum"`
	Tekst                string    `json:"tekst"`
	Voorkeurskanaal      string    `json:"voorkeurskanaal"`
	Identificatie        string    `json:"identificatie"`
	ExterneIdentificatie string    `json:"externeIdentificatie"`
	Status               string    `json:"status"`
	InTeTrekkenVerzoek   *string   `json:"inTeTrekkenVerzoek"`
	IntrekkendeVerzoek   *string   `json:"intrekkendeVerzoek"`
	AangevuldeVerzoek    *string   `json:"aangevuldeVerzoek"`
	AanvullendeVerzoek   *string   `json:"aanvullendeVerzoek"`
}

// RegisterRoutes registers the verzoek routes
func (h *VerzoekHandler) RegisterRoutes(g *echo.Group) {
	verzoeken := g.Group("/" + urls.CollectionVerzoeken)
	verzoeken.GET("", h.List)
	verzoeken.POST("", h.Create)
	verzoeken.GET("/:uuid", h.Get)
	verzoeken.PUT("/:uuid", h.Update)
	verzoeken.PATCH("/:uuid", h.PartialUpdate)
	verzoeken.DELETE("/:uuid", h.Delete)
}

func (h *VerzoekHandler) toResponse(ctx context.Context, v models.Verzoek) VerzoekResponse {
	return VerzoekResponse{
		URL:                  h.urls.Verzoek(ctx, v.UUID),
		UUID:                 v.UUID,
		Bronorganisatie:      v.Bronorganisatie,
		Registratiedatum:     v.Registratiedatum,
		Tekst:                v.Tekst,
		Voorkeurskanaal:      v.Voorkeurskanaal,
		Identificatie:        v.Identificatie,
		ExterneIdentificatie: v.ExterneIdentificatie,
		Status:               string(v.Status),
		InTeTrekkenVerzoek:   h.urls.OptionalVerzoek(ctx, v.InTeTrekkenVerzoek),
		IntrekkendeVerzoek:   h.urls.OptionalVerzoek(ctx, v.IntrekkendeVerzoek),
		AangevuldeVerzoek:    h.urls.OptionalVerzoek(ctx, v.AangevuldeVerzoek),
		AanvullendeVerzoek:   h.urls.OptionalVerzoek(ctx, v.AanvullendeVerzoek),
	}
}

// List handles GET /verzoeken
func (h *VerzoekHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, err := ParsePage(c, h.pageSize)
	if err != nil {
		return err
	}

	filter, err := h.parseFilter(c)
	if err != nil {
		return err
	}
	filter.Page = page

	result, err := h.service.List(ctx, filter)
	if err != nil {
		return err
	}

	results := make([]VerzoekResponse, 0, len(result.Items))
	for _, v := range result.Items {
		results = append(results, h.toResponse(ctx, v))
	}
	return SuccessResponse(c, Paginate(c, page, result.Count, results))
}

func (h *VerzoekHandler) parseFilter(c echo.Context) (models.VerzoekFilter, error) {
	filter := models.VerzoekFilter{
		Bronorganisatie:      c.QueryParam("bronorganisatie"),
		Identificatie:        c.QueryParam("identificatie"),
		ExterneIdentificatie: c.QueryParam("externeIdentificatie"),
		Status:               models.VerzoekStatus(c.QueryParam("status")),
		Voorkeurskanaal:      c.QueryParam("voorkeurskanaal"),
		Tekst:                c.QueryParam("tekst"),
	}

	var verr *apierrors.ValidationError
	dates := []struct {
		param  string
		target **time.Time
	}{
		{"registratiedatum", &filter.Registratiedatum},
		{"registratiedatum__gt", &filter.RegistratiedatumGT},
		{"registratiedatum__gte", &filter.RegistratiedatumGTE},
		{"registratiedatum__lt", &filter.RegistratiedatumLT},
		{"registratiedatum__lte", &filter.RegistratiedatumLTE},
	}
	for _, d := range dates {
		raw := c.QueryParam(d.param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			verr = verr.Add(d.param, apierrors.CodeInvalid, "Voer een geldige datum/tijd in.")
			continue
		}
		*d.target = &t
	}

	links := []struct {
		param  string
		target **uuid.UUID
	}{
		{"inTeTrekkenVerzoek", &filter.InTeTrekkenVerzoek},
		{"intrekkendeVerzoek", &filter.IntrekkendeVerzoek},
		{"aangevuldeVerzoek", &filter.AangevuldeVerzoek},
		{"aanvullendeVerzoek", &filter.AanvullendeVerzoek},
	}
	for _, l := range links {
		raw := c.QueryParam(l.param)
		if raw == "" {
			continue
		}
		id, err := VerzoekRef(h.urls, l.param, raw)
		if err != nil {
			verr = verr.Merge(err)
			continue
		}
		*l.target = &id
	}

	return filter, verr.OrNil()
}

// Get handles GET /verzoeken/:uuid
func (h *VerzoekHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "uuid")
	if err != nil {
		return err
	}

	v, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, h.toResponse(ctx, *v))
}

// Create handles POST /verzoeken
func (h *VerzoekHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[VerzoekRequest](c)
	if err != nil {
		return err
	}

	v, err := h.fromRequest(req)
	if err != nil {
		return err
	}

	created, err := h.service.Create(ctx, v)
	if err != nil {
		return err
	}
	return CreatedResponse(c, h.toResponse(ctx, *created))
}

func (h *VerzoekHandler) fromRequest(req VerzoekRequest) (models.Verzoek, error) {
	v := models.Verzoek{
		Bronorganisatie:      req.Bronorganisatie,
		Tekst:                req.Tekst,
		Voorkeurskanaal:      req.Voorkeurskanaal,
		Identificatie:        req.Identificatie,
		ExterneIdentificatie: req.ExterneIdentificatie,
		Status:               models.VerzoekStatus(req.Status),
	}

	// a zero registratiedatum is set to the creation time by the repository
	if req.Registratiedatum != nil {
		v.Registratiedatum = *req.Registratiedatum
	}

	var verr *apierrors.ValidationError
	var err error
	if v.InTeTrekkenVerzoek, err = OptionalVerzoekRef(h.urls, "inTeTrekkenVerzoek", req.InTeTrekkenVerzoek); err != nil {
		verr = verr.Merge(err)
	}
	if v.AangevuldeVerzoek, err = OptionalVerzoekRef(h.urls, "aangevuldeVerzoek", req.AangevuldeVerzoek); err != nil {
		verr = verr.Merge(err)
	}
	return v, verr.OrNil()
}

// Update handles PUT /verzoeken/:uuid
func (h *VerzoekHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "uuid")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[VerzoekRequest](c)
	if err != nil {
		return err
	}

	v, err := h.fromRequest(req)
	if err != nil {
		return err
	}

	status := v.Status
	updated, err := h.service.Update(ctx, id, verzoeksvc.Patch{
		Bronorganisatie:      &v.Bronorganisatie,
		Registratiedatum:     req.Registratiedatum,
		Tekst:                &v.Tekst,
		Voorkeurskanaal:      &v.Voorkeurskanaal,
		Identificatie:        optionalString(v.Identificatie),
		ExterneIdentificatie: &v.ExterneIdentificatie,
		Status:               &status,
		InTeTrekkenVerzoek:   &verzoeksvc.LinkValue{ID: v.InTeTrekkenVerzoek},
		AangevuldeVerzoek:    &verzoeksvc.LinkValue{ID: v.AangevuldeVerzoek},
	}, false)
	if err != nil {
		return err
	}
	return SuccessResponse(c, h.toResponse(ctx, *updated))
}

// PartialUpdate handles PATCH /verzoeken/:uuid
func (h *VerzoekHandler) PartialUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "uuid")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[VerzoekPatchRequest](c)
	if err != nil {
		return err
	}

	patch := verzoeksvc.Patch{
		Bronorganisatie:      req.Bronorganisatie,
		Registratiedatum:     req.Registratiedatum,
		Tekst:                req.Tekst,
		Voorkeurskanaal:      req.Voorkeurskanaal,
		Identificatie:        req.Identificatie,
		ExterneIdentificatie: req.ExterneIdentificatie,
	}
	if req.Status != nil {
		status := models.VerzoekStatus(*req.Status)
		patch.Status = &status
	}

	var verr *apierrors.ValidationError
	links := []struct {
		field  string
		value  NullableURL
		target **verzoeksvc.LinkValue
	}{
		{"inTeTrekkenVerzoek", req.InTeTrekkenVerzoek, &patch.InTeTrekkenVerzoek},
		{"aangevuldeVerzoek", req.AangevuldeVerzoek, &patch.AangevuldeVerzoek},
	}
	for _, l := range links {
		if !l.value.Set {
			continue
		}
		ref, err := OptionalVerzoekRef(h.urls, l.field, l.value.Value)
		if err != nil {
			verr = verr.Merge(err)
			continue
		}
		*l.target = &verzoeksvc.LinkValue{ID: ref}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	updated, err := h.service.Update(ctx, id, patch, true)
	if err != nil {
		return err
	}
	return SuccessResponse(c, h.toResponse(ctx, *updated))
}

// Delete handles DELETE /verzoeken/:uuid
func (h *VerzoekHandler) Delete(c echo.Context) error {
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

// optionalString leaves an omitted identificatie out of a full update.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
