package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type ObjectVerzoekRequest struct {
	Verzoek    string `json:"verzoek" validate:"required,url"`
	Object     string `json:"object" validate:"required,url,max=1000"`
	ObjectType string `json:"objectType" validate:"required,oneof=zaak"`
}

type ObjectVerzoekResponse struct {
	URL        string `json:"url"`
	Verzoek    string `json:"verzoek"`
	Object     string `json:"object"`
	ObjectType string `json:"objectType"`
}

var ObjectVerzoekResource = RelationResource[models.ObjectVerzoek, ObjectVerzoekRequest]{
	Collection:  urls.CollectionObjectVerzoeken,
	Counterpart: "object",
	Decode: func(_ context.Context, resolver *urls.Resolver, req ObjectVerzoekRequest) (models.ObjectVerzoek, error) {
		verzoek, err := VerzoekRef(resolver, "verzoek", req.Verzoek)
		return models.ObjectVerzoek{Verzoek: verzoek, Object: req.Object, ObjectType: models.ObjectType(req.ObjectType)}, err
	},
	Encode: func(ctx context.Context, resolver *urls.Resolver, u string, o models.ObjectVerzoek) any {
		return ObjectVerzoekResponse{URL: u, Verzoek: resolver.Verzoek(ctx, o.Verzoek), Object: o.Object, ObjectType: string(o.ObjectType)}
	},
}

type VerzoekInformatieObjectRequest struct {
	Verzoek          string `json:"verzoek" validate:"required,url"`
	Informatieobject string `json:"informatieobject" validate:"required,url,max=1000"`
}

type VerzoekInformatieObjectResponse struct {
	URL              string `json:"url"`
	Verzoek          string `json:"verzoek"`
	Informatieobject string `json:"informatieobject"`
}

var VerzoekInformatieObjectResource = RelationResource[models.VerzoekInformatieObject, VerzoekInformatieObjectRequest]{
	Collection:  urls.CollectionVerzoekInformatieObjecten,
	Counterpart: "informatieobject",
	Decode: func(_ context.Context, resolver *urls.Resolver, req VerzoekInformatieObjectRequest) (models.VerzoekInformatieObject, error) {
		verzoek, err := VerzoekRef(resolver, "verzoek", req.Verzoek)
		return models.VerzoekInformatieObject{Verzoek: verzoek, Informatieobject: req.Informatieobject}, err
	},
	Encode: func(ctx context.Context, resolver *urls.Resolver, u string, v models.VerzoekInformatieObject) any {
		return VerzoekInformatieObjectResponse{URL: u, Verzoek: resolver.Verzoek(ctx, v.Verzoek), Informatieobject: v.Informatieobject}
	},
}

type VerzoekContactMomentRequest struct {
	Verzoek       string `json:"verzoek" validate:"required,url"`
	Contactmoment string `json:"contactmoment" validate:"required,url,max=1000"`
}

type VerzoekContactMomentResponse struct {
	URL           string `json:"url"`
	Verzoek       string `json:"verzoek"`
	Contactmoment string `json:"contactmoment"`
}

var VerzoekContactMomentResource = RelationResource[models.VerzoekContactMoment, VerzoekContactMomentRequest]{
	Collection:  urls.CollectionVerzoekContactMomenten,
	Counterpart: "contactmoment",
	Decode: func(_ context.Context, resolver *urls.Resolver, req VerzoekContactMomentRequest) (models.VerzoekContactMoment, error) {
		verzoek, err := VerzoekRef(resolver, "verzoek", req.Verzoek)
		return models.VerzoekContactMoment{Verzoek: verzoek, Contactmoment: req.Contactmoment}, err
	},
	Encode: func(ctx context.Context, resolver *urls.Resolver, u string, v models.VerzoekContactMoment) any {
		return VerzoekContactMomentResponse{URL: u, Verzoek: resolver.Verzoek(ctx, v.Verzoek), Contactmoment: v.Contactmoment}
	},
}

type ProductIdentificatie struct {
	Code string `json:"code" validate:"required,max=20"`
}

type VerzoekProductRequest struct {
	Verzoek              string                `json:"verzoek" validate:"required,url"`
	Product              string                `json:"product" validate:"omitempty,url,max=1000"`
	ProductIdentificatie *ProductIdentificatie `json:"productIdentificatie"`
}

type VerzoekProductResponse struct {
	URL                  string                `json:"url"`
	Verzoek              string                `json:"verzoek"`
	Product              string                `json:"product"`
	ProductIdentificatie *ProductIdentificatie `json:"productIdentificatie"`
}

var VerzoekProductResource = RelationResource[models.VerzoekProduct, VerzoekProductRequest]{
	Collection:  urls.CollectionVerzoekProducten,
	Counterpart: "product",
	Decode: func(_ context.Context, resolver *urls.Resolver, req VerzoekProductRequest) (models.VerzoekProduct, error) {
		verzoek, err := VerzoekRef(resolver, "verzoek", req.Verzoek)
		p := models.VerzoekProduct{Verzoek: verzoek, Product: req.Product}
		if req.ProductIdentificatie != nil {
			p.ProductCode = req.ProductIdentificatie.Code
		}
		return p, err
	},
	Encode: func(ctx context.Context, resolver *urls.Resolver, u string, p models.VerzoekProduct) any {
		response := VerzoekProductResponse{URL: u, Verzoek: resolver.Verzoek(ctx, p.Verzoek), Product: p.Product}
		if p.ProductCode != "" {
			response.ProductIdentificatie = &ProductIdentificatie{Code: p.ProductCode}
		}
		return response
	},
	Filter: func(c echo.Context, filter *models.RelationFilter) {
		filter.ProductCode = c.QueryParam("productIdentificatie__code")
	},
}

type KlantVerzoekRequest struct {
	Verzoek             string `json:"verzoek" validate:"required,url"`
	Klant               string `json:"klant" validate:"required,url,max=1000"`
	Rol                 string `json:"rol" validate:"omitempty,oneof=belanghebbende initiator gemachtigde"`
	IndicatieMachtiging string `json:"indicatieMachtiging" validate:"omitempty,oneof=gemachtigde machtiginggever"`
}

type KlantVerzoekResponse struct {
	URL                 string `json:"url"`
	Verzoek             string `json:"verzoek"`
	Klant               string `json:"klant"`
	Rol                 string `json:"rol"`
	IndicatieMachtiging string `json:"indicatieMachtiging"`
}

var KlantVerzoekResource = RelationResource[models.KlantVerzoek, KlantVerzoekRequest]{
	Collection:  urls.CollectionKlantVerzoeken,
	Counterpart: "klant",
	Decode: func(_ context.Context, resolver *urls.Resolver, req KlantVerzoekRequest) (models.KlantVerzoek, error) {
		verzoek, err := VerzoekRef(resolver, "verzoek", req.Verzoek)
		return models.KlantVerzoek{
			Verzoek:             verzoek,
			Klant:               req.Klant,
			Rol:                 models.KlantRol(req.Rol),
			IndicatieMachtiging: models.IndicatieMachtiging(req.IndicatieMachtiging),
		}, err
	},
	Encode: func(ctx context.Context, resolver *urls.Resolver, u string, k models.KlantVerzoek) any {
		return KlantVerzoekResponse{
			URL:                 u,
			Verzoek:             resolver.Verzoek(ctx, k.Verzoek),
			Klant:               k.Klant,
			Rol:                 string(k.Rol),
			IndicatieMachtiging: string(k.IndicatieMachtiging),
		}
	},
}
