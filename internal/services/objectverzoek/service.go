// Package objectverzoek guards the links between verzoeken and objects in other APIs. The object
// owns the relation: it must exist there before it is stored here and be gone there before it is
// removed here.
package objectverzoek

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type Service = relation.Service[models.ObjectVerzoek]

type ResourceValidator interface {
	Validate(ctx context.Context, field, resourceURL string) error
}

type RelationChecker interface {
	RequireExists(ctx context.Context, objectType, objectURL, verzoekURL string) error
	RequireAbsent(ctx context.Context, objectType, objectURL, verzoekURL string) error
}

type guard struct {
	shapes    map[models.ObjectType]ResourceValidator
	relations RelationChecker
	urls      *urls.Resolver
}

// NewService wires the remote checks. shapes holds the resource validator per object type.
func NewService(
	repo relation.Repository[models.ObjectVerzoek],
	verzoeken relation.VerzoekReader,
	shapes map[models.ObjectType]ResourceValidator,
	relations RelationChecker,
	resolver *urls.Resolver,
	notifier relation.Notifier,
	logger ectologger.Logger,
) *Service {
	g := &guard{shapes: shapes, relations: relations, urls: resolver}

	return relation.NewService(relation.Config[models.ObjectVerzoek]{
		Resource:     "objectverzoek",
		Collection:   urls.CollectionObjectVerzoeken,
		Accessors:    relation.ObjectVerzoekAccessors,
		BeforeCreate: g.beforeCreate,
		BeforeDelete: g.beforeDelete,
	}, repo, verzoeken, resolver, notifier, logger)
}

func (g *guard) beforeCreate(ctx context.Context, o models.ObjectVerzoek, verzoek *models.Verzoek) error {
	shape, ok := g.shapes[o.ObjectType]
	if !ok {
		return apierrors.NewFieldErrorf("objectType", apierrors.CodeInvalid, "%q is een ongeldige keuze.", o.ObjectType)
	}
	if err := shape.Validate(ctx, "object", o.Object); err != nil {
		return err
	}

	return g.relations.RequireExists(ctx, string(o.ObjectType), o.Object, g.urls.Verzoek(ctx, verzoek.UUID))
}

func (g *guard) beforeDelete(ctx context.Context, o models.ObjectVerzoek, verzoek *models.Verzoek) error {
	return g.relations.RequireAbsent(ctx, string(o.ObjectType), o.Object, g.urls.Verzoek(ctx, verzoek.UUID))
}
