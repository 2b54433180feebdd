package verzoekproduct

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type Service = relation.Service[models.VerzoekProduct]

func NewService(repo relation.Repository[models.VerzoekProduct], verzoeken relation.VerzoekReader, resolver *urls.Resolver, notifier relation.Notifier, logger ectologger.Logger) *Service {
	return relation.NewService(relation.Config[models.VerzoekProduct]{
		Resource:     "verzoekproduct",
		Collection:   urls.CollectionVerzoekProducten,
		Accessors:    relation.VerzoekProductAccessors,
		BeforeCreate: requireProduct,
	}, repo, verzoeken, resolver, notifier, logger)
}

// requireProduct demands a product url, a product code or both.
func requireProduct(_ context.Context, p models.VerzoekProduct, _ *models.Verzoek) error {
	if p.Product == "" && p.ProductCode == "" {
		return apierrors.NewNonFieldError(apierrors.CodeInvalidProduct, "product or productIdentificatie must be provided")
	}
	return nil
}
