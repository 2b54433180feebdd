// Package verzoek implements the verzoek resource: identificatie assignment, the withdraw and
// supplement links between verzoeken, and deletes that release the mirrored document links first.
package verzoek

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	verzoekrepo "github.com/Ramsey-B/verzoeken/internal/repositories/verzoek"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/notifications"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const resourceName = "verzoek"

type Repository interface {
	Create(ctx context.Context, v models.Verzoek) (*models.Verzoek, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Verzoek, error)
	List(ctx context.Context, filter models.VerzoekFilter) (models.PageResult[models.Verzoek], error)
	Update(ctx context.Context, v models.Verzoek) (*models.Verzoek, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IdentificatieInUse(ctx context.Context, bronorganisatie, identificatie string, exclude uuid.UUID) (bool, error)
	Successor(ctx context.Context, link verzoekrepo.Link, target uuid.UUID) (*uuid.UUID, error)
	CascadeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// DocumentReleaser removes the mirrored document links of verzoeken around their local delete.
type DocumentReleaser interface {
	ReleaseForVerzoeken(ctx context.Context, verzoeken []uuid.UUID, deleteLocal func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, actie, resource, resourceURL, hoofdObject, bronorganisatie string)
}

// LinkValue is a self reference given in a request. A nil ID clears the link.
type LinkValue struct {
	ID *uuid.UUID
}

// Patch carries the fields present in an update request.
type Patch struct {
	Bronorganisatie      *string
	Registratiedatum     *time.Time
	Tekst                *string
	Voorkeurskanaal      *string
	Identificatie        *string
	ExterneIdentificatie *string
	Status               *models.VerzoekStatus
	InTeTrekkenVerzoek   *LinkValue
	AangevuldeVerzoek    *LinkValue
}

type Service struct {
	repo      Repository
	documents DocumentReleaser
	urls      *urls.Resolver
	notifier  Notifier
	logger    ectologger.Logger
}

func NewService(repo Repository, documents DocumentReleaser, resolver *urls.Resolver, notifier Notifier, logger ectologger.Logger) *Service {
	return &Service{
		repo:      repo,
		documents: documents,
		urls:      resolver,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, v models.Verzoek) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Service.Create")
	defer span.End()

	v.UUID = uuid.New()
	if v.Status == "" {
		v.Status = models.VerzoekStatusOntvangen
	}

	checks := []error{
		s.validateLink(ctx, v.UUID, verzoekrepo.LinkInTeTrekken, "inTeTrekkenVerzoek", v.InTeTrekkenVerzoek),
		s.validateLink(ctx, v.UUID, verzoekrepo.LinkAangevulde, "aangevuldeVerzoek", v.AangevuldeVerzoek),
		s.validateIdentificatie(ctx, v),
	}
	var verr *apierrors.ValidationError
	for _, err := range checks {
		if err == nil {
			continue
		}
		if _, ok := apierrors.AsValidationError(err); !ok {
			return nil, err
		}
		verr = verr.Merge(err)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, v)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	s.notify(ctx, notifications.ActionCreate, created)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Service.Get")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter models.VerzoekFilter) (models.PageResult[models.Verzoek], error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Service.List")
	defer span.End()

	return s.repo.List(ctx, filter)
}

// Update applies patch. identificatie and the self references cannot change once set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch, partial bool) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Service.Update")
	defer span.End()

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var verr *apierrors.ValidationError
	if patch.Identificatie != nil && *patch.Identificatie != existing.Identificatie {
		verr = verr.Add("identificatie", apierrors.CodeWijzigenNietToegelaten, "Dit veld mag niet gewijzigd worden.")
	}
	if patch.InTeTrekkenVerzoek != nil && !sameLink(patch.InTeTrekkenVerzoek.ID, existing.InTeTrekkenVerzoek) {
		verr = verr.Add("inTeTrekkenVerzoek", apierrors.CodeWijzigenNietToegelaten, "Dit veld mag niet gewijzigd worden.")
	}
	if patch.AangevuldeVerzoek != nil && !sameLink(patch.AangevuldeVerzoek.ID, existing.AangevuldeVerzoek) {
		verr = verr.Add("aangevuldeVerzoek", apierrors.CodeWijzigenNietToegelaten, "Dit veld mag niet gewijzigd worden.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated := *existing
	if patch.Bronorganisatie != nil {
		updated.Bronorganisatie = *patch.Bronorganisatie
	}
	if patch.Registratiedatum != nil {
		updated.Registratiedatum = *patch.Registratiedatum
	}
	if patch.Tekst != nil {
		updated.Tekst = *patch.Tekst
	}
	if patch.Voorkeurskanaal != nil {
		updated.Voorkeurskanaal = *patch.Voorkeurskanaal
	}
	if patch.ExterneIdentificatie != nil {
		updated.ExterneIdentificatie = *patch.ExterneIdentificatie
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}

	if updated.Bronorganisatie != existing.Bronorganisatie {
		if err := s.validateIdentificatie(ctx, updated); err != nil {
			return nil, err
		}
	}

	result, err := s.repo.Update(ctx, updated)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	actie := notifications.ActionUpdate
	if partial {
		actie = notifications.ActionPartialUpdate
	}
	s.notify(ctx, actie, result)
	return result, nil
}

// Delete removes the verzoek together with every verzoek withdrawing or supplementing it. The
// mirrored document links of all of them are removed first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Service.Delete")
	defer span.End()

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	cascade, err := s.repo.CascadeIDs(ctx, id)
	if err != nil {
		return err
	}

	err = s.documents.ReleaseForVerzoeken(ctx, cascade, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		tracing.Fail(span, err)
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"uuid":     id,
		"cascaded": len(cascade) - 1,
	}).Info("deleted verzoek")

	s.notify(ctx, notifications.ActionDestroy, existing)
	return nil
}

// validateLink checks a self reference of the verzoek self: the target exists, is not self, and no
// other verzoek already withdraws or supplements it.
func (s *Service) validateLink(ctx context.Context, self uuid.UUID, link verzoekrepo.Link, field string, target *uuid.UUID) error {
	if target == nil {
		return nil
	}
	if *target == self {
		return apierrors.NewFieldError(field, apierrors.CodeInvalid, "Een verzoek kan niet naar zichzelf verwijzen.")
	}

	if _, err := s.repo.Get(ctx, *target); err != nil {
		if isNotFound(err) {
			return apierrors.NewFieldError(field, apierrors.CodeDoesNotExist, "Ongeldige hyperlink - Object bestaat niet.")
		}
		return err
	}

	successor, err := s.repo.Successor(ctx, link, *target)
	if err != nil {
		return err
	}
	if successor != nil && *successor != self {
		return apierrors.NewFieldError(field, apierrors.CodeUnique, "Er bestaat al een verzoek met deze verwijzing.")
	}
	return nil
}

func (s *Service) validateIdentificatie(ctx context.Context, v models.Verzoek) error {
	if v.Identificatie == "" {
		return nil
	}
	inUse, err := s.repo.IdentificatieInUse(ctx, v.Bronorganisatie, v.Identificatie, v.UUID)
	if err != nil {
		return err
	}
	if inUse {
		return apierrors.NewFieldError("identificatie", apierrors.CodeIdentificatieNietUniek,
			"Deze identificatie bestaat al voor deze bronorganisatie")
	}
	return nil
}

func (s *Service) notify(ctx context.Context, actie string, v *models.Verzoek) {
	u := s.urls.Verzoek(ctx, v.UUID)
	s.notifier.Notify(ctx, actie, resourceName, u, u, v.Bronorganisatie)
}

func sameLink(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func isNotFound(err error) bool {
	return httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound
}
