// Package verzoekinformatieobject manages the links between verzoeken and documents. Each link is
// mirrored in the documents API, which checks against this API before accepting a change, so the
// local and remote writes are ordered: create here first, delete there first.
package verzoekinformatieobject

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/mask"
	"github.com/Ramsey-B/verzoeken/pkg/mirror"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/notifications"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type Repository interface {
	relation.Repository[models.VerzoekInformatieObject]
	ListByVerzoeken(ctx context.Context, verzoeken []uuid.UUID) ([]models.VerzoekInformatieObject, error)
}

type Mirror interface {
	MirrorCreate(ctx context.Context, vio models.VerzoekInformatieObject) error
	MirrorDelete(ctx context.Context, vio models.VerzoekInformatieObject) error
}

type ResourceValidator interface {
	Validate(ctx context.Context, field, resourceURL string) error
}

type Service struct {
	base     *relation.Service[models.VerzoekInformatieObject]
	repo     Repository
	mirror   Mirror
	mask     mask.Mask
	document ResourceValidator
	logger   ectologger.Logger
}

func NewService(
	repo Repository,
	verzoeken relation.VerzoekReader,
	mirrorEngine Mirror,
	m mask.Mask,
	document ResourceValidator,
	resolver *urls.Resolver,
	notifier relation.Notifier,
	logger ectologger.Logger,
) *Service {
	base := relation.NewService(relation.Config[models.VerzoekInformatieObject]{
		Resource:   "verzoekinformatieobject",
		Collection: urls.CollectionVerzoekInformatieObjecten,
		Accessors:  relation.VerzoekInformatieObjectAccessors,
	}, repo, verzoeken, resolver, notifier, logger)

	return &Service{
		base:     base,
		repo:     repo,
		mirror:   mirrorEngine,
		mask:     m,
		document: document,
		logger:   logger,
	}
}

// Create stores the link and then mirrors it. When mirroring fails the stored link is removed again.
func (s *Service) Create(ctx context.Context, vio models.VerzoekInformatieObject) (*models.VerzoekInformatieObject, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoekinformatieobject.Service.Create")
	defer span.End()

	verzoek, err := s.base.Verzoek(ctx, vio.Verzoek)
	if err != nil {
		return nil, err
	}

	if err := s.document.Validate(ctx, "informatieobject", vio.Informatieobject); err != nil {
		return nil, err
	}

	created, err := s.base.Store(ctx, vio)
	if err != nil {
		return nil, err
	}

	if err := s.mirror.MirrorCreate(ctx, *created); err != nil {
		if delErr := s.repo.Delete(ctx, created.UUID); delErr != nil {
			s.logger.WithContext(ctx).WithError(delErr).WithFields(map[string]any{
				"uuid": created.UUID,
			}).Error("failed to remove relation after mirror failure")
		}
		tracing.Fail(span, err)
		return nil, syncFailure(err)
	}

	s.base.Notify(ctx, notifications.ActionCreate, *created, verzoek)
	return created, nil
}

// Get hides links whose deletion is in flight.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.VerzoekInformatieObject, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoekinformatieobject.Service.Get")
	defer span.End()

	marked, err := mask.Contains(ctx, s.mask, id)
	if err != nil {
		return nil, s.maskUnavailable(ctx, err)
	}
	if marked {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoekinformatieobject not found")
	}
	return s.base.Get(ctx, id)
}

// List hides links whose deletion is in flight.
func (s *Service) List(ctx context.Context, filter models.RelationFilter) (models.PageResult[models.VerzoekInformatieObject], error) {
	ctx, span := tracing.StartSpan(ctx, "verzoekinformatieobject.Service.List")
	defer span.End()

	marked, err := s.mask.Marked(ctx)
	if err != nil {
		return models.PageResult[models.VerzoekInformatieObject]{}, s.maskUnavailable(ctx, err)
	}
	filter.Exclude = append(filter.Exclude, marked...)
	return s.base.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "verzoekinformatieobject.Service.Delete")
	defer span.End()

	vio, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	verzoek, err := s.base.Verzoek(ctx, vio.Verzoek)
	if err != nil {
		return err
	}

	err = s.release(ctx, []models.VerzoekInformatieObject{*vio}, func(ctx context.Context) error {
		return s.repo.Delete(ctx, vio.UUID)
	})
	if err != nil {
		tracing.Fail(span, err)
		return err
	}

	s.base.Notify(ctx, notifications.ActionDestroy, *vio, verzoek)
	return nil
}

// ReleaseForVerzoeken removes the mirrors of every link of the given verzoeken and then runs
// deleteLocal, which removes the verzoeken and with them the links.
func (s *Service) ReleaseForVerzoeken(ctx context.Context, verzoeken []uuid.UUID, deleteLocal func(ctx context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "verzoekinformatieobject.Service.ReleaseForVerzoeken")
	defer span.End()

	vios, err := s.repo.ListByVerzoeken(ctx, verzoeken)
	if err != nil {
		return err
	}

	if err := s.release(ctx, vios, deleteLocal); err != nil {
		tracing.Fail(span, err)
		return err
	}
	return nil
}

// release hides vios, deletes their mirrors and runs deleteLocal. The local delete only runs when
// every mirror is gone. Mirrors removed before a failure are recreated.
func (s *Service) release(ctx context.Context, vios []models.VerzoekInformatieObject, deleteLocal func(ctx context.Context) error) error {
	ids := ectolinq.Map(vios, func(v models.VerzoekInformatieObject) uuid.UUID {
		return v.UUID
	})

	return mask.Hold(ctx, s.mask, ids, func(ctx context.Context) error {
		released := make([]models.VerzoekInformatieObject, 0, len(vios))
		for _, vio := range vios {
			if err := s.mirror.MirrorDelete(ctx, vio); err != nil {
				s.restore(ctx, released)
				if errors.Is(err, mirror.ErrMirrorNotFound) {
					return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
				}
				return syncFailure(err)
			}
			released = append(released, vio)
		}

		if err := deleteLocal(ctx); err != nil {
			s.restore(ctx, released)
			return err
		}
		return nil
	})
}

func (s *Service) restore(ctx context.Context, vios []models.VerzoekInformatieObject) {
	for _, vio := range vios {
		if err := s.mirror.MirrorCreate(ctx, vio); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"uuid":             vio.UUID,
				"informatieobject": vio.Informatieobject,
			}).Error("failed to restore remote relation")
		}
	}
}

func (s *Service) maskUnavailable(ctx context.Context, err error) error {
	s.logger.WithContext(ctx).WithError(err).Error("failed to read deletion mask")
	return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read verzoekinformatieobjecten")
}

func syncFailure(err error) error {
	var syncErr *mirror.SyncError
	if errors.As(err, &syncErr) {
		return apierrors.NewNonFieldErrorf(apierrors.CodeInvalid, "Could not %s remote relation: %s", syncErr.Operation, syncErr.Detail())
	}
	return apierrors.NewNonFieldError(apierrors.CodeInvalid, err.Error())
}

// URL is the absolute url of vio.
func (s *Service) URL(ctx context.Context, vio models.VerzoekInformatieObject) string {
	return s.base.URL(ctx, vio)
}
