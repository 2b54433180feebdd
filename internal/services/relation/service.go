// Package relation holds the behavior shared by the services of the relation resources: every
// relation belongs to an existing verzoek, is immutable once stored and announces its changes.
package relation

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/notifications"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type Repository[T any] interface {
	Create(ctx context.Context, item T) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, filter models.RelationFilter) (models.PageResult[T], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type VerzoekReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Verzoek, error)
}

type Notifier interface {
	Notify(ctx context.Context, actie, resource, resourceURL, hoofdObject, bronorganisatie string)
}

// Accessors read and write the identity of a relation type.
type Accessors[T any] struct {
	UUID     func(T) uuid.UUID
	Verzoek  func(T) uuid.UUID
	WithUUID func(T, uuid.UUID) T
}

// Hook runs against a relation and the verzoek it belongs to. A returned error aborts the operation.
type Hook[T any] func(ctx context.Context, item T, verzoek *models.Verzoek) error

type Config[T any] struct {
	// Resource is the notification resource name, Collection the url collection.
	Resource     string
	Collection   string
	Accessors    Accessors[T]
	BeforeCreate Hook[T]
	BeforeDelete Hook[T]
}

type Service[T any] struct {
	cfg       Config[T]
	repo      Repository[T]
	verzoeken VerzoekReader
	urls      *urls.Resolver
	notifier  Notifier
	logger    ectologger.Logger
}

func NewService[T any](cfg Config[T], repo Repository[T], verzoeken VerzoekReader, resolver *urls.Resolver, notifier Notifier, logger ectologger.Logger) *Service[T] {
	return &Service[T]{
		cfg:       cfg,
		repo:      repo,
		verzoeken: verzoeken,
		urls:      resolver,
		notifier:  notifier,
		logger:    logger,
	}
}

// Verzoek loads the verzoek a relation points at. A missing verzoek is a field error on "verzoek".
func (s *Service[T]) Verzoek(ctx context.Context, id uuid.UUID) (*models.Verzoek, error) {
	verzoek, err := s.verzoeken.Get(ctx, id)
	if err != nil {
		if httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound {
			return nil, apierrors.NewFieldError("verzoek", apierrors.CodeDoesNotExist, "Ongeldige hyperlink - Object bestaat niet.")
		}
		return nil, err
	}
	return verzoek, nil
}

func (s *Service[T]) Create(ctx context.Context, item T) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Service.Create")
	defer span.End()

	verzoek, err := s.Verzoek(ctx, s.cfg.Accessors.Verzoek(item))
	if err != nil {
		return nil, err
	}

	if s.cfg.BeforeCreate != nil {
		if err := s.cfg.BeforeCreate(ctx, item, verzoek); err != nil {
			return nil, err
		}
	}

	created, err := s.Store(ctx, item)
	if err != nil {
		return nil, err
	}

	s.Notify(ctx, notifications.ActionCreate, *created, verzoek)
	return created, nil
}

// Store persists item under a fresh uuid without running hooks or notifying.
func (s *Service[T]) Store(ctx context.Context, item T) (*T, error) {
	return s.repo.Create(ctx, s.cfg.Accessors.WithUUID(item, uuid.New()))
}

func (s *Service[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Service.Get")
	defer span.End()

	return s.repo.Get(ctx, id)
}

func (s *Service[T]) List(ctx context.Context, filter models.RelationFilter) (models.PageResult[T], error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Service.List")
	defer span.End()

	return s.repo.List(ctx, filter)
}

func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "relation.Service.Delete")
	defer span.End()

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	verzoek, err := s.verzoeken.Get(ctx, s.cfg.Accessors.Verzoek(*item))
	if err != nil {
		return err
	}

	if s.cfg.BeforeDelete != nil {
		if err := s.cfg.BeforeDelete(ctx, *item, verzoek); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Notify(ctx, notifications.ActionDestroy, *item, verzoek)
	return nil
}

func (s *Service[T]) URL(ctx context.Context, item T) string {
	return s.urls.URL(ctx, s.cfg.Collection, s.cfg.Accessors.UUID(item))
}

func (s *Service[T]) Notify(ctx context.Context, actie string, item T, verzoek *models.Verzoek) {
	s.notifier.Notify(ctx, actie, s.cfg.Resource, s.URL(ctx, item), s.urls.Verzoek(ctx, verzoek.UUID), verzoek.Bronorganisatie)
}
