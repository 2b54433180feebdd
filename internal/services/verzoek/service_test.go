package verzoek

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verzoekrepo "github.com/Ramsey-B/verzoeken/internal/repositories/verzoek"
	"github.com/Ramsey-B/verzoeken/internal/services/relation/relationtest"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/identificatie"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Verzoek
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]models.Verzoek{}}
}

func (r *memoryRepo) Create(_ context.Context, v models.Verzoek) (*models.Verzoek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Identificatie == "" {
		existing := make([]string, 0, len(r.items))
		for _, item := range r.items {
			existing = append(existing, item.Identificatie)
		}
		v.Identificatie = identificatie.Next(v.Registratiedatum.Year(), existing...)
	}
	r.items[v.UUID] = v
	return &v, nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*models.Verzoek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}
	return &v, nil
}

func (r *memoryRepo) List(context.Context, models.VerzoekFilter) (models.PageResult[models.Verzoek], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]models.Verzoek, 0, len(r.items))
	for _, v := range r.items {
		items = append(items, v)
	}
	return models.PageResult[models.Verzoek]{Count: len(items), Items: items}, nil
}

func (r *memoryRepo) Update(_ context.Context, v models.Verzoek) (*models.Verzoek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[v.UUID] = v
	return &v, nil
}

// Delete mirrors the ON DELETE CASCADE of the self references.
func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	for changed := true; changed; {
		changed = false
		for key, v := range r.items {
			if (v.InTeTrekkenVerzoek != nil && !r.exists(*v.InTeTrekkenVerzoek)) ||
				(v.AangevuldeVerzoek != nil && !r.exists(*v.AangevuldeVerzoek)) {
				delete(r.items, key)
				changed = true
			}
		}
	}
	return nil
}

func (r *memoryRepo) exists(id uuid.UUID) bool {
	_, ok := r.items[id]
	return ok
}

func (r *memoryRepo) IdentificatieInUse(_ context.Context, bronorganisatie, ident string, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.items {
		if v.UUID != exclude && v.Bronorganisatie == bronorganisatie && v.Identificatie == ident {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) Successor(_ context.Context, link verzoekrepo.Link, target uuid.UUID) (*uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.items {
		ref := v.AangevuldeVerzoek
		if link == verzoekrepo.LinkInTeTrekken {
			ref = v.InTeTrekkenVerzoek
		}
		if ref != nil && *ref == target {
			id := v.UUID
			return &id, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) CascadeIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []uuid.UUID{id}
	for i := 0; i < len(ids); i++ {
		for _, v := range r.items {
			if (v.InTeTrekkenVerzoek != nil && *v.InTeTrekkenVerzoek == ids[i]) ||
				(v.AangevuldeVerzoek != nil && *v.AangevuldeVerzoek == ids[i]) {
				ids = append(ids, v.UUID)
			}
		}
	}
	return ids, nil
}

type recordingReleaser struct {
	released []uuid.UUID
	err      error
}

func (r *recordingReleaser) ReleaseForVerzoeken(ctx context.Context, verzoeken []uuid.UUID, deleteLocal func(ctx context.Context) error) error {
	r.released = append(r.released, verzoeken...)
	if r.err != nil {
		return r.err
	}
	return deleteLocal(ctx)
}

func newService() (*Service, *memoryRepo, *recordingReleaser, *relationtest.Notifier) {
	repo := newMemoryRepo()
	releaser := &recordingReleaser{}
	notifier := &relationtest.Notifier{}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	resolver := urls.NewResolver("verzoeken.example.com", true, "1")
	return NewService(repo, releaser, resolver, notifier, logger), repo, releaser, notifier
}

func newVerzoek() models.Verzoek {
	return models.Verzoek{
		Bronorganisatie:  "517439943",
		Registratiedatum: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Tekst:            "Graag een parkeervergunning",
	}
}

func TestCreate_GeneratesIdentificatie(t *testing.T) {
	service, _, _, notifier := newService()

	first, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)
	second, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	assert.Equal(t, "VERZOEK-2026-0000000001", first.Identificatie)
	assert.Equal(t, "VERZOEK-2026-0000000002", second.Identificatie)
	assert.Equal(t, models.VerzoekStatusOntvangen, first.Status)
	require.Len(t, notifier.Sent, 2)
	assert.Equal(t, "verzoek", notifier.Sent[0].Resource)
	assert.Equal(t, notifier.Sent[0].ResourceURL, notifier.Sent[0].HoofdObject)
}

func TestCreate_DuplicateIdentificatie(t *testing.T) {
	service, _, _, _ := newService()
	v := newVerzoek()
	v.Identificatie = "EIGEN-1"
	_, err := service.Create(context.Background(), v)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), v)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	param, ok := verr.Param("identificatie")
	require.True(t, ok)
	assert.Equal(t, apierrors.CodeIdentificatieNietUniek, param.Code)

	other := v
	other.Bronorganisatie = "000000000"
	_, err = service.Create(context.Background(), other)
	assert.NoError(t, err)
}

func TestCreate_Links(t *testing.T) {
	service, _, _, _ := newService()
	target, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	withdraw := newVerzoek()
	withdraw.InTeTrekkenVerzoek = &target.UUID
	created, err := service.Create(context.Background(), withdraw)
	require.NoError(t, err)
	assert.Equal(t, target.UUID, *created.InTeTrekkenVerzoek)

	t.Run("second successor of the same kind", func(t *testing.T) {
		_, err := service.Create(context.Background(), withdraw)
		verr, ok := apierrors.AsValidationError(err)
		require.True(t, ok)
		param, _ := verr.Param("inTeTrekkenVerzoek")
		assert.Equal(t, apierrors.CodeUnique, param.Code)
	})

	t.Run("unknown target", func(t *testing.T) {
		v := newVerzoek()
		missing := uuid.New()
		v.AangevuldeVerzoek = &missing
		_, err := service.Create(context.Background(), v)
		verr, ok := apierrors.AsValidationError(err)
		require.True(t, ok)
		param, _ := verr.Param("aangevuldeVerzoek")
		assert.Equal(t, apierrors.CodeDoesNotExist, param.Code)
	})

	t.Run("errors are collected", func(t *testing.T) {
		v := newVerzoek()
		missing := uuid.New()
		v.InTeTrekkenVerzoek = &missing
		v.AangevuldeVerzoek = &missing
		_, err := service.Create(context.Background(), v)
		verr, ok := apierrors.AsValidationError(err)
		require.True(t, ok)
		assert.Len(t, verr.Params, 2)
	})
}

func TestUpdate_ImmutableFields(t *testing.T) {
	service, _, _, _ := newService()
	target, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)
	v, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	ident := "ANDERS"
	_, err = service.Update(context.Background(), v.UUID, Patch{
		Identificatie:      &ident,
		InTeTrekkenVerzoek: &LinkValue{ID: &target.UUID},
	}, true)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	for _, field := range []string{"identificatie", "inTeTrekkenVerzoek"} {
		param, ok := verr.Param(field)
		require.True(t, ok, field)
		assert.Equal(t, apierrors.CodeWijzigenNietToegelaten, param.Code)
	}
}

func TestUpdate_Partial(t *testing.T) {
	service, _, _, notifier := newService()
	v, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	status := models.VerzoekStatusInBehandeling
	same := v.Identificatie
	updated, err := service.Update(context.Background(), v.UUID, Patch{
		Status:             &status,
		Identificatie:      &same,
		AangevuldeVerzoek:  &LinkValue{},
		InTeTrekkenVerzoek: &LinkValue{},
	}, true)

	require.NoError(t, err)
	assert.Equal(t, status, updated.Status)
	assert.Equal(t, v.Tekst, updated.Tekst)
	assert.Equal(t, "partial_update", notifier.Sent[len(notifier.Sent)-1].Actie)
}

func TestUpdate_BronorganisatieChangeRechecksIdentificatie(t *testing.T) {
	service, _, _, _ := newService()
	existing := newVerzoek()
	existing.Bronorganisatie = "000000000"
	existing.Identificatie = "GEDEELD"
	_, err := service.Create(context.Background(), existing)
	require.NoError(t, err)

	v := newVerzoek()
	v.Identificatie = "GEDEELD"
	created, err := service.Create(context.Background(), v)
	require.NoError(t, err)

	bron := "000000000"
	_, err = service.Update(context.Background(), created.UUID, Patch{Bronorganisatie: &bron}, true)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	param, _ := verr.Param("identificatie")
	assert.Equal(t, apierrors.CodeIdentificatieNietUniek, param.Code)
}

func TestDelete_CascadesAndReleasesDocuments(t *testing.T) {
	service, repo, releaser, notifier := newService()
	root, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	supplement := newVerzoek()
	supplement.AangevuldeVerzoek = &root.UUID
	child, err := service.Create(context.Background(), supplement)
	require.NoError(t, err)

	withdraw := newVerzoek()
	withdraw.InTeTrekkenVerzoek = &child.UUID
	grandchild, err := service.Create(context.Background(), withdraw)
	require.NoError(t, err)

	unrelated, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), root.UUID))

	assert.ElementsMatch(t, []uuid.UUID{root.UUID, child.UUID, grandchild.UUID}, releaser.released)
	assert.False(t, repo.exists(root.UUID))
	assert.False(t, repo.exists(child.UUID))
	assert.False(t, repo.exists(grandchild.UUID))
	assert.True(t, repo.exists(unrelated.UUID))
	assert.Equal(t, "destroy", notifier.Sent[len(notifier.Sent)-1].Actie)
}

func TestDelete_ReleaseFailureKeepsVerzoek(t *testing.T) {
	service, repo, releaser, _ := newService()
	v, err := service.Create(context.Background(), newVerzoek())
	require.NoError(t, err)
	releaser.err = errors.New("documents API unavailable")

	err = service.Delete(context.Background(), v.UUID)

	assert.ErrorIs(t, err, releaser.err)
	assert.True(t, repo.exists(v.UUID))
}

func TestDelete_NotFound(t *testing.T) {
	service, _, _, _ := newService()

	err := service.Delete(context.Background(), uuid.New())

	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}
