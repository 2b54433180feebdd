package verzoekinformatieobject

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	"github.com/Ramsey-B/verzoeken/internal/services/relation/relationtest"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/mask"
	"github.com/Ramsey-B/verzoeken/pkg/mirror"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/remote/remotetest"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const document = "https://drc.example.com/api/v1/enkelvoudiginformatieobjecten/1"

type acceptDocuments struct{}

func (acceptDocuments) Validate(context.Context, string, string) error { return nil }

// observingMirror runs onDelete before delegating, so tests can look at the service mid-delete.
type observingMirror struct {
	*mirror.Engine
	onDelete func(ctx context.Context, vio models.VerzoekInformatieObject)
}

func (m *observingMirror) MirrorDelete(ctx context.Context, vio models.VerzoekInformatieObject) error {
	if m.onDelete != nil {
		m.onDelete(ctx, vio)
	}
	return m.Engine.MirrorDelete(ctx, vio)
}

type fixture struct {
	service  *Service
	repo     *relationtest.Memory[models.VerzoekInformatieObject]
	gateway  *remotetest.Gateway
	mirror   *observingMirror
	mask     *mask.Memory
	notifier *relationtest.Notifier
	verzoek  models.Verzoek
}

func newFixture() *fixture {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	resolver := urls.NewResolver("verzoeken.example.com", true, "1")
	gateway := remotetest.NewGateway("https://drc.example.com/api/v1/")
	verzoek := models.Verzoek{UUID: uuid.New(), Bronorganisatie: "517439943", Identificatie: "VERZOEK-2026-0000000001"}

	f := &fixture{
		repo:     relationtest.NewMemory(relation.VerzoekInformatieObjectAccessors),
		gateway:  gateway,
		mirror:   &observingMirror{Engine: mirror.NewEngine(gateway, resolver, logger)},
		mask:     mask.NewMemory(),
		notifier: &relationtest.Notifier{},
		verzoek:  verzoek,
	}
	f.service = NewService(f.repo, relationtest.NewVerzoeken(verzoek), f.mirror, f.mask, acceptDocuments{}, resolver, f.notifier, logger)
	return f
}

func (f *fixture) create(t *testing.T) *models.VerzoekInformatieObject {
	t.Helper()
	vio, err := f.service.Create(context.Background(), models.VerzoekInformatieObject{Verzoek: f.verzoek.UUID, Informatieobject: document})
	require.NoError(t, err)
	return vio
}

func TestCreate_MirrorsRelation(t *testing.T) {
	f := newFixture()

	vio := f.create(t)

	assert.NotEqual(t, uuid.Nil, vio.UUID)
	assert.Equal(t, 1, f.repo.Len())
	assert.Equal(t, 1, f.gateway.API.Count(mirror.Resource))
	require.Len(t, f.notifier.Sent, 1)
	assert.Equal(t, "create", f.notifier.Sent[0].Actie)
	assert.Equal(t, "https://verzoeken.example.com/api/v1/verzoeken/"+f.verzoek.UUID.String(), f.notifier.Sent[0].HoofdObject)
}

func TestCreate_MirrorFailureRemovesLocalRelation(t *testing.T) {
	f := newFixture()
	f.gateway.API.Fail(remote.OperationCreate, &remote.OperationError{
		Operation:  remote.OperationCreate,
		StatusCode: http.StatusBadRequest,
		Payload:    []byte(`{"detail":"verzoek onbekend"}`),
	})

	_, err := f.service.Create(context.Background(), models.VerzoekInformatieObject{Verzoek: f.verzoek.UUID, Informatieobject: document})
	require.Error(t, err)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	param, ok := verr.Param(apierrors.NonFieldErrors)
	require.True(t, ok)
	assert.Equal(t, "Could not create remote relation: verzoek onbekend", param.Reason)
	assert.Equal(t, 0, f.repo.Len())
	assert.Empty(t, f.notifier.Sent)
}

func TestCreate_UnknownVerzoek(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), models.VerzoekInformatieObject{Verzoek: uuid.New(), Informatieobject: document})

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	_, ok = verr.Param("verzoek")
	assert.True(t, ok)
	assert.Empty(t, f.gateway.API.CallsOf(remote.OperationCreate))
}

func TestDelete_HidesRelationWhileMirrorIsRemoved(t *testing.T) {
	f := newFixture()
	vio := f.create(t)

	var seenDuringDelete error
	var listedDuringDelete int
	f.mirror.onDelete = func(ctx context.Context, _ models.VerzoekInformatieObject) {
		_, seenDuringDelete = f.service.Get(ctx, vio.UUID)
		page, err := f.service.List(ctx, models.RelationFilter{Verzoek: &f.verzoek.UUID})
		require.NoError(t, err)
		listedDuringDelete = page.Count
	}

	require.NoError(t, f.service.Delete(context.Background(), vio.UUID))

	require.Error(t, seenDuringDelete)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(seenDuringDelete))
	assert.Equal(t, 0, listedDuringDelete)
	assert.Equal(t, 0, f.repo.Len())
	assert.Equal(t, 0, f.gateway.API.Count(mirror.Resource))

	marked, err := f.mask.Marked(context.Background())
	require.NoError(t, err)
	assert.Empty(t, marked)
	assert.Equal(t, "destroy", f.notifier.Sent[len(f.notifier.Sent)-1].Actie)
}

func TestDelete_MirrorFailureKeepsRelation(t *testing.T) {
	f := newFixture()
	vio := f.create(t)
	f.gateway.API.Fail(remote.OperationDelete, &remote.OperationError{
		Operation:  remote.OperationDelete,
		StatusCode: http.StatusBadRequest,
		Payload:    []byte(`{"detail":"relatie vergrendeld"}`),
	})

	err := f.service.Delete(context.Background(), vio.UUID)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	param, _ := verr.Param(apierrors.NonFieldErrors)
	assert.Equal(t, "Could not delete remote relation: relatie vergrendeld", param.Reason)
	assert.Equal(t, 1, f.repo.Len())

	got, err := f.service.Get(context.Background(), vio.UUID)
	require.NoError(t, err)
	assert.Equal(t, vio.UUID, got.UUID)
}

func TestDelete_MissingMirrorIsServerError(t *testing.T) {
	f := newFixture()
	vio := f.create(t)
	f.gateway.API.Records[mirror.Resource] = nil

	err := f.service.Delete(context.Background(), vio.UUID)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
	assert.Equal(t, 1, f.repo.Len())
}

func TestDelete_LocalFailureRestoresMirror(t *testing.T) {
	f := newFixture()
	vio := f.create(t)
	f.repo.DeleteErr = relationtest.ErrUnavailable

	err := f.service.Delete(context.Background(), vio.UUID)

	assert.True(t, errors.Is(err, relationtest.ErrUnavailable))
	assert.Equal(t, 1, f.repo.Len())
	assert.Equal(t, 1, f.gateway.API.Count(mirror.Resource))
}

func TestReleaseForVerzoeken(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.create(t)

	deleted := false
	err := f.service.ReleaseForVerzoeken(context.Background(), []uuid.UUID{f.verzoek.UUID}, func(ctx context.Context) error {
		page, err := f.service.List(ctx, models.RelationFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, page.Count)
		f.repo.DeleteWhere(f.verzoek.UUID)
		deleted = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, f.gateway.API.Count(mirror.Resource))
}

func TestReleaseForVerzoeken_MirrorFailureSkipsLocalDelete(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.gateway.API.Fail(remote.OperationList, errors.New("connection refused"))

	deleted := false
	err := f.service.ReleaseForVerzoeken(context.Background(), []uuid.UUID{f.verzoek.UUID}, func(context.Context) error {
		deleted = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, f.repo.Len())
}
