package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/internal/services/relation"
	"github.com/Ramsey-B/verzoeken/internal/services/relation/relationtest"
	verzoeksvc "github.com/Ramsey-B/verzoeken/internal/services/verzoek"
	"github.com/Ramsey-B/verzoeken/pkg/middleware"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const base = "http://testserver/api/v1"

func nopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newServer(register func(g *echo.Group)) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(nopLogger())
	e.Use(middleware.Context())
	register(e.Group("/api/v1"))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, base+path, strings.NewReader(body))
	req.Host = "testserver"
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func newContactMomentServer(verzoek models.Verzoek, pageSize int) *echo.Echo {
	resolver := urls.NewResolver("", false, "1")
	service := relation.NewService(relation.VerzoekContactMomentConfig,
		relationtest.NewMemory(relation.VerzoekContactMomentAccessors),
		relationtest.NewVerzoeken(verzoek), resolver, &relationtest.Notifier{}, nopLogger())
	handler := NewRelationHandler(VerzoekContactMomentResource, service, resolver, pageSize)
	return newServer(handler.RegisterRoutes)
}

func TestRelationHandler_Lifecycle(t *testing.T) {
	verzoek := models.Verzoek{UUID: uuid.New()}
	e := newContactMomentServer(verzoek, 2)
	verzoekURL := base + "/verzoeken/" + verzoek.UUID.String()

	var created []string
	for i := 0; i < 3; i++ {
		rec, body := do(t, e, http.MethodPost, "/verzoekcontactmomenten",
			`{"verzoek":"`+verzoekURL+`","contactmoment":"https://cmc.example.com/api/v1/contactmomenten/`+uuid.NewString()+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, verzoekURL, body["verzoek"])
		assert.True(t, strings.HasPrefix(body["url"].(string), base+"/verzoekcontactmomenten/"))
		created = append(created, body["url"].(string))
	}

	rec, body := do(t, e, http.MethodGet, "/verzoekcontactmomenten?verzoek="+verzoekURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["results"], 3)

	rec, _ = do(t, e, http.MethodGet, strings.TrimPrefix(created[0], base), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodDelete, strings.TrimPrefix(created[0], base), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = do(t, e, http.MethodGet, strings.TrimPrefix(created[0], base), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestRelationHandler_Validation(t *testing.T) {
	verzoek := models.Verzoek{UUID: uuid.New()}
	e := newContactMomentServer(verzoek, 100)

	tests := []struct {
		name  string
		body  string
		param string
		code  string
	}{
		{name: "missing fields", body: `{}`, param: "verzoek", code: "required"},
		{name: "bad contactmoment url", body: `{"verzoek":"` + base + `/verzoeken/` + verzoek.UUID.String() + `","contactmoment":"geen-url"}`, param: "contactmoment", code: "bad-url"},
		{name: "unknown verzoek", body: `{"verzoek":"` + base + `/verzoeken/` + uuid.NewString() + `","contactmoment":"https://cmc.example.com/1"}`, param: "verzoek", code: "does_not_exist"},
		{name: "wrong collection", body: `{"verzoek":"` + base + `/klantverzoeken/` + verzoek.UUID.String() + `","contactmoment":"https://cmc.example.com/1"}`, param: "verzoek", code: "does_not_exist"},
		{name: "invalid json", body: `{"verzoek":`, param: "nonFieldErrors", code: "parse_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, e, http.MethodPost, "/verzoekcontactmomenten", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			params := body["invalidParams"].([]any)
			found := false
			for _, p := range params {
				param := p.(map[string]any)
				if param["name"] == tt.param && param["code"] == tt.code {
					found = true
				}
			}
			assert.True(t, found, "expected %s/%s in %v", tt.param, tt.code, params)
		})
	}
}

func TestPaginate(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "http://testserver/api/v1/verzoeken?status=ontvangen&page=2", nil)
	req.Host = "testserver"
	c := e.NewContext(req, httptest.NewRecorder())

	page := models.Page{Number: 2, Size: 10}
	response := Paginate(c, page, 25, []int{1})

	require.NotNil(t, response.Next)
	require.NotNil(t, response.Previous)
	assert.Equal(t, "http://testserver/api/v1/verzoeken?page=3&status=ontvangen", *response.Next)
	assert.Equal(t, "http://testserver/api/v1/verzoeken?status=ontvangen", *response.Previous)

	last := Paginate(c, models.Page{Number: 3, Size: 10}, 25, []int{})
	assert.Nil(t, last.Next)
}

type fakeVerzoeken struct {
	items   map[uuid.UUID]models.Verzoek
	created []models.Verzoek
	patches []verzoeksvc.Patch
	filter  models.VerzoekFilter
}

func (f *fakeVerzoeken) Create(_ context.Context, v models.Verzoek) (*models.Verzoek, error) {
	f.created = append(f.created, v)
	v.UUID = uuid.New()
	v.Identificatie = "VERZOEK-2026-0000000001"
	f.items[v.UUID] = v
	return &v, nil
}

func (f *fakeVerzoeken) Get(_ context.Context, id uuid.UUID) (*models.Verzoek, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}
	return &v, nil
}

func (f *fakeVerzoeken) List(_ context.Context, filter models.VerzoekFilter) (models.PageResult[models.Verzoek], error) {
	f.filter = filter
	items := []models.Verzoek{}
	for _, v := range f.items {
		items = append(items, v)
	}
	return models.PageResult[models.Verzoek]{Count: len(items), Items: items}, nil
}

func (f *fakeVerzoeken) Update(_ context.Context, id uuid.UUID, patch verzoeksvc.Patch, _ bool) (*models.Verzoek, error) {
	f.patches = append(f.patches, patch)
	v := f.items[id]
	if patch.Tekst != nil {
		v.Tekst = *patch.Tekst
	}
	return &v, nil
}

func (f *fakeVerzoeken) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func newVerzoekServer() (*echo.Echo, *fakeVerzoeken) {
	fake := &fakeVerzoeken{items: map[uuid.UUID]models.Verzoek{}}
	handler := NewVerzoekHandler(fake, urls.NewResolver("", false, "1"), 100)
	return newServer(handler.RegisterRoutes), fake
}

func TestVerzoekHandler_Create(t *testing.T) {
	e, fake := newVerzoekServer()
	target := models.Verzoek{UUID: uuid.New()}
	fake.items[target.UUID] = target
	targetURL := base + "/verzoeken/" + target.UUID.String()

	rec, body := do(t, e, http.MethodPost, "/verzoeken", `{
		"bronorganisatie": "517439943",
		"registratiedatum": "2026-03-01T10:00:00Z",
		"tekst": "Graag een parkeervergunning",
		"status": "ontvangen",
		"aangevuldeVerzoek": "`+targetURL+`"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "VERZOEK-2026-0000000001", body["identificatie"])
	assert.Equal(t, targetURL, body["aangevuldeVerzoek"])
	assert.Nil(t, body["inTeTrekkenVerzoek"])
	assert.True(t, strings.HasPrefix(body["url"].(string), base+"/verzoeken/"))
}

func TestVerzoekHandler_CreateDefaultsRegistratiedatum(t *testing.T) {
	e, fake := newVerzoekServer()

	rec, body := do(t, e, http.MethodPost, "/verzoeken", `{"bronorganisatie":"423182687","status":"ontvangen"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "VERZOEK-2026-0000000001", body["identificatie"])
	require.Len(t, fake.created, 1)
	assert.True(t, fake.created[0].Registratiedatum.IsZero())
}

func TestVerzoekHandler_UpdateKeepsRegistratiedatum(t *testing.T) {
	e, fake := newVerzoekServer()
	v := models.Verzoek{UUID: uuid.New(), Registratiedatum: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	fake.items[v.UUID] = v

	rec, _ := do(t, e, http.MethodPut, "/verzoeken/"+v.UUID.String(), `{"bronorganisatie":"423182687","status":"in_behandeling"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, fake.patches, 1)
	assert.Nil(t, fake.patches[0].Registratiedatum)
	require.NotNil(t, fake.patches[0].Status)
	assert.Equal(t, models.VerzoekStatusInBehandeling, *fake.patches[0].Status)
}

func TestVerzoekHandler_CreateRejectsDiacritics(t *testing.T) {
	e, fake := newVerzoekServer()

	rec, body := do(t, e, http.MethodPost, "/verzoeken", `{
		"bronorganisatie": "423182687",
		"status": "ontvangen",
		"identificatie": "VERZOEK-ë",
		"externeIdentificatie": "extérieur"
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	codes := map[string]string{}
	for _, p := range body["invalidParams"].([]any) {
		param := p.(map[string]any)
		codes[param["name"].(string)] = param["code"].(string)
	}
	assert.Equal(t, map[string]string{"identificatie": "invalid", "externeIdentificatie": "invalid"}, codes)
	assert.Empty(t, fake.created)
}

func TestVerzoekHandler_CreateInvalid(t *testing.T) {
	e, _ := newVerzoekServer()

	rec, body := do(t, e, http.MethodPost, "/verzoeken", `{
		"bronorganisatie": "123456789",
		"registratiedatum": "2026-03-01T10:00:00Z",
		"status": "onbekend"
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	names := []string{}
	for _, p := range body["invalidParams"].([]any) {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"bronorganisatie", "status"}, names)
}

func TestVerzoekHandler_PartialUpdate(t *testing.T) {
	e, fake := newVerzoekServer()
	v := models.Verzoek{UUID: uuid.New(), Tekst: "oud", Registratiedatum: time.Now()}
	fake.items[v.UUID] = v

	rec, body := do(t, e, http.MethodPatch, "/verzoeken/"+v.UUID.String(), `{"tekst":"nieuw","inTeTrekkenVerzoek":null}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "nieuw", body["tekst"])
	require.Len(t, fake.patches, 1)
	patch := fake.patches[0]
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.AangevuldeVerzoek)
	require.NotNil(t, patch.InTeTrekkenVerzoek)
	assert.Nil(t, patch.InTeTrekkenVerzoek.ID)
}

func TestVerzoekHandler_ListFilters(t *testing.T) {
	e, fake := newVerzoekServer()
	target := uuid.New()

	rec, _ := do(t, e, http.MethodGet, "/verzoeken?bronorganisatie=517439943&registratiedatum__gte=2026-01-01T00:00:00Z&intrekkendeVerzoek="+base+"/verzoeken/"+target.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "517439943", fake.filter.Bronorganisatie)
	require.NotNil(t, fake.filter.RegistratiedatumGTE)
	assert.Equal(t, 2026, fake.filter.RegistratiedatumGTE.Year())
	require.NotNil(t, fake.filter.IntrekkendeVerzoek)
	assert.Equal(t, target, *fake.filter.IntrekkendeVerzoek)

	rec, _ = do(t, e, http.MethodGet, "/verzoeken?registratiedatum__lt=gisteren", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerzoekHandler_NotFound(t *testing.T) {
	e, _ := newVerzoekServer()

	rec, _ := do(t, e, http.MethodGet, "/verzoeken/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/verzoeken/geen-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
