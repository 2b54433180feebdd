package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/pkg/httpclient"
	"github.com/Ramsey-B/verzoeken/pkg/models"
)

func newTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestRegistry(t *testing.T, server *httptest.Server, timeout time.Duration) *Registry {
	t.Helper()
	logger := newTestLogger()
	client := httpclient.NewClient(httpclient.Config{Timeout: timeout}, logger)
	registry := NewRegistry(client, "", logger)
	registry.Load([]models.APICredential{{
		APIRoot:            server.URL + "/api/v1/",
		ClientID:           "verzoeken",
		Secret:             "geheim",
		UserID:             "system",
		UserRepresentation: "Verzoeken API",
	}})
	return registry
}

func TestCollectionPath(t *testing.T) {
	assert.Equal(t, "objectinformatieobjecten", CollectionPath("objectinformatieobject"))
	assert.Equal(t, "zaakverzoeken", CollectionPath("zaakverzoek"))
	assert.Equal(t, "zaken", CollectionPath("zaak"))
}

func TestCredentialStore_LongestPrefixWins(t *testing.T) {
	store := NewCredentialStore([]models.APICredential{
		{APIRoot: "https://api.example.com/", ClientID: "generic"},
		{APIRoot: "https://api.example.com/documenten/api/v1/", ClientID: "drc"},
	})

	cred, ok := store.Lookup("https://api.example.com/documenten/api/v1/enkelvoudiginformatieobjecten/1")
	require.True(t, ok)
	assert.Equal(t, "drc", cred.ClientID)

	cred, ok = store.Lookup("https://api.example.com/zaken/api/v1/zaken/1")
	require.True(t, ok)
	assert.Equal(t, "generic", cred.ClientID)

	_, ok = store.Lookup("https://api.example.community/zaken/1")
	assert.False(t, ok)
}

func TestRegistry_ClientFor_UnknownRoot(t *testing.T) {
	registry := NewRegistry(httpclient.NewClient(httpclient.DefaultConfig(), newTestLogger()), "", newTestLogger())

	_, err := registry.ClientFor(context.Background(), "https://unknown.example.com/api/v1/zaken/1")
	require.Error(t, err)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestClient_CreateSendsSignedToken(t *testing.T) {
	var gotClaims Claims
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/objectinformatieobjecten", r.URL.Path)

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		_, err := jwt.ParseWithClaims(raw, &gotClaims, func(token *jwt.Token) (any, error) {
			return []byte("geheim"), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		assert.NoError(t, err)

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url":"http://drc/api/v1/objectinformatieobjecten/1"}`))
	}))
	defer server.Close()

	registry := newTestRegistry(t, server, time.Second)
	api, err := registry.ClientFor(context.Background(), server.URL+"/api/v1/enkelvoudiginformatieobjecten/1")
	require.NoError(t, err)

	record, err := api.Create(context.Background(), "objectinformatieobject", map[string]string{
		"object":     "http://verzoeken/api/v1/verzoeken/1",
		"objectType": "verzoek",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://drc/api/v1/objectinformatieobjecten/1", record.String("url"))
	assert.Equal(t, "verzoek", gotBody["objectType"])
	assert.Equal(t, "verzoeken", gotClaims.ClientID)
	assert.Equal(t, "verzoeken", gotClaims.Issuer)
	assert.Equal(t, "system", gotClaims.UserID)
	assert.Equal(t, "Verzoeken API", gotClaims.UserRepresentation)
	assert.NotNil(t, gotClaims.IssuedAt)
}

func TestClient_List(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "paginated", body: `{"count":2,"results":[{"url":"a"},{"url":"b"}]}`, want: 2},
		{name: "bare array", body: `[{"url":"a"}]`, want: 1},
		{name: "empty page", body: `{"count":0,"results":[]}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery url.Values
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			api, err := newTestRegistry(t, server, time.Second).ClientFor(context.Background(), server.URL+"/api/v1/zaken/1")
			require.NoError(t, err)

			records, err := api.List(context.Background(), "zaakverzoek", url.Values{"zaak": {"z"}, "verzoek": {"v"}})
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
			assert.Equal(t, "z", gotQuery.Get("zaak"))
			assert.Equal(t, "v", gotQuery.Get("verzoek"))
		})
	}
}

func TestClient_ErrorStatusKeepsDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid","detail":"Het informatieobject is al gekoppeld"}`))
	}))
	defer server.Close()

	api, err := newTestRegistry(t, server, time.Second).ClientFor(context.Background(), server.URL+"/api/v1/x/1")
	require.NoError(t, err)

	_, err = api.Create(context.Background(), "objectinformatieobject", map[string]string{})
	require.Error(t, err)

	opErr, ok := AsOperationError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, opErr.StatusCode)
	assert.Equal(t, OperationCreate, opErr.Operation)
	assert.Equal(t, "Het informatieobject is al gekoppeld", opErr.Detail())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	api, err := newTestRegistry(t, server, 50*time.Millisecond).ClientFor(context.Background(), server.URL+"/api/v1/x/1")
	require.NoError(t, err)

	err = api.Delete(context.Background(), "objectinformatieobject", server.URL+"/api/v1/objectinformatieobjecten/1")
	require.Error(t, err)

	opErr, ok := AsOperationError(err)
	require.True(t, ok)
	assert.Zero(t, opErr.StatusCode)
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	api, err := newTestRegistry(t, server, time.Second).ClientFor(context.Background(), server.URL+"/api/v1/x/1")
	require.NoError(t, err)

	_, err = api.Retrieve(context.Background(), server.URL+"/api/v1/x/1")
	require.Error(t, err)
	_, ok := AsOperationError(err)
	assert.True(t, ok)
}
