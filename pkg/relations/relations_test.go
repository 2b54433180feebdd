package relations

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/remote/remotetest"
)

const (
	zaakURL    = "https://zrc.example.com/api/v1/zaken/1"
	verzoekURL = "https://verzoeken.example.com/api/v1/verzoeken/1"
)

func TestValidator(t *testing.T) {
	tests := []struct {
		name     string
		polarity Polarity
		linked   bool
		listErr  error
		lookup   error
		wantCode string
	}{
		{name: "exists and linked", polarity: Exists, linked: true},
		{name: "exists but not linked", polarity: Exists, wantCode: apierrors.CodeInconsistentRelation},
		{name: "exists with remote failure", polarity: Exists, listErr: errors.New("connection refused"), wantCode: apierrors.CodeRelationValidationError},
		{name: "exists without credentials", polarity: Exists, lookup: remote.ErrNoCredentials, wantCode: apierrors.CodeRelationValidationError},
		{name: "absent and unlinked", polarity: Absent},
		{name: "absent but still linked", polarity: Absent, linked: true, wantCode: apierrors.CodeRemoteRelationExists},
		{name: "absent with remote failure", polarity: Absent, listErr: errors.New("timeout"), wantCode: apierrors.CodeRelationLookupError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := remotetest.NewGateway("https://zrc.example.com/api/v1/")
			gateway.LookupErr = tt.lookup
			if tt.linked {
				gateway.API.Seed("zaakverzoek", map[string]any{"zaak": zaakURL, "verzoek": verzoekURL})
			}
			// a link to another verzoek never counts
			gateway.API.Seed("zaakverzoek", map[string]any{"zaak": zaakURL, "verzoek": verzoekURL + "0"})
			if tt.listErr != nil {
				gateway.API.Fail(remote.OperationList, tt.listErr)
			}

			v := NewValidator(gateway, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

			var err error
			if tt.polarity == Exists {
				err = v.RequireExists(context.Background(), "zaak", zaakURL, verzoekURL)
			} else {
				err = v.RequireAbsent(context.Background(), "zaak", zaakURL, verzoekURL)
			}

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}

			verr, ok := apierrors.AsValidationError(err)
			require.True(t, ok)
			param, found := verr.Param(apierrors.NonFieldErrors)
			require.True(t, found)
			assert.Equal(t, tt.wantCode, param.Code)
		})
	}
}

func TestRequireExists_Message(t *testing.T) {
	gateway := remotetest.NewGateway("https://zrc.example.com/api/v1/")
	v := NewValidator(gateway, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	err := v.RequireExists(context.Background(), "zaak", zaakURL, verzoekURL)

	verr, ok := apierrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "The verzoek has no relations to zaak", verr.Params[0].Reason)

	calls := gateway.API.CallsOf(remote.OperationList)
	require.Len(t, calls, 1)
	assert.Equal(t, "zaakverzoek", calls[0].Resource)
	assert.Equal(t, zaakURL, calls[0].Query.Get("zaak"))
	assert.Equal(t, verzoekURL, calls[0].Query.Get("verzoek"))
}
