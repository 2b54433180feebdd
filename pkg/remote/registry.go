package remote

import (
	"context"
	"net/url"
	"sync/atomic"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/verzoeken/pkg/httpclient"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

// Gateway hands out a client for the API serving a resource url.
type Gateway interface {
	ClientFor(ctx context.Context, resourceURL string) (API, error)
}

// Registry is the Gateway backed by the configured API credentials. The credential set is
// swapped atomically by Load and read without locking.
type Registry struct {
	store       atomic.Pointer[CredentialStore]
	http        *httpclient.Client
	resultsPath string
	logger      ectologger.Logger
}

func NewRegistry(http *httpclient.Client, resultsPath string, logger ectologger.Logger) *Registry {
	r := &Registry{
		http:        http,
		resultsPath: resultsPath,
		logger:      logger,
	}
	r.store.Store(NewCredentialStore(nil))
	return r
}

// Load replaces the known credentials.
func (r *Registry) Load(credentials []models.APICredential) {
	r.store.Store(NewCredentialStore(credentials))
	r.logger.Infof("loaded %d api credentials", len(credentials))
}

func (r *Registry) ClientFor(ctx context.Context, resourceURL string) (API, error) {
	_, span := tracing.StartSpan(ctx, "Registry.ClientFor")
	defer span.End()

	if _, err := url.ParseRequestURI(resourceURL); err != nil {
		return nil, &LookupError{URL: resourceURL, Err: err}
	}

	cred, ok := r.store.Load().Lookup(resourceURL)
	if !ok {
		err := &LookupError{URL: resourceURL, Err: ErrNoCredentials}
		tracing.Fail(span, err)
		return nil, err
	}

	client, err := NewClient(cred, r.http, r.resultsPath, r.logger)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	return client, nil
}
