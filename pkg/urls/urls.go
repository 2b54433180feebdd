// Package urls builds and parses the absolute urls under which resources of this API are published.
package urls

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	appctx "github.com/Ramsey-B/verzoeken/pkg/context"
)

const (
	CollectionVerzoeken                 = "verzoeken"
	CollectionObjectVerzoeken           = "objectverzoeken"
	CollectionVerzoekInformatieObjecten = "verzoekinformatieobjecten"
	CollectionVerzoekContactMomenten    = "verzoekcontactmomenten"
	CollectionVerzoekProducten          = "verzoekproducten"
	CollectionKlantVerzoeken            = "klantverzoeken"
)

// Collections lists every collection in the order the API root presents them.
var Collections = []string{
	CollectionVerzoeken,
	CollectionObjectVerzoeken,
	CollectionVerzoekInformatieObjecten,
	CollectionVerzoekContactMomenten,
	CollectionVerzoekProducten,
	CollectionKlantVerzoeken,
}

type Resolver struct {
	domain     string
	https      bool
	apiVersion string
}

// NewResolver returns a resolver for domain. An empty domain falls back to the host of the
// request carried by the context.
func NewResolver(domain string, https bool, apiVersion string) *Resolver {
	if apiVersion == "" {
		apiVersion = "1"
	}
	return &Resolver{
		domain:     strings.TrimSuffix(domain, "/"),
		https:      https,
		apiVersion: apiVersion,
	}
}

// BasePath is the path prefix every collection is mounted on.
func (r *Resolver) BasePath() string {
	return "/api/v" + r.apiVersion
}

func (r *Resolver) origin(ctx context.Context) string {
	scheme := "http"
	if r.https {
		scheme = "https"
	}

	host := r.domain
	if host == "" {
		host = appctx.GetHost(ctx)
		if s := appctx.GetScheme(ctx); s != "" {
			scheme = s
		}
	}
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host
}

func (r *Resolver) URL(ctx context.Context, collection string, id uuid.UUID) string {
	return fmt.Sprintf("%s%s/%s/%s", r.origin(ctx), r.BasePath(), collection, id)
}

func (r *Resolver) Collection(ctx context.Context, collection string) string {
	return fmt.Sprintf("%s%s/%s", r.origin(ctx), r.BasePath(), collection)
}

func (r *Resolver) Verzoek(ctx context.Context, id uuid.UUID) string {
	return r.URL(ctx, CollectionVerzoeken, id)
}

// OptionalVerzoek renders a nullable verzoek reference.
func (r *Resolver) OptionalVerzoek(ctx context.Context, id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	u := r.Verzoek(ctx, *id)
	return &u
}

// Parse resolves a url of collection to the uuid it names. Only the path is matched,
// so the same resource is recognized behind any host.
func (r *Resolver) Parse(raw, collection string) (uuid.UUID, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return uuid.Nil, fmt.Errorf("%q is not an absolute url", raw)
	}

	prefix := r.BasePath() + "/" + collection + "/"
	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, prefix)
	if idx < 0 {
		return uuid.Nil, fmt.Errorf("%q is not a %s url", raw, collection)
	}

	id, err := uuid.Parse(path[idx+len(prefix):])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q does not end in a valid uuid", raw)
	}
	return id, nil
}
