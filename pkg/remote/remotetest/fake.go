// Package remotetest provides an in-memory remote.Gateway for tests.
package remotetest

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/Ramsey-B/verzoeken/pkg/remote"
)

// Call records one operation received by the fake.
type Call struct {
	Operation string
	Resource  string
	URL       string
	Query     url.Values
	Payload   any
}

// API stores created records per resource. List filters records on every query parameter.
// Set an error in Errors, keyed by operation, to make that operation fail.
type API struct {
	mu      sync.Mutex
	Root    string
	Records map[string][]remote.Record
	Errors  map[string]error
	Calls   []Call
	seq     int
}

func NewAPI(root string) *API {
	return &API{
		Root:    root,
		Records: make(map[string][]remote.Record),
		Errors:  make(map[string]error),
	}
}

// Seed adds a record to resource and returns its url.
func (a *API) Seed(resource string, fields map[string]any) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.add(resource, fields)["url"].(string)
}

func (a *API) add(resource string, fields map[string]any) remote.Record {
	a.seq++
	record := remote.Record{"url": fmt.Sprintf("%s%s/%d", a.Root, remote.CollectionPath(resource), a.seq)}
	for k, v := range fields {
		record[k] = v
	}
	a.Records[resource] = append(a.Records[resource], record)
	return record
}

func (a *API) Fail(operation string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Errors[operation] = err
}

// Count returns the number of records of resource.
func (a *API) Count(resource string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Records[resource])
}

// CallsOf returns the recorded calls of operation.
func (a *API) CallsOf(operation string) []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	var calls []Call
	for _, c := range a.Calls {
		if c.Operation == operation {
			calls = append(calls, c)
		}
	}
	return calls
}

func (a *API) Create(_ context.Context, resource string, payload any) (remote.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, Call{Operation: remote.OperationCreate, Resource: resource, Payload: payload})
	if err := a.Errors[remote.OperationCreate]; err != nil {
		return nil, err
	}

	fields := map[string]any{}
	switch p := payload.(type) {
	case map[string]string:
		for k, v := range p {
			fields[k] = v
		}
	case map[string]any:
		fields = p
	}
	return a.add(resource, fields), nil
}

func (a *API) Delete(_ context.Context, resource, resourceURL string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, Call{Operation: remote.OperationDelete, Resource: resource, URL: resourceURL})
	if err := a.Errors[remote.OperationDelete]; err != nil {
		return err
	}

	records := a.Records[resource]
	for i, r := range records {
		if r.String("url") == resourceURL {
			a.Records[resource] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return &remote.OperationError{Operation: remote.OperationDelete, Resource: resource, URL: resourceURL, StatusCode: 404}
}

func (a *API) List(_ context.Context, resource string, query url.Values) ([]remote.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, Call{Operation: remote.OperationList, Resource: resource, Query: query})
	if err := a.Errors[remote.OperationList]; err != nil {
		return nil, err
	}

	matches := []remote.Record{}
	for _, r := range a.Records[resource] {
		ok := true
		for key := range query {
			if r.String(key) != query.Get(key) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

func (a *API) Retrieve(_ context.Context, resourceURL string) (remote.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, Call{Operation: remote.OperationRetrieve, URL: resourceURL})
	if err := a.Errors[remote.OperationRetrieve]; err != nil {
		return nil, err
	}

	for _, records := range a.Records {
		for _, r := range records {
			if r.String("url") == resourceURL {
				return r, nil
			}
		}
	}
	return nil, &remote.OperationError{Operation: remote.OperationRetrieve, URL: resourceURL, StatusCode: 404}
}

// Gateway returns API for every url. When LookupErr is set ClientFor fails with it instead.
type Gateway struct {
	API       *API
	LookupErr error
}

func NewGateway(root string) *Gateway {
	return &Gateway{API: NewAPI(root)}
}

func (g *Gateway) ClientFor(_ context.Context, resourceURL string) (remote.API, error) {
	if g.LookupErr != nil {
		return nil, &remote.LookupError{URL: resourceURL, Err: g.LookupErr}
	}
	return g.API, nil
}
