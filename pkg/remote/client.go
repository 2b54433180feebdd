package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmespath/go-jmespath"

	"github.com/Ramsey-B/verzoeken/pkg/httpclient"
	"github.com/Ramsey-B/verzoeken/pkg/metrics"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

const (
	OperationCreate   = "create"
	OperationDelete   = "delete"
	OperationList     = "list"
	OperationRetrieve = "retrieve"
)

// DefaultResultsPath locates the records in a paginated list response.
const DefaultResultsPath = "results"

// Record is a decoded remote resource.
type Record map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// API is the typed client of one remote API root.
type API interface {
	Create(ctx context.Context, resource string, payload any) (Record, error)
	Delete(ctx context.Context, resource, resourceURL string) error
	List(ctx context.Context, resource string, query url.Values) ([]Record, error)
	Retrieve(ctx context.Context, resourceURL string) (Record, error)
}

// irregular plurals of resource names; everything else takes "en".
var collectionNames = map[string]string{
	"zaak": "zaken",
}

// CollectionPath returns the path segment of the collection holding resource.
func CollectionPath(resource string) string {
	if name, ok := collectionNames[resource]; ok {
		return name
	}
	return resource + "en"
}

type Client struct {
	apiRoot string
	auth    *Authenticator
	http    *httpclient.Client
	results *jmespath.JMESPath
	logger  ectologger.Logger
}

func NewClient(credential models.APICredential, http *httpclient.Client, resultsPath string, logger ectologger.Logger) (*Client, error) {
	if resultsPath == "" {
		resultsPath = DefaultResultsPath
	}
	results, err := jmespath.Compile(resultsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid results path %q: %w", resultsPath, err)
	}

	return &Client{
		apiRoot: strings.TrimSuffix(credential.APIRoot, "/") + "/",
		auth:    NewAuthenticator(credential),
		http:    http,
		results: results,
		logger:  logger,
	}, nil
}

func (c *Client) collectionURL(resource string) string {
	return c.apiRoot + CollectionPath(resource)
}

func (c *Client) Create(ctx context.Context, resource string, payload any) (Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Client.Create")
	defer span.End()

	target := c.collectionURL(resource)
	body, err := c.call(ctx, OperationCreate, resource, http.MethodPost, target, payload)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, c.malformed(OperationCreate, resource, target, body, err)
	}
	return record, nil
}

func (c *Client) Delete(ctx context.Context, resource, resourceURL string) error {
	ctx, span := tracing.StartSpan(ctx, "Client.Delete")
	defer span.End()

	if _, err := c.call(ctx, OperationDelete, resource, http.MethodDelete, resourceURL, nil); err != nil {
		tracing.Fail(span, err)
		return err
	}
	return nil
}

func (c *Client) List(ctx context.Context, resource string, query url.Values) ([]Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Client.List")
	defer span.End()

	target := c.collectionURL(resource)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := c.call(ctx, OperationList, resource, http.MethodGet, target, nil)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	records, err := c.extract(body)
	if err != nil {
		return nil, c.malformed(OperationList, resource, target, body, err)
	}
	return records, nil
}

func (c *Client) Retrieve(ctx context.Context, resourceURL string) (Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Client.Retrieve")
	defer span.End()

	body, err := c.call(ctx, OperationRetrieve, "", http.MethodGet, resourceURL, nil)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, c.malformed(OperationRetrieve, "", resourceURL, body, err)
	}
	return record, nil
}

// extract accepts a bare array or an object holding the records under the results path.
func (c *Client) extract(body []byte) ([]Record, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}

	if _, isArray := decoded.([]any); !isArray {
		found, err := c.results.Search(decoded)
		if err != nil {
			return nil, err
		}
		decoded = found
	}

	items, ok := decoded.([]any)
	if !ok {
		if decoded == nil {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("expected a list of records, got %T", decoded)
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected a record object, got %T", item)
		}
		records = append(records, Record(obj))
	}
	return records, nil
}

func (c *Client) call(ctx context.Context, operation, resource, method, target string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.http.Timeout())
	defer cancel()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.RecordRemoteRequest(operation, resource, status, time.Since(start).Seconds())
	}()

	authorization, err := c.auth.Header()
	if err != nil {
		return nil, &OperationError{Operation: operation, Resource: resource, URL: target, Err: fmt.Errorf("failed to sign token: %w", err)}
	}

	headers := map[string]string{
		"Authorization": authorization,
	}
	if operation == OperationRetrieve {
		// geo fields of zaken are only served when a CRS is requested
		headers["Accept-Crs"] = "EPSG:4326"
	}

	resp, err := c.http.DoJSON(ctx, method, target, payload, headers)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"operation": operation,
			"resource":  resource,
			"url":       target,
		}).Warn("remote request failed")
		return nil, &OperationError{Operation: operation, Resource: resource, URL: target, Err: err}
	}

	if !resp.IsSuccess() {
		status = fmt.Sprintf("%d", resp.StatusCode)
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"operation":   operation,
			"resource":    resource,
			"url":         target,
			"status_code": resp.StatusCode,
		}).Warn("remote request rejected")
		return nil, &OperationError{
			Operation:  operation,
			Resource:   resource,
			URL:        target,
			StatusCode: resp.StatusCode,
			Payload:    json.RawMessage(resp.Body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	status = "success"
	return resp.Body, nil
}

func (c *Client) malformed(operation, resource, target string, body []byte, err error) error {
	return &OperationError{
		Operation: operation,
		Resource:  resource,
		URL:       target,
		Payload:   json.RawMessage(body),
		Err:       fmt.Errorf("malformed response: %w", err),
	}
}
