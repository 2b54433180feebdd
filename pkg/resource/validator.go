// Package resource checks that a url points at a remote resource of the expected shape.
package resource

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/santhosh-tekuri/jsonschema/v6"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

const (
	SchemaZaak                        = "Zaak"
	SchemaEnkelvoudigInformatieObject = "EnkelvoudigInformatieObject"
)

// Validator fetches a url and matches the response against one schema. Without a schema only
// the fetch is checked.
type Validator struct {
	name    string
	schema  *jsonschema.Schema
	gateway remote.Gateway
	logger  ectologger.Logger
}

func NewValidator(name string, schemas *Schemas, gateway remote.Gateway, logger ectologger.Logger) (*Validator, error) {
	v := &Validator{
		name:    name,
		gateway: gateway,
		logger:  logger,
	}
	if schemas == nil {
		return v, nil
	}

	schema, err := schemas.Compile(name)
	if err != nil {
		return nil, err
	}
	v.schema = schema
	return v, nil
}

// Validate reports a field error on field when resourceURL cannot be fetched or does not match.
func (v *Validator) Validate(ctx context.Context, field, resourceURL string) error {
	ctx, span := tracing.StartSpan(ctx, "Validator.Validate")
	defer span.End()

	log := v.logger.WithContext(ctx).WithFields(map[string]any{
		"field":  field,
		"url":    resourceURL,
		"schema": v.name,
	})

	client, err := v.gateway.ClientFor(ctx, resourceURL)
	if err != nil {
		log.WithError(err).Warn("no client for resource url")
		return apierrors.NewFieldErrorf(field, apierrors.CodeBadURL, "De URL %s kon niet opgehaald worden.", resourceURL)
	}

	record, err := client.Retrieve(ctx, resourceURL)
	if err != nil {
		log.WithError(err).Warn("could not fetch resource")
		return apierrors.NewFieldErrorf(field, apierrors.CodeBadURL, "De URL %s kon niet opgehaald worden.", resourceURL)
	}

	if v.schema == nil {
		return nil
	}

	instance, err := toInstance(record)
	if err == nil {
		err = v.schema.Validate(instance)
	}
	if err != nil {
		log.WithError(err).Info("resource does not match schema")
		return apierrors.NewFieldErrorf(field, apierrors.CodeInvalidResource, "De URL %s resulteert niet in een %s.", resourceURL, v.name)
	}
	return nil
}

// toInstance re-decodes a record the way the schema library expects numbers.
func toInstance(record remote.Record) (any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
