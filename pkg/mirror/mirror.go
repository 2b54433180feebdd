// Package mirror keeps the documents API copy of a verzoek-document relation in step with the
// local one. The remote side stores it as an objectinformatieobject with objectType "verzoek".
package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ramsey-B/verzoeken/pkg/metrics"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const (
	Resource   = "objectinformatieobject"
	ObjectType = "verzoek"

	actionCreate = "create"
	actionDelete = "delete"
)

// ErrMirrorNotFound means the documents API holds no counterpart of a local relation.
var ErrMirrorNotFound = errors.New("no relations found in the documents API for this verzoek")

// SyncError wraps a failed create or delete of the remote counterpart.
type SyncError struct {
	Operation string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("could not %s remote relation: %v", e.Operation, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Detail is the message reported by the remote API, if any.
func (e *SyncError) Detail() string {
	if opErr, ok := remote.AsOperationError(e.Err); ok {
		return opErr.Detail()
	}
	return e.Err.Error()
}

type Engine struct {
	gateway remote.Gateway
	urls    *urls.Resolver
	logger  ectologger.Logger
}

func NewEngine(gateway remote.Gateway, resolver *urls.Resolver, logger ectologger.Logger) *Engine {
	return &Engine{
		gateway: gateway,
		urls:    resolver,
		logger:  logger,
	}
}

// MirrorCreate registers vio in the documents API that serves its informatieobject.
func (e *Engine) MirrorCreate(ctx context.Context, vio models.VerzoekInformatieObject) error {
	ctx, span := tracing.StartSpan(ctx, "Engine.MirrorCreate")
	defer span.End()

	verzoekURL := e.urls.Verzoek(ctx, vio.Verzoek)
	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"verzoek":          verzoekURL,
		"informatieobject": vio.Informatieobject,
	})

	client, err := e.gateway.ClientFor(ctx, vio.Informatieobject)
	if err != nil {
		log.WithError(err).Error("Could not create remote relation")
		return e.fail(span, actionCreate, err)
	}

	_, err = client.Create(ctx, Resource, map[string]string{
		"object":           verzoekURL,
		"informatieobject": vio.Informatieobject,
		"objectType":       ObjectType,
	})
	if err != nil {
		log.WithError(err).Error("Could not create remote relation")
		return e.fail(span, actionCreate, err)
	}

	metrics.RecordMirrorSync(actionCreate, "success")
	log.Info("created remote relation")
	return nil
}

// MirrorDelete removes the counterpart of vio. When the documents API returns several relations
// for the verzoek, the one pointing at the same informatieobject is removed.
func (e *Engine) MirrorDelete(ctx context.Context, vio models.VerzoekInformatieObject) error {
	ctx, span := tracing.StartSpan(ctx, "Engine.MirrorDelete")
	defer span.End()

	verzoekURL := e.urls.Verzoek(ctx, vio.Verzoek)
	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"verzoek":          verzoekURL,
		"informatieobject": vio.Informatieobject,
	})

	client, err := e.gateway.ClientFor(ctx, vio.Informatieobject)
	if err != nil {
		log.WithError(err).Error("Could not delete remote relation")
		return e.fail(span, actionDelete, err)
	}

	records, err := client.List(ctx, Resource, url.Values{"object": {verzoekURL}})
	if err != nil {
		log.WithError(err).Error("Could not delete remote relation")
		return e.fail(span, actionDelete, err)
	}

	if len(records) == 0 {
		log.WithError(ErrMirrorNotFound).Error(ErrMirrorNotFound.Error())
		metrics.RecordMirrorSync(actionDelete, "not_found")
		tracing.Fail(span, ErrMirrorNotFound)
		return ErrMirrorNotFound
	}

	match := ectolinq.Find(records, func(r remote.Record) bool {
		return r.String("informatieobject") == vio.Informatieobject
	})
	outcome := "success"
	if match == nil {
		match = ectolinq.First(records)
		outcome = "mismatch"
		log.WithFields(map[string]any{
			"relation":                match.String("url"),
			"remote_informatieobject": match.String("informatieobject"),
		}).Warn("No remote relation points at this informatieobject, deleting the first relation of the verzoek")
	}

	relationURL := match.String("url")
	if err := client.Delete(ctx, Resource, relationURL); err != nil {
		log.WithError(err).Error("Could not delete remote relation")
		return e.fail(span, actionDelete, err)
	}

	metrics.RecordMirrorSync(actionDelete, outcome)
	log.WithField("relation", relationURL).Info("deleted remote relation")
	return nil
}

func (e *Engine) fail(span trace.Span, operation string, err error) error {
	metrics.RecordMirrorSync(operation, "failure")
	syncErr := &SyncError{Operation: operation, Err: err}
	tracing.Fail(span, syncErr)
	return syncErr
}
