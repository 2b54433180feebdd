// Package relations checks that a relation stored here agrees with the relation stored on the
// other side, in the API that owns the object.
package relations

import (
	"context"
	"net/url"

	"github.com/Gobusters/ectologger"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/metrics"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

// Polarity is the outcome a check demands of the remote lookup.
type Polarity string

const (
	// Exists demands that the remote API already holds the relation (create).
	Exists Polarity = "exists"
	// Absent demands that the remote API no longer holds the relation (destroy).
	Absent Polarity = "absent"
)

type Validator struct {
	gateway remote.Gateway
	logger  ectologger.Logger
}

func NewValidator(gateway remote.Gateway, logger ectologger.Logger) *Validator {
	return &Validator{gateway: gateway, logger: logger}
}

// RequireExists fails unless the API serving objectURL lists a {objectType}verzoek linking it to verzoekURL.
func (v *Validator) RequireExists(ctx context.Context, objectType, objectURL, verzoekURL string) error {
	return v.check(ctx, Exists, objectType, objectURL, verzoekURL)
}

// RequireAbsent fails when the API serving objectURL still lists a {objectType}verzoek linking it to verzoekURL.
func (v *Validator) RequireAbsent(ctx context.Context, objectType, objectURL, verzoekURL string) error {
	return v.check(ctx, Absent, objectType, objectURL, verzoekURL)
}

func (v *Validator) check(ctx context.Context, polarity Polarity, objectType, objectURL, verzoekURL string) error {
	ctx, span := tracing.StartSpan(ctx, "Validator.check")
	defer span.End()

	log := v.logger.WithContext(ctx).WithFields(map[string]any{
		"polarity":    string(polarity),
		"object_type": objectType,
		"object":      objectURL,
		"verzoek":     verzoekURL,
	})

	records, err := v.lookup(ctx, objectType, objectURL, verzoekURL)
	if err != nil {
		log.WithError(err).Warn("remote relation lookup failed")
		metrics.RecordRelationCheck(string(polarity), "error")
		tracing.Fail(span, err)
		return lookupFailure(polarity, err)
	}

	switch {
	case polarity == Exists && len(records) == 0:
		metrics.RecordRelationCheck(string(polarity), "violation")
		return apierrors.NewNonFieldErrorf(apierrors.CodeInconsistentRelation,
			"The verzoek has no relations to %s", objectType)
	case polarity == Absent && len(records) > 0:
		metrics.RecordRelationCheck(string(polarity), "violation")
		return apierrors.NewNonFieldError(apierrors.CodeRemoteRelationExists,
			"The canonical remote relation still exists, this relation cannot be deleted.")
	}

	metrics.RecordRelationCheck(string(polarity), "ok")
	return nil
}

func (v *Validator) lookup(ctx context.Context, objectType, objectURL, verzoekURL string) ([]remote.Record, error) {
	client, err := v.gateway.ClientFor(ctx, objectURL)
	if err != nil {
		return nil, err
	}
	return client.List(ctx, objectType+"verzoek", url.Values{
		objectType: {objectURL},
		"verzoek":  {verzoekURL},
	})
}

func lookupFailure(polarity Polarity, err error) error {
	detail := err.Error()
	if opErr, ok := remote.AsOperationError(err); ok {
		detail = opErr.Detail()
	}

	if polarity == Exists {
		return apierrors.NewNonFieldError(apierrors.CodeRelationValidationError, detail)
	}
	return apierrors.NewNonFieldError(apierrors.CodeRelationLookupError, detail)
}
