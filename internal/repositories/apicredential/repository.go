package apicredential

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

const tableName = "api_credentials"

var columns = []string{"id", "api_root", "label", "client_id", "secret", "user_id", "user_representation", "created_at"}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Create(ctx context.Context, cred models.APICredential) (*models.APICredential, error) {
	ctx, span := tracing.StartSpan(ctx, "apicredential.Repository.Create")
	defer span.End()

	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols(columns[1:]...)
	ib.Values(cred.APIRoot, cred.Label, cred.ClientID, cred.Secret, cred.UserID, cred.UserRepresentation, cred.CreatedAt)
	ib.Returning("id")

	query, args := ib.Build()
	if err := r.db.Querier(ctx).GetContext(ctx, &cred.ID, query, args...); err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, apierrors.NewFieldError("api_root", apierrors.CodeUnique, "Er bestaan al credentials voor deze API root.")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create api credential")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create api credential")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"api_root":  cred.APIRoot,
		"client_id": cred.ClientID,
	}).Info("Created api credential")
	return &cred, nil
}

func (r *Repository) List(ctx context.Context) ([]models.APICredential, error) {
	ctx, span := tracing.StartSpan(ctx, "apicredential.Repository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.OrderBy("api_root")

	query, args := sb.Build()

	creds := []models.APICredential{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &creds, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list api credentials")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list api credentials")
	}
	return creds, nil
}

// Delete removes the credentials for apiRoot.
func (r *Repository) Delete(ctx context.Context, apiRoot string) error {
	ctx, span := tracing.StartSpan(ctx, "apicredential.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("api_root", apiRoot))

	query, args := db.Build()
	result, err := r.db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete api credential")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete api credential")
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "no api credential for %s", apiRoot)
	}
	return nil
}
