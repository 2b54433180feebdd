// Package relation provides database operations for the five relation resources of a verzoek.
// Each table links a verzoek to one remote resource, its counterpart.
package relation

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

// Definition maps a relation type onto its table.
type Definition[T any] struct {
	Name              string
	Table             string
	CounterpartColumn string
	// Columns are inserted in order from the values returned by Values. They exclude id.
	Columns []string
	Values  func(T) []any
	// UniqueFields names the request fields of the (verzoek, counterpart) constraint.
	UniqueFields []string
}

type Repository[T any] struct {
	def    Definition[T]
	db     database.DB
	logger ectologger.Logger
}

func New[T any](def Definition[T], db database.DB, logger ectologger.Logger) *Repository[T] {
	return &Repository[T]{def: def, db: db, logger: logger}
}

func (r *Repository[T]) selectColumns() []string {
	return append([]string{"id"}, r.def.Columns...)
}

func (r *Repository[T]) Create(ctx context.Context, item T) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":   "Create",
		"relation": r.def.Name,
	})

	ib := database.NewInsertBuilder()
	ib.InsertInto(r.def.Table)
	ib.Cols(r.def.Columns...)
	ib.Values(r.def.Values(item)...)
	ib.Returning(r.selectColumns()...)

	query, args := ib.Build()

	var created T
	if err := r.db.Querier(ctx).GetContext(ctx, &created, query, args...); err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, apierrors.NewNonFieldErrorf(apierrors.CodeUnique,
				"De velden %s moeten een unieke set zijn.", strings.Join(r.def.UniqueFields, ", "))
		}
		if database.IsForeignKeyViolation(err) {
			return nil, apierrors.NewFieldError("verzoek", apierrors.CodeDoesNotExist, "Het verzoek bestaat niet.")
		}
		log.WithError(err).Error("Failed to create relation")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create "+r.def.Name)
	}

	log.Info("Created relation")
	return &created, nil
}

func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(r.selectColumns()...)
	sb.From(r.def.Table)
	sb.Where(sb.Equal("uuid", id))

	query, args := sb.Build()

	var item T
	err := r.db.Querier(ctx).GetContext(ctx, &item, query, args...)
	if database.IsNotFound(err) {
		return nil, httperror.NewHTTPError(http.StatusNotFound, r.def.Name+" not found")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("Failed to get %s", r.def.Name)
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get "+r.def.Name)
	}
	return &item, nil
}

func (r *Repository[T]) List(ctx context.Context, filter models.RelationFilter) (models.PageResult[T], error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Repository.List")
	defer span.End()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(r.def.Table)
	r.applyFilter(countSb, filter)
	countQuery, countArgs := countSb.Build()

	var total int
	if err := r.db.Querier(ctx).GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("Failed to count %s", r.def.Name)
		return models.PageResult[T]{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list "+r.def.Name)
	}

	sb := database.NewSelectBuilder()
	sb.Select(r.selectColumns()...)
	sb.From(r.def.Table)
	r.applyFilter(sb, filter)
	sb.OrderBy("id")
	sb.Page(filter.Page.Number, filter.Page.Size)

	query, args := sb.Build()

	items := []T{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("Failed to list %s", r.def.Name)
		return models.PageResult[T]{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list "+r.def.Name)
	}

	return models.PageResult[T]{Count: total, Items: items}, nil
}

// ListByVerzoeken returns every relation of the given verzoeken.
func (r *Repository[T]) ListByVerzoeken(ctx context.Context, verzoeken []uuid.UUID) ([]T, error) {
	ctx, span := tracing.StartSpan(ctx, "relation.Repository.ListByVerzoeken")
	defer span.End()

	items := []T{}
	if len(verzoeken) == 0 {
		return items, nil
	}

	sb := database.NewSelectBuilder()
	sb.Select(r.selectColumns()...)
	sb.From(r.def.Table)
	sb.Where(sb.In("verzoek_uuid", uuidArgs(verzoeken)...))
	sb.OrderBy("id")

	query, args := sb.Build()
	if err := r.db.Querier(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("Failed to list %s by verzoeken", r.def.Name)
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list "+r.def.Name)
	}
	return items, nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "relation.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(r.def.Table)
	db.Where(db.Equal("uuid", id))

	query, args := db.Build()
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("Failed to delete %s", r.def.Name)
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete "+r.def.Name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, r.def.Name+" not found")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"relation": r.def.Name,
		"uuid":     id,
	}).Info("Deleted relation")
	return nil
}

func (r *Repository[T]) applyFilter(sb *database.SelectBuilder, f models.RelationFilter) {
	var conds []string
	if f.Verzoek != nil {
		conds = append(conds, sb.Equal("verzoek_uuid", *f.Verzoek))
	}
	if f.Counterpart != "" {
		conds = append(conds, sb.Equal(r.def.CounterpartColumn, f.Counterpart))
	}
	if f.ProductCode != "" {
		conds = append(conds, sb.Equal("product_code", f.ProductCode))
	}
	if len(f.Exclude) > 0 {
		conds = append(conds, sb.NotIn("uuid", uuidArgs(f.Exclude)...))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
}

func uuidArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
