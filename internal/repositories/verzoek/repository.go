// Package verzoek provides database operations for verzoeken.
package verzoek

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/identificatie"
	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

const tableName = "verzoeken"

// Link is one of the two self references of a verzoek.
type Link string

const (
	LinkInTeTrekken Link = "in_te_trekken_verzoek_uuid"
	LinkAangevulde  Link = "aangevulde_verzoek_uuid"
)

var columns = []string{
	"id", "uuid", "bronorganisatie", "registratiedatum", "tekst", "voorkeurskanaal",
	"identificatie", "externe_identificatie", "status",
	"in_te_trekken_verzoek_uuid", "aangevulde_verzoek_uuid",
}

// the reverse links are derived from the forward links of other verzoeken
var reverseLinkColumns = []string{
	"(SELECT w.uuid FROM verzoeken w WHERE w.in_te_trekken_verzoek_uuid = v.uuid ORDER BY w.id LIMIT 1) AS intrekkende_verzoek_uuid",
	"(SELECT w.uuid FROM verzoeken w WHERE w.aangevulde_verzoek_uuid = v.uuid ORDER BY w.id LIMIT 1) AS aanvullende_verzoek_uuid",
}

type row struct {
	models.Verzoek
	Intrekkende *uuid.UUID `db:"intrekkende_verzoek_uuid"`
	Aanvullende *uuid.UUID `db:"aanvullende_verzoek_uuid"`
}

func (r row) toModel() models.Verzoek {
	v := r.Verzoek
	v.IntrekkendeVerzoek = r.Intrekkende
	v.AanvullendeVerzoek = r.Aanvullende
	return v
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	now    func() time.Time
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func selectColumns() []string {
	cols := make([]string, 0, len(columns)+len(reverseLinkColumns))
	for _, c := range columns {
		cols = append(cols, "v."+c)
	}
	return append(cols, reverseLinkColumns...)
}

// Create stores v. When v has no identificatie one is generated from the highest sequence of the
// organization in the registration year, under an advisory lock held until commit.
func (r *Repository) Create(ctx context.Context, v models.Verzoek) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.Create")
	defer span.End()

	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	if v.Registratiedatum.IsZero() {
		v.Registratiedatum = r.now().UTC()
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":          "Create",
		"uuid":            v.UUID,
		"bronorganisatie": v.Bronorganisatie,
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verzoek")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if v.Identificatie == "" {
		v.Identificatie, err = r.nextIdentificatie(ctx, tx, v.Bronorganisatie, v.Registratiedatum.Year())
		if err != nil {
			log.WithError(err).Error("Failed to generate identificatie")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verzoek")
		}
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols(columns[1:]...)
	ib.Values(v.UUID, v.Bronorganisatie, v.Registratiedatum, v.Tekst, v.Voorkeurskanaal,
		v.Identificatie, v.ExterneIdentificatie, v.Status,
		v.InTeTrekkenVerzoek, v.AangevuldeVerzoek)
	ib.Returning("id")

	query, args := ib.Build()
	if err := tx.GetContext(ctx, &v.ID, query, args...); err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok && constraint == "verzoeken_bronorganisatie_identificatie_key" {
			return nil, identificatieNietUniek()
		}
		log.WithError(err).Error("Failed to create verzoek")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verzoek")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verzoek")
	}

	log.WithFields(map[string]any{"identificatie": v.Identificatie}).Info("Created verzoek")
	return r.Get(ctx, v.UUID)
}

func (r *Repository) nextIdentificatie(ctx context.Context, q database.Querier, bronorganisatie string, year int) (string, error) {
	lockKey := fmt.Sprintf("verzoeken:identificatie:%s:%d", bronorganisatie, year)
	if _, err := q.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey); err != nil {
		return "", err
	}

	sb := database.NewSelectBuilder()
	sb.Select("identificatie")
	sb.From(tableName)
	sb.Where(
		sb.Equal("bronorganisatie", bronorganisatie),
		// custom identificaties may share the prefix and would sort above generated ones
		"identificatie ~ "+sb.Var(identificatie.Pattern(year)),
	)
	sb.OrderBy("identificatie").Desc()
	sb.Limit(1)

	query, args := sb.Build()
	var existing []string
	if err := q.SelectContext(ctx, &existing, query, args...); err != nil {
		return "", err
	}

	return identificatie.Next(year, existing...), nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(selectColumns()...)
	sb.From(tableName + " v")
	sb.Where(sb.Equal("v.uuid", id))

	query, args := sb.Build()

	var result row
	err := r.db.Querier(ctx).GetContext(ctx, &result, query, args...)
	if database.IsNotFound(err) {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get verzoek")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get verzoek")
	}

	v := result.toModel()
	return &v, nil
}

func (r *Repository) List(ctx context.Context, filter models.VerzoekFilter) (models.PageResult[models.Verzoek], error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.List")
	defer span.End()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName + " v")
	applyFilter(countSb, filter)
	countQuery, countArgs := countSb.Build()

	var total int
	if err := r.db.Querier(ctx).GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count verzoeken")
		return models.PageResult[models.Verzoek]{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list verzoeken")
	}

	sb := database.NewSelectBuilder()
	sb.Select(selectColumns()...)
	sb.From(tableName + " v")
	applyFilter(sb, filter)
	sb.OrderBy("v.id")
	sb.Page(filter.Page.Number, filter.Page.Size)

	query, args := sb.Build()

	var rows []row
	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list verzoeken")
		return models.PageResult[models.Verzoek]{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list verzoeken")
	}

	items := make([]models.Verzoek, 0, len(rows))
	for _, rw := range rows {
		items = append(items, rw.toModel())
	}
	return models.PageResult[models.Verzoek]{Count: total, Items: items}, nil
}

func applyFilter(sb *database.SelectBuilder, f models.VerzoekFilter) {
	var conds []string
	equal := func(col, value string) {
		if value != "" {
			conds = append(conds, sb.Equal(col, value))
		}
	}
	equal("v.bronorganisatie", f.Bronorganisatie)
	equal("v.identificatie", f.Identificatie)
	equal("v.externe_identificatie", f.ExterneIdentificatie)
	equal("v.status", string(f.Status))
	equal("v.voorkeurskanaal", f.Voorkeurskanaal)
	equal("v.tekst", f.Tekst)

	if f.Registratiedatum != nil {
		conds = append(conds, sb.Equal("v.registratiedatum", *f.Registratiedatum))
	}
	if f.RegistratiedatumGT != nil {
		conds = append(conds, sb.GreaterThan("v.registratiedatum", *f.RegistratiedatumGT))
	}
	if f.RegistratiedatumGTE != nil {
		conds = append(conds, sb.GreaterEqualThan("v.registratiedatum", *f.RegistratiedatumGTE))
	}
	if f.RegistratiedatumLT != nil {
		conds = append(conds, sb.LessThan("v.registratiedatum", *f.RegistratiedatumLT))
	}
	if f.RegistratiedatumLTE != nil {
		conds = append(conds, sb.LessEqualThan("v.registratiedatum", *f.RegistratiedatumLTE))
	}

	if f.InTeTrekkenVerzoek != nil {
		conds = append(conds, sb.Equal("v.in_te_trekken_verzoek_uuid", *f.InTeTrekkenVerzoek))
	}
	if f.AangevuldeVerzoek != nil {
		conds = append(conds, sb.Equal("v.aangevulde_verzoek_uuid", *f.AangevuldeVerzoek))
	}
	if f.IntrekkendeVerzoek != nil {
		conds = append(conds, sb.Exists(reverseLinkQuery(LinkInTeTrekken, *f.IntrekkendeVerzoek)))
	}
	if f.AanvullendeVerzoek != nil {
		conds = append(conds, sb.Exists(reverseLinkQuery(LinkAangevulde, *f.AanvullendeVerzoek)))
	}

	if len(conds) > 0 {
		sb.Where(conds...)
	}
}

// reverseLinkQuery selects the successor id whose link column points at the outer verzoek.
func reverseLinkQuery(link Link, successor uuid.UUID) *database.SelectBuilder {
	sub := database.NewSelectBuilder()
	sub.Select("1")
	sub.From(tableName + " w")
	sub.Where(
		sub.Equal("w.uuid", successor),
		fmt.Sprintf("w.%s = v.uuid", link),
	)
	return sub
}

// Update writes the mutable fields of v.
func (r *Repository) Update(ctx context.Context, v models.Verzoek) (*models.Verzoek, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(
		ub.Assign("bronorganisatie", v.Bronorganisatie),
		ub.Assign("registratiedatum", v.Registratiedatum),
		ub.Assign("tekst", v.Tekst),
		ub.Assign("voorkeurskanaal", v.Voorkeurskanaal),
		ub.Assign("externe_identificatie", v.ExterneIdentificatie),
		ub.Assign("status", v.Status),
	)
	ub.Where(ub.Equal("uuid", v.UUID))

	query, args := ub.Build()
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok && constraint == "verzoeken_bronorganisatie_identificatie_key" {
			return nil, identificatieNietUniek()
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update verzoek")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update verzoek")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"uuid": v.UUID}).Info("Updated verzoek")
	return r.Get(ctx, v.UUID)
}

// Delete removes the verzoek. Relations and successors go with it through the foreign keys.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(tableName)
	db.Where(db.Equal("uuid", id))

	query, args := db.Build()
	res, err := r.db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete verzoek")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete verzoek")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "verzoek not found")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"uuid": id}).Info("Deleted verzoek")
	return nil
}

// IdentificatieInUse reports whether another verzoek of bronorganisatie carries identificatie.
func (r *Repository) IdentificatieInUse(ctx context.Context, bronorganisatie, ident string, exclude uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.IdentificatieInUse")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(tableName)
	sb.Where(
		sb.Equal("bronorganisatie", bronorganisatie),
		sb.Equal("identificatie", ident),
		sb.NotEqual("uuid", exclude),
	)

	query, args := sb.Build()
	var count int
	if err := r.db.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check identificatie")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check identificatie")
	}
	return count > 0, nil
}

// Successor returns the verzoek that points at target through link, if any.
func (r *Repository) Successor(ctx context.Context, link Link, target uuid.UUID) (*uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.Successor")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("uuid")
	sb.From(tableName)
	sb.Where(sb.Equal(string(link), target))
	sb.OrderBy("id")
	sb.Limit(1)

	query, args := sb.Build()
	var ids []uuid.UUID
	if err := r.db.Querier(ctx).SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to look up successor")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up verzoek")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// CascadeIDs returns id and every verzoek that a delete of id removes through the self references.
func (r *Repository) CascadeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	ctx, span := tracing.StartSpan(ctx, "verzoek.Repository.CascadeIDs")
	defer span.End()

	query := `
		WITH RECURSIVE cascade(uuid) AS (
			SELECT uuid FROM verzoeken WHERE uuid = $1
			UNION
			SELECT v.uuid FROM verzoeken v
			JOIN cascade c ON v.in_te_trekken_verzoek_uuid = c.uuid OR v.aangevulde_verzoek_uuid = c.uuid
		)
		SELECT uuid FROM cascade
	`

	var ids []uuid.UUID
	if err := r.db.Querier(ctx).SelectContext(ctx, &ids, query, id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to resolve delete cascade")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete verzoek")
	}
	return ids, nil
}

func identificatieNietUniek() error {
	return apierrors.NewFieldError("identificatie", apierrors.CodeIdentificatieNietUniek,
		"Deze identificatie bestaat al voor deze bronorganisatie")
}
