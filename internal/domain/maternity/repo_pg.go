package maternity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/db"
)

type repoPG struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, bg_asset_id, patient_id, status, delivery_status, diagnoses, note,
	has_confirm, has_refusal, stay_from, stay_to, delivery_outcome, mother_data,
	created_at, updated_at`

func scanAsset(row pgx.Row) (*Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.BGAssetID, &a.PatientID, &a.Status, &a.DeliveryStatus,
		&a.Diagnoses, &a.Note, &a.HasConfirm, &a.HasRefusal,
		&a.StayFrom, &a.StayTo, &a.DeliveryOutcome, &a.Mother,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	return scanAsset(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM maternity_asset WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Asset, int, error) {
	base := r.builder.Select().From("maternity_asset")
	if f.PatientID != uuid.Nil {
		base = base.Where(squirrel.Eq{"patient_id": f.PatientID})
	}
	if f.Status != "" {
		base = base.Where(squirrel.Eq{"status": f.Status})
	}
	if f.DeliveryStatus != "" {
		base = base.Where(squirrel.Eq{"delivery_status": f.DeliveryStatus})
	}
	if f.StayFrom != nil {
		base = base.Where(squirrel.GtOrEq{"stay_from": *f.StayFrom})
	}
	if f.StayTo != nil {
		base = base.Where(squirrel.LtOrEq{"stay_from": *f.StayTo})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := base.Columns(cols).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, a *Asset) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO maternity_asset (id, bg_asset_id, patient_id, status, delivery_status,
			diagnoses, note, has_confirm, has_refusal, stay_from, stay_to, delivery_outcome, mother_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		a.ID, a.BGAssetID, a.PatientID, a.Status, a.DeliveryStatus,
		a.Diagnoses, a.Note, a.HasConfirm, a.HasRefusal,
		a.StayFrom, a.StayTo, a.DeliveryOutcome, a.Mother,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapUniqueErr(err, a.BGAssetID)
}

func (r *repoPG) Update(ctx context.Context, a *Asset) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE maternity_asset
		SET status = $2, delivery_status = $3, diagnoses = $4, note = $5,
		    has_confirm = $6, has_refusal = $7, stay_from = $8, stay_to = $9,
		    delivery_outcome = $10, mother_data = $11, updated_at = $12
		WHERE id = $1`,
		a.ID, a.Status, a.DeliveryStatus, a.Diagnoses, a.Note,
		a.HasConfirm, a.HasRefusal, a.StayFrom, a.StayTo,
		a.DeliveryOutcome, a.Mother, a.UpdatedAt,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM maternity_asset WHERE id = $1`, id)
	return err
}

func (r *repoPG) BGAssetIDExists(ctx context.Context, bgAssetID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM maternity_asset WHERE bg_asset_id = $1)`, bgAssetID).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error, bgAssetID *string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if bgAssetID != nil {
			return apperr.UniqueViolation("asset with bg_asset_id %q already exists", *bgAssetID)
		}
		return apperr.UniqueViolation("asset already exists")
	}
	return err
}
