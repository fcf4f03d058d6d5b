package patientattr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, name, name_locales, data_type, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Attribute, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM patient_context_attribute WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Attribute, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_context_attribute`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM patient_context_attribute ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Attribute
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.ID, &a.Name, &a.NameLocales, &a.DataType, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, a *Attribute) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_context_attribute (name, name_locales, data_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		a.Name, a.NameLocales, a.DataType,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapUniqueErr(err, a.Name)
}

func (r *repoPG) Update(ctx context.Context, a *Attribute) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_context_attribute
		SET name = $2, name_locales = $3, data_type = $4, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Name, a.NameLocales, a.DataType,
	)
	return mapUniqueErr(err, a.Name)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_context_attribute WHERE id = $1`, id)
	return err
}

func (r *repoPG) NameTaken(ctx context.Context, value string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM patient_context_attribute
			WHERE id <> $2 AND (
				name = $1 OR EXISTS (
					SELECT 1 FROM jsonb_each_text(COALESCE(name_locales, '{}'::jsonb)) kv
					WHERE kv.value = $1
				)
			)
		)`, value, excludeID).Scan(&taken)
	return taken, err
}

func (r *repoPG) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient_context_attribute WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error, value string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("context attribute %q already exists", value)
	}
	return err
}

func scanOne(row pgx.Row) (*Attribute, error) {
	var a Attribute
	if err := row.Scan(&a.ID, &a.Name, &a.NameLocales, &a.DataType, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
