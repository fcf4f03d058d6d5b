package medorg

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

const cols = `id, code, name, name_locales, address, address_locales, org_type, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Organization, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM medical_organization WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_organization`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM medical_organization ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Code, &o.Name, &o.NameLocales,
			&o.Address, &o.AddressLocales, &o.Type, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &o)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, o *Organization) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_organization (code, name, name_locales, address, address_locales, org_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		o.Code, o.Name, o.NameLocales, o.Address, o.AddressLocales, o.Type,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return mapUniqueErr(err, o.Code)
}

func (r *repoPG) Update(ctx context.Context, o *Organization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_organization
		SET code = $2, name = $3, name_locales = $4, address = $5, address_locales = $6,
		    org_type = $7, updated_at = NOW()
		WHERE id = $1`,
		o.ID, o.Code, o.Name, o.NameLocales, o.Address, o.AddressLocales, o.Type,
	)
	return mapUniqueErr(err, o.Code)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_organization WHERE id = $1`, id)
	return err
}

func (r *repoPG) NameTaken(ctx context.Context, value string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM medical_organization
			WHERE id <> $2 AND (
				name = $1 OR EXISTS (
					SELECT 1 FROM jsonb_each_text(COALESCE(name_locales, '{}'::jsonb)) kv
					WHERE kv.value = $1
				)
			)
		)`, value, excludeID).Scan(&taken)
	return taken, err
}

func (r *repoPG) CodeTaken(ctx context.Context, code string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medical_organization WHERE code = $1 AND id <> $2)`,
		code, excludeID).Scan(&taken)
	return taken, err
}

func (r *repoPG) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medical_organization WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error, code string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("medical organization %q already exists", code)
	}
	return err
}

func scanOne(row pgx.Row) (*Organization, error) {
	var o Organization
	if err := row.Scan(&o.ID, &o.Code, &o.Name, &o.NameLocales,
		&o.Address, &o.AddressLocales, &o.Type, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
