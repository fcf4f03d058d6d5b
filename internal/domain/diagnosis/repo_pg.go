package diagnosis

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

const cols = `id, code, name, name_locales, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Diagnosis, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM diagnosis WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Diagnosis, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM diagnosis WHERE code = $1`, code))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Diagnosis, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM diagnosis`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM diagnosis ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.NameLocales, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, d *Diagnosis) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diagnosis (code, name, name_locales)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		d.Code, d.Name, d.NameLocales,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapUniqueErr(err, d.Code)
}

func (r *repoPG) Update(ctx context.Context, d *Diagnosis) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diagnosis SET code = $2, name = $3, name_locales = $4, updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Code, d.Name, d.NameLocales,
	)
	return mapUniqueErr(err, d.Code)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM diagnosis WHERE id = $1`, id)
	return err
}

func (r *repoPG) NameTaken(ctx context.Context, value string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM diagnosis
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
		`SELECT EXISTS (SELECT 1 FROM diagnosis WHERE code = $1 AND id <> $2)`,
		code, excludeID).Scan(&taken)
	return taken, err
}

func (r *repoPG) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM diagnosis WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error, code string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("diagnosis %q already exists", code)
	}
	return err
}

func scanOne(row pgx.Row) (*Diagnosis, error) {
	var d Diagnosis
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &d.NameLocales, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
