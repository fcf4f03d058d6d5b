package financing

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

func (r *repoPG) GetByID(ctx context.Context, id int) (*Source, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM financing_source WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Source, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM financing_source`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM financing_source ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.NameLocales, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, s *Source) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financing_source (code, name, name_locales)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		s.Code, s.Name, s.NameLocales,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapUniqueErr(err, s.Code)
}

func (r *repoPG) Update(ctx context.Context, s *Source) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE financing_source SET code = $2, name = $3, name_locales = $4, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Code, s.Name, s.NameLocales,
	)
	return mapUniqueErr(err, s.Code)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM financing_source WHERE id = $1`, id)
	return err
}

func (r *repoPG) NameTaken(ctx context.Context, value string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM financing_source
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
		`SELECT EXISTS (SELECT 1 FROM financing_source WHERE code = $1 AND id <> $2)`,
		code, excludeID).Scan(&taken)
	return taken, err
}

func (r *repoPG) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM financing_source WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error, value string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("financing source %q already exists", value)
	}
	return err
}

func scanOne(row pgx.Row) (*Source, error) {
	var s Source
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.NameLocales, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
