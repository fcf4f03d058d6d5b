package nationality

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

const cols = `id, name, name_locales, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Nationality, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM nationality WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Nationality, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM nationality`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM nationality ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) Create(ctx context.Context, n *Nationality) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO nationality (name, name_locales)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		n.Name, n.NameLocales,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return mapUniqueErr(err, n.Name)
}

func (r *repoPG) Update(ctx context.Context, n *Nationality) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE nationality SET name = $2, name_locales = $3, updated_at = NOW()
		WHERE id = $1`,
		n.ID, n.Name, n.NameLocales,
	)
	return mapUniqueErr(err, n.Name)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM nationality WHERE id = $1`, id)
	return err
}

func (r *repoPG) NameTaken(ctx context.Context, value string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM nationality
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
		`SELECT EXISTS (SELECT 1 FROM nationality WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// mapUniqueErr converts a unique-index violation into the typed conflict
// error; the pre-insert checks make this a backstop for concurrent writers.
func mapUniqueErr(err error, value string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("nationality %q already exists", value)
	}
	return err
}

func scanOne(row pgx.Row) (*Nationality, error) {
	var n Nationality
	if err := row.Scan(&n.ID, &n.Name, &n.NameLocales, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func collect(rows pgx.Rows, total int) ([]*Nationality, int, error) {
	var items []*Nationality
	for rows.Next() {
		var n Nationality
		if err := rows.Scan(&n.ID, &n.Name, &n.NameLocales, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &n)
	}
	return items, total, rows.Err()
}
