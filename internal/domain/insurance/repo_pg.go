package insurance

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

const cols = `id, patient_id, financing_source_id, policy_number, coverage, valid_from, valid_to, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Policy, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM patient_insurance WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Policy, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_insurance WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM patient_insurance WHERE patient_id = $1
		 ORDER BY valid_from DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.PatientID, &p.FinancingSourceID, &p.PolicyNumber,
			&p.Coverage, &p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, p *Policy) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_insurance (patient_id, financing_source_id, policy_number, coverage, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.PatientID, p.FinancingSourceID, p.PolicyNumber, p.Coverage, p.ValidFrom, p.ValidTo,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapUniqueErr(err, p.PolicyNumber)
}

func (r *repoPG) Update(ctx context.Context, p *Policy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_insurance
		SET financing_source_id = $2, policy_number = $3, coverage = $4,
		    valid_from = $5, valid_to = $6, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FinancingSourceID, p.PolicyNumber, p.Coverage, p.ValidFrom, p.ValidTo,
	)
	return mapUniqueErr(err, p.PolicyNumber)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_insurance WHERE id = $1`, id)
	return err
}

func (r *repoPG) PolicyNumberTaken(ctx context.Context, number string, excludeID int) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient_insurance WHERE policy_number = $1 AND id <> $2)`,
		number, excludeID).Scan(&taken)
	return taken, err
}

func mapUniqueErr(err error, number string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("policy %q already exists", number)
	}
	return err
}

func scanOne(row pgx.Row) (*Policy, error) {
	var p Policy
	if err := row.Scan(&p.ID, &p.PatientID, &p.FinancingSourceID, &p.PolicyNumber,
		&p.Coverage, &p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
