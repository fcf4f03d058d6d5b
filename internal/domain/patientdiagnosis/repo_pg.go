package patientdiagnosis

import (
	"context"
	"errors"
	"time"

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

const cols = `id, patient_id, diagnosis_id, diagnosed_at, note, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id int) (*Record, error) {
	return scanOne(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM patient_diagnosis WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_diagnosis WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM patient_diagnosis WHERE patient_id = $1
		 ORDER BY diagnosed_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DiagnosisID, &rec.DiagnosedAt,
			&rec.Note, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_diagnosis (patient_id, diagnosis_id, diagnosed_at, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		rec.PatientID, rec.DiagnosisID, rec.DiagnosedAt, rec.Note,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	return mapUniqueErr(err)
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_diagnosis SET diagnosed_at = $2, note = $3, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.DiagnosedAt, rec.Note,
	)
	return mapUniqueErr(err)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_diagnosis WHERE id = $1`, id)
	return err
}

func (r *repoPG) TripleExists(ctx context.Context, patientID uuid.UUID, diagnosisID int, date time.Time, excludeID int) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM patient_diagnosis
			WHERE patient_id = $1 AND diagnosis_id = $2 AND diagnosed_at = $3 AND id <> $4
		)`, patientID, diagnosisID, date, excludeID).Scan(&exists)
	return exists, err
}

func mapUniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("diagnosis already recorded for this patient and date")
	}
	return err
}

func scanOne(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.PatientID, &rec.DiagnosisID, &rec.DiagnosedAt,
		&rec.Note, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
