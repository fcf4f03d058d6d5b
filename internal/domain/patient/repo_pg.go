package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
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

const patientCols = `id, iin, last_name, first_name, middle_name, birth_date,
	citizenship_id, nationality_id, attached_clinic_id, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := pgxscan.Get(ctx, r.conn(ctx), &p,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByIIN(ctx context.Context, iin string) (*Patient, error) {
	var p Patient
	err := pgxscan.Get(ctx, r.conn(ctx), &p,
		`SELECT `+patientCols+` FROM patient WHERE iin = $1`, iin)
	if err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	base := r.builder.Select().From("patient")
	if f.FullName != "" {
		base = base.Where(squirrel.ILike{
			"concat_ws(' ', last_name, first_name, middle_name)": "%" + f.FullName + "%",
		})
	}
	if f.IIN != "" {
		base = base.Where(squirrel.Eq{"iin": f.IIN})
	}
	if f.AttachedClinicID != 0 {
		base = base.Where(squirrel.Eq{"attached_clinic_id": f.AttachedClinicID})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := base.Columns(patientCols).
		OrderBy("last_name", "first_name").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	var items []*Patient
	if err := pgxscan.Select(ctx, r.conn(ctx), &items, listSQL, listArgs...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create writes the patient row and both join tables in one transaction so a
// failure mid-way leaves no partial patient behind.
func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO patient (id, iin, last_name, first_name, middle_name, birth_date,
				citizenship_id, nationality_id, attached_clinic_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at`,
			p.ID, p.IIN, p.LastName, p.FirstName, p.MiddleName, p.BirthDate,
			p.CitizenshipID, p.NationalityID, p.AttachedClinicID,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return mapUniqueErr(err, p.IIN)
		}
		return r.saveLinks(ctx, p)
	})
}

// Update rewrites the row and the link sets atomically, same as Create.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			UPDATE patient
			SET last_name = $2, first_name = $3, middle_name = $4, birth_date = $5,
			    citizenship_id = $6, nationality_id = $7, attached_clinic_id = $8,
			    updated_at = NOW()
			WHERE id = $1`,
			p.ID, p.LastName, p.FirstName, p.MiddleName, p.BirthDate,
			p.CitizenshipID, p.NationalityID, p.AttachedClinicID,
		)
		if err != nil {
			return mapUniqueErr(err, p.IIN)
		}
		return r.saveLinks(ctx, p)
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) IINTaken(ctx context.Context, iin string) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE iin = $1)`, iin).Scan(&taken)
	return taken, err
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) loadLinks(ctx context.Context, p *Patient) error {
	if err := pgxscan.Select(ctx, r.conn(ctx), &p.FinancingSourceIDs,
		`SELECT financing_source_id FROM patient_financing_source WHERE patient_id = $1 ORDER BY financing_source_id`,
		p.ID); err != nil {
		return fmt.Errorf("load financing sources: %w", err)
	}
	if err := pgxscan.Select(ctx, r.conn(ctx), &p.ContextAttributeIDs,
		`SELECT attribute_id FROM patient_context_attribute_link WHERE patient_id = $1 ORDER BY attribute_id`,
		p.ID); err != nil {
		return fmt.Errorf("load context attributes: %w", err)
	}
	return nil
}

// saveLinks replaces both join tables with the current link sets.
func (r *repoPG) saveLinks(ctx context.Context, p *Patient) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx,
		`DELETE FROM patient_financing_source WHERE patient_id = $1`, p.ID); err != nil {
		return err
	}
	for _, fsID := range p.FinancingSourceIDs {
		if _, err := conn.Exec(ctx,
			`INSERT INTO patient_financing_source (patient_id, financing_source_id) VALUES ($1, $2)`,
			p.ID, fsID); err != nil {
			return err
		}
	}
	if _, err := conn.Exec(ctx,
		`DELETE FROM patient_context_attribute_link WHERE patient_id = $1`, p.ID); err != nil {
		return err
	}
	for _, attrID := range p.ContextAttributeIDs {
		if _, err := conn.Exec(ctx,
			`INSERT INTO patient_context_attribute_link (patient_id, attribute_id) VALUES ($1, $2)`,
			p.ID, attrID); err != nil {
			return err
		}
	}
	return nil
}

func mapUniqueErr(err error, iin string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.UniqueViolation("patient with IIN %s already exists", iin)
	}
	return err
}
