package patientdiagnosis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Record, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error)
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id int) error
	TripleExists(ctx context.Context, patientID uuid.UUID, diagnosisID int, date time.Time, excludeID int) (bool, error)
}
