package insurance

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Policy, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Policy, int, error)
	Create(ctx context.Context, p *Policy) error
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id int) error
	PolicyNumberTaken(ctx context.Context, number string, excludeID int) (bool, error)
}
