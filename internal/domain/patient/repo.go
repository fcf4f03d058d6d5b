package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByIIN(ctx context.Context, iin string) (*Patient, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	IINTaken(ctx context.Context, iin string) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
