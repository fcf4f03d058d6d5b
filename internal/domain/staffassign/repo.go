package staffassign

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Asset, int, error)
	Create(ctx context.Context, a *Asset) error
	Update(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
	BGAssetIDExists(ctx context.Context, bgAssetID string) (bool, error)
}
