package medorg

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Organization, error)
	List(ctx context.Context, limit, offset int) ([]*Organization, int, error)
	Create(ctx context.Context, o *Organization) error
	Update(ctx context.Context, o *Organization) error
	Delete(ctx context.Context, id int) error
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	CodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
