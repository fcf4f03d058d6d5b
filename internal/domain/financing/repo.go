package financing

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Source, error)
	List(ctx context.Context, limit, offset int) ([]*Source, int, error)
	Create(ctx context.Context, s *Source) error
	Update(ctx context.Context, s *Source) error
	Delete(ctx context.Context, id int) error
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	CodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
