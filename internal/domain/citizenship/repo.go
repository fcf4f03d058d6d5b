package citizenship

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Citizenship, error)
	List(ctx context.Context, limit, offset int) ([]*Citizenship, int, error)
	Create(ctx context.Context, ct *Citizenship) error
	Update(ctx context.Context, ct *Citizenship) error
	Delete(ctx context.Context, id int) error
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	CodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
