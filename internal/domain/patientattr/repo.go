package patientattr

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Attribute, error)
	List(ctx context.Context, limit, offset int) ([]*Attribute, int, error)
	Create(ctx context.Context, a *Attribute) error
	Update(ctx context.Context, a *Attribute) error
	Delete(ctx context.Context, id int) error
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
