package diagnosis

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Diagnosis, error)
	GetByCode(ctx context.Context, code string) (*Diagnosis, error)
	List(ctx context.Context, limit, offset int) ([]*Diagnosis, int, error)
	Create(ctx context.Context, d *Diagnosis) error
	Update(ctx context.Context, d *Diagnosis) error
	Delete(ctx context.Context, id int) error
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	CodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
