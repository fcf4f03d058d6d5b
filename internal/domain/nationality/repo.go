package nationality

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Nationality, error)
	List(ctx context.Context, limit, offset int) ([]*Nationality, int, error)
	Create(ctx context.Context, n *Nationality) error
	Update(ctx context.Context, n *Nationality) error
	Delete(ctx context.Context, id int) error
	// NameTaken reports whether any row uses value as its default name or as
	// any locale override. excludeID skips one row (for updates); pass 0 on
	// create.
	NameTaken(ctx context.Context, value string, excludeID int) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}
