package studio

import "context"

type Repository interface {
	CreateLocation(ctx context.Context, name, address, timezone string) (*Location, error)
	GetAllLocations(ctx context.Context) ([]Location, error)
	GetLocationByID(ctx context.Context, id int) (*Location, error)
	CreateCoach(ctx context.Context, locationID int, name, email string) (*Coach, error)
	GetCoachByID(ctx context.Context, id int) (*Coach, error)
	ListCoachesByLocation(ctx context.Context, locationID int) ([]Coach, error)
	SetCoachActive(ctx context.Context, id int, active bool) error
}
