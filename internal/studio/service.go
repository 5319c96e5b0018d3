package studio

import (
	"context"
	"errors"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrCoachNotFound    = errors.New("coach not found")
)

type Service interface {
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error)
	GetAllLocations(ctx context.Context) ([]Location, error)
	GetLocationByID(ctx context.Context, id int) (*Location, error)
	CreateCoach(ctx context.Context, locationID int, req CreateCoachRequest) (*Coach, error)
	GetCoachByID(ctx context.Context, id int) (*Coach, error)
	ListCoaches(ctx context.Context, locationID int) ([]Coach, error)
	SetCoachActive(ctx context.Context, id int, active bool) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	return s.repo.CreateLocation(ctx, req.Name, req.Address, req.Timezone)
}

func (s *service) GetAllLocations(ctx context.Context) ([]Location, error) {
	return s.repo.GetAllLocations(ctx)
}

func (s *service) GetLocationByID(ctx context.Context, id int) (*Location, error) {
	location, err := s.repo.GetLocationByID(ctx, id)
	if err != nil {
		return nil, ErrLocationNotFound
	}
	return location, nil
}

func (s *service) CreateCoach(ctx context.Context, locationID int, req CreateCoachRequest) (*Coach, error) {
	_, err := s.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, ErrLocationNotFound
	}

	return s.repo.CreateCoach(ctx, locationID, req.Name, req.Email)
}

func (s *service) GetCoachByID(ctx context.Context, id int) (*Coach, error) {
	coach, err := s.repo.GetCoachByID(ctx, id)
	if err != nil {
		return nil, ErrCoachNotFound
	}
	return coach, nil
}

func (s *service) ListCoaches(ctx context.Context, locationID int) ([]Coach, error) {
	_, err := s.repo.GetLocationByID(ctx, locationID)
	if err != nil {
		return nil, ErrLocationNotFound
	}

	return s.repo.ListCoachesByLocation(ctx, locationID)
}

func (s *service) SetCoachActive(ctx context.Context, id int, active bool) error {
	err := s.repo.SetCoachActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, ErrCoachNotFoundOrUnchanged) {
			return ErrCoachNotFound
		}
		return err
	}
	return nil
}
