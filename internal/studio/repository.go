package studio

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCoachNotFoundOrUnchanged = errors.New("coach not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLocation(ctx context.Context, name, address, timezone string) (*Location, error) {
	query := `
		INSERT INTO locations (name, address, timezone)
		VALUES ($1, $2, $3)
		RETURNING id, name, address, timezone, created_at
	`

	var location Location
	err := r.db.GetContext(ctx, &location, query, name, address, timezone)
	if err != nil {
		return nil, err
	}

	return &location, nil
}

func (r *repository) GetAllLocations(ctx context.Context) ([]Location, error) {
	query := `
		SELECT id, name, address, timezone, created_at
		FROM locations
		ORDER BY created_at DESC
	`

	var locations []Location
	err := r.db.SelectContext(ctx, &locations, query)
	if err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *repository) GetLocationByID(ctx context.Context, id int) (*Location, error) {
	query := `
		SELECT id, name, address, timezone, created_at
		FROM locations
		WHERE id = $1
	`

	var location Location
	err := r.db.GetContext(ctx, &location, query, id)
	if err != nil {
		return nil, err
	}

	return &location, nil
}

func (r *repository) CreateCoach(ctx context.Context, locationID int, name, email string) (*Coach, error) {
	query := `
		INSERT INTO coaches (location_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, location_id, name, email, active, created_at
	`

	var coach Coach
	err := r.db.GetContext(ctx, &coach, query, locationID, name, email)
	if err != nil {
		return nil, err
	}

	return &coach, nil
}

func (r *repository) GetCoachByID(ctx context.Context, id int) (*Coach, error) {
	query := `
		SELECT id, location_id, name, email, active, created_at
		FROM coaches
		WHERE id = $1
	`

	var coach Coach
	err := r.db.GetContext(ctx, &coach, query, id)
	if err != nil {
		return nil, err
	}

	return &coach, nil
}

func (r *repository) ListCoachesByLocation(ctx context.Context, locationID int) ([]Coach, error) {
	query := `
		SELECT id, location_id, name, email, active, created_at
		FROM coaches
		WHERE location_id = $1
		ORDER BY name ASC
	`

	var coaches []Coach
	err := r.db.SelectContext(ctx, &coaches, query, locationID)
	if err != nil {
		return nil, err
	}

	return coaches, nil
}

func (r *repository) SetCoachActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE coaches SET active = $1 WHERE id = $2`,
		active, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCoachNotFoundOrUnchanged
	}

	return nil
}
