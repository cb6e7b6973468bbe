package repository

import (
	"context"

	"weather-dashboard/internal/domain"
)

// CityRepository manages the cities saved by each user.
type CityRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.City, error)
	Exists(ctx context.Context, userID int64, name string) (bool, error)
	Add(ctx context.Context, city *domain.City) (int64, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
	Count(ctx context.Context) (int, error)
}
