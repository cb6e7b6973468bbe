package repository

import (
	"context"

	"weather-dashboard/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListWithCityCounts(ctx context.Context) ([]domain.UserCityCount, error)
}

// SeedAccount describes an account inserted on first startup, together with its cities.
type SeedAccount struct {
	Username     string
	PasswordHash string
	Role         domain.Role
	Cities       []SeedCity
}

type SeedCity struct {
	Name    string
	Country string
}

// Seeder populates an empty store with demo data.
type Seeder interface {
	SeedIfEmpty(ctx context.Context, accounts []SeedAccount) (bool, error)
}
