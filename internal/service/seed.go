package service

import (
	"fmt"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/repository"
)

type demoAccount struct {
	username string
	password string
	role     domain.Role
	cities   []repository.SeedCity
}

var demoAccounts = []demoAccount{
	{
		username: "demo",
		password: "user123",
		role:     domain.RoleUser,
		cities: []repository.SeedCity{
			{Name: "Riga", Country: "LV"},
			{Name: "London", Country: "GB"},
			{Name: "Tokyo", Country: "JP"},
		},
	},
	{
		username: "admin",
		password: "admin123",
		role:     domain.RoleAdmin,
	},
}

// DemoAccounts returns the accounts seeded into an empty store, with hashed passwords.
func DemoAccounts() ([]repository.SeedAccount, error) {
	accounts := make([]repository.SeedAccount, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		hash, err := HashPassword(a.password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.username, err)
		}
		accounts = append(accounts, repository.SeedAccount{
			Username:     a.username,
			PasswordHash: hash,
			Role:         a.role,
			Cities:       a.cities,
		})
	}
	return accounts, nil
}
