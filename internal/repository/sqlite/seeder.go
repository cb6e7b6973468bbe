package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"weather-dashboard/internal/repository"
)

type Seeder struct {
	db *sql.DB
}

func NewSeeder(db *sql.DB) repository.Seeder {
	return &Seeder{db: db}
}

// SeedIfEmpty inserts the accounts and their cities when the users table is
// empty. It reports whether anything was inserted.
func (s *Seeder) SeedIfEmpty(ctx context.Context, accounts []repository.SeedAccount) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	var users int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if users > 0 {
		return false, nil
	}

	for _, account := range accounts {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password, role)
VALUES (?, ?, ?)`,
			account.Username,
			account.PasswordHash,
			string(account.Role),
		)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", account.Username, err)
		}
		userID, err := res.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("seed user id: %w", err)
		}

		for _, city := range account.Cities {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO cities (user_id, name, country)
VALUES (?, ?, ?)`,
				userID,
				city.Name,
				city.Country,
			); err != nil {
				return false, fmt.Errorf("seed city %s: %w", city.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}
