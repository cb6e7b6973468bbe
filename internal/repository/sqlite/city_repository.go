package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/repository"
)

type CityRepository struct {
	db *sql.DB
}

func NewCityRepository(db *sql.DB) repository.CityRepository {
	return &CityRepository{db: db}
}

// ListByUser returns the user's cities in insertion order.
func (r *CityRepository) ListByUser(ctx context.Context, userID int64) ([]domain.City, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, country
FROM cities
WHERE user_id = ?
ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var city domain.City
		if err := rows.Scan(&city.ID, &city.UserID, &city.Name, &city.Country); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

func (r *CityRepository) Exists(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (
	SELECT 1 FROM cities WHERE user_id = ? AND LOWER(name) = LOWER(?)
)`, userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check city exists: %w", err)
	}
	return exists, nil
}

// Add inserts the city unless the owner already has one with the same
// case-insensitive name. Check and insert are one statement.
func (r *CityRepository) Add(ctx context.Context, city *domain.City) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO cities (user_id, name, country)
SELECT ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM cities WHERE user_id = ? AND LOWER(name) = LOWER(?)
)`,
		city.UserID,
		city.Name,
		city.Country,
		city.UserID,
		city.Name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert city: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("city rows affected: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("insert city %q: %w", city.Name, repository.ErrDuplicateCity)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("city last insert id: %w", err)
	}
	city.ID = id
	return id, nil
}

// Delete removes the city only when it belongs to userID and reports whether a row went away.
func (r *CityRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cities WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete city: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("city rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *CityRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cities: %w", err)
	}
	return n, nil
}
