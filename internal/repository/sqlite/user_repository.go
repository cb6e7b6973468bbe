package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password, role)
VALUES (?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		string(user.Role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %q: %w", user.Username, repository.ErrDuplicateUsername)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password, role
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password, role
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) ListWithCityCounts(ctx context.Context) ([]domain.UserCityCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.username, u.role, COUNT(c.id)
FROM users u
LEFT JOIN cities c ON c.user_id = u.id
GROUP BY u.id
ORDER BY u.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query user city counts: %w", err)
	}
	defer rows.Close()

	var out []domain.UserCityCount
	for rows.Next() {
		var (
			item domain.UserCityCount
			role string
		)
		if err := rows.Scan(&item.User.ID, &item.User.Username, &role, &item.CityCount); err != nil {
			return nil, fmt.Errorf("scan user city count: %w", err)
		}
		item.User.Role = domain.Role(role)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user city counts: %w", err)
	}
	return out, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&role,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}
