package domain

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account of the dashboard.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// IsAdmin reports whether the user may open the admin view.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser builds a User ready to be persisted. An empty role defaults to RoleUser.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}
	if passwordHash == "" {
		return nil, errors.New("password hash is required")
	}
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, errors.New("unknown role " + string(role))
	}
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}, nil
}

// UserCityCount is one row of the admin usage summary.
type UserCityCount struct {
	User      User
	CityCount int
}
