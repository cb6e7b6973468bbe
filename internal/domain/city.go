package domain

import (
	"errors"
	"strings"
)

// City is a saved location owned by exactly one user.
type City struct {
	ID      int64
	UserID  int64
	Name    string
	Country string
}

// NewCity validates and normalizes a city entry before it is stored.
// The country code is optional and always kept upper-case.
func NewCity(userID int64, name, country string) (*City, error) {
	if userID <= 0 {
		return nil, errors.New("city owner is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("city name is required")
	}
	return &City{
		UserID:  userID,
		Name:    name,
		Country: strings.ToUpper(strings.TrimSpace(country)),
	}, nil
}
