package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when the username is already registered.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateCity is returned when the user already saved a city with the same name.
	ErrDuplicateCity = errors.New("city already saved")
)
