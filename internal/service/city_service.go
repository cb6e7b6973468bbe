package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/repository"
	"weather-dashboard/internal/weather"
)

// ErrEmptyCityName is returned when the submitted city name is blank.
var ErrEmptyCityName = errors.New("city name is required")

// CityWeather is one dashboard row: the saved city and the outcome of its lookup.
type CityWeather struct {
	City     domain.City
	Snapshot weather.Snapshot
	Err      error
}

// AdminSummary aggregates usage across all accounts.
type AdminSummary struct {
	Users       []domain.UserCityCount
	TotalCities int
}

// CityService coordinates saved cities and their weather lookups.
type CityService interface {
	Dashboard(ctx context.Context, userID int64) ([]CityWeather, error)
	AddCity(ctx context.Context, userID int64, name, country string) (bool, error)
	DeleteCity(ctx context.Context, id, userID int64) (bool, error)
	Summary(ctx context.Context) (*AdminSummary, error)
}

type cityService struct {
	cities  repository.CityRepository
	users   repository.UserRepository
	weather weather.Client
	logger  logrus.FieldLogger
}

func NewCityService(cities repository.CityRepository, users repository.UserRepository, client weather.Client, logger logrus.FieldLogger) CityService {
	if logger == nil {
		logger = logrus.New()
	}
	return &cityService{
		cities:  cities,
		users:   users,
		weather: client,
		logger:  logger,
	}
}

// Dashboard looks up every saved city one after another, keeping the stored order.
// A failed lookup is reported on its row and does not affect the others.
func (s *cityService) Dashboard(ctx context.Context, userID int64) ([]CityWeather, error) {
	cities, err := s.cities.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]CityWeather, len(cities))
	for i, city := range cities {
		snap, err := s.weather.Current(ctx, city.Name, city.Country)
		rows[i] = CityWeather{City: city, Snapshot: snap, Err: err}
		if err != nil {
			s.logger.WithFields(logrus.Fields{"city": city.Name, "user_id": userID}).Warnf("weather lookup: %v", err)
		}
	}
	return rows, nil
}

// AddCity saves a city after confirming the provider knows it. The provider's
// canonical name is stored. Lookup failures are returned as *weather.LookupError
// and nothing is stored. It reports false when the city was already saved.
func (s *cityService) AddCity(ctx context.Context, userID int64, name, country string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyCityName
	}
	country = strings.ToUpper(strings.TrimSpace(country))

	snap, err := s.weather.Current(ctx, name, country)
	if err != nil {
		return false, err
	}

	city, err := domain.NewCity(userID, snap.City, country)
	if err != nil {
		return false, fmt.Errorf("new city: %w", err)
	}

	exists, err := s.cities.Exists(ctx, userID, city.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := s.cities.Add(ctx, city); err != nil {
		if errors.Is(err, repository.ErrDuplicateCity) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *cityService) DeleteCity(ctx context.Context, id, userID int64) (bool, error) {
	deleted, err := s.cities.Delete(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if !deleted {
		s.logger.WithFields(logrus.Fields{"city_id": id, "user_id": userID}).Debug("delete city: no matching row")
	}
	return deleted, nil
}

func (s *cityService) Summary(ctx context.Context) (*AdminSummary, error) {
	users, err := s.users.ListWithCityCounts(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.cities.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminSummary{Users: users, TotalCities: total}, nil
}
