// Package weather looks up current conditions for a city, either from a fixed
// fixture table (demo mode) or from the OpenWeatherMap current weather API.
package weather

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DemoAPIKey selects the fixture client instead of the live provider.
const DemoAPIKey = "demo"

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	DefaultTimeout = 5 * time.Second
)

// Snapshot is the normalized weather for one city query.
type Snapshot struct {
	City     string  `json:"city"`
	Temp     int     `json:"temp"`
	Desc     string  `json:"desc"`
	Wind     float64 `json:"wind"`
	Humidity int     `json:"humidity"`
	Icon     string  `json:"icon"`
}

// Client returns either a Snapshot or a *LookupError, never both.
type Client interface {
	Current(ctx context.Context, city, country string) (Snapshot, error)
}

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindAPI
	KindConnection
)

// LookupError is the failure half of a lookup. Error() is the message shown to users.
type LookupError struct {
	Kind ErrorKind
	City string
	Err  error
}

func (e *LookupError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("City '%s' not found.", e.City)
	case KindAPI:
		return "API error. Check your API key."
	default:
		return fmt.Sprintf("Connection error: %v", e.Err)
	}
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// New picks the fixture client for the demo key and the live client otherwise.
func New(cfg Config, logger logrus.FieldLogger) Client {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.APIKey == DemoAPIKey {
		logger.Info("weather: demo api key, serving fixture data")
		return NewFixtureClient()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return NewOpenWeatherClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}
