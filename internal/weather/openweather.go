package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// OpenWeatherClient queries the OpenWeatherMap current weather endpoint.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  logrus.FieldLogger
}

func NewOpenWeatherClient(cfg Config, httpClient *http.Client, logger logrus.FieldLogger) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    httpClient,
		logger:  logger,
	}
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *OpenWeatherClient) Current(ctx context.Context, city, country string) (Snapshot, error) {
	query := city
	if country != "" {
		query = city + "," + country
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Snapshot{}, &LookupError{Kind: KindConnection, City: city, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithField("city", city).Warnf("weather request failed: %v", err)
		return Snapshot{}, &LookupError{Kind: KindConnection, City: city, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Snapshot{}, &LookupError{Kind: KindNotFound, City: city}
	default:
		c.logger.WithFields(logrus.Fields{"city": city, "status": resp.StatusCode}).Warn("weather provider rejected request")
		return Snapshot{}, &LookupError{Kind: KindAPI, City: city, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, &LookupError{Kind: KindConnection, City: city, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Weather) == 0 {
		return Snapshot{}, &LookupError{Kind: KindConnection, City: city, Err: fmt.Errorf("response has no weather conditions")}
	}

	return Snapshot{
		City:     body.Name,
		Temp:     int(math.RoundToEven(body.Main.Temp)),
		Desc:     capitalize(body.Weather[0].Description),
		Wind:     body.Wind.Speed,
		Humidity: body.Main.Humidity,
		Icon:     body.Weather[0].Icon,
	}, nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
