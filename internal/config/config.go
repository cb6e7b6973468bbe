package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Weather struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
	}
	Session struct {
		Secret     string
		CookieName string
		TTL        time.Duration
		Secure     bool
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
// Environment keys use the WEATHERDASH_ prefix, e.g. WEATHERDASH_WEATHER_APIKEY.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("WEATHERDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("database.path", "data/weather.db")
	v.SetDefault("weather.apikey", "demo")
	v.SetDefault("weather.baseurl", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.timeout", 5*time.Second)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookiename", "weather_session")
	v.SetDefault("session.ttl", time.Duration(0))
	v.SetDefault("session.secure", false)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return fmt.Errorf("session secret is required (WEATHERDASH_SESSION_SECRET)")
	}
	if strings.TrimSpace(c.Weather.APIKey) == "" {
		return fmt.Errorf("weather api key is required; use %q for fixture data", "demo")
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather timeout must be positive")
	}
	return nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
