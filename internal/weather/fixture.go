package weather

import "context"

var fixtures = map[string]Snapshot{
	"Riga":   {Temp: 8, Desc: "Cloudy", Wind: 5.2, Humidity: 78, Icon: "04d"},
	"London": {Temp: 12, Desc: "Light rain", Wind: 7.1, Humidity: 85, Icon: "10d"},
	"Berlin": {Temp: 6, Desc: "Clear sky", Wind: 3.4, Humidity: 60, Icon: "01d"},
	"Tokyo":  {Temp: 18, Desc: "Partly cloudy", Wind: 2.1, Humidity: 72, Icon: "02d"},
	"Paris":  {Temp: 15, Desc: "Mist", Wind: 4.0, Humidity: 65, Icon: "50d"},
}

var placeholder = Snapshot{Temp: 10, Desc: "Unknown", Wind: 0, Humidity: 50, Icon: "01d"}

// FixtureClient serves canned data. Unknown cities get a placeholder, never an error.
type FixtureClient struct{}

func NewFixtureClient() *FixtureClient {
	return &FixtureClient{}
}

func (FixtureClient) Current(_ context.Context, city, _ string) (Snapshot, error) {
	snap, ok := fixtures[city]
	if !ok {
		snap = placeholder
	}
	snap.City = city
	return snap, nil
}
