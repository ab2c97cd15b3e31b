// Package lookup calls the public widget APIs: current weather, country
// facts, and a random joke. Responses are reduced to the fields the API
// actually serves.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound indicates the upstream API has no record for the request.
var ErrNotFound = errors.New("lookup: not found")

const (
	defaultWeatherURL = "https://api.open-meteo.com/v1/forecast"
	defaultCountryURL = "https://restcountries.com/v3.1/name"
	defaultJokeURL    = "https://official-joke-api.appspot.com/random_joke"
)

// Weather is the current-conditions snapshot for a coordinate.
type Weather struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	ObservedAt   string  `json:"observed_at"`
}

// Country is a summary of one country record.
type Country struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Region     string `json:"region"`
	Population int64  `json:"population"`
}

// Joke is a two-part joke.
type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// Options overrides endpoint URLs and the request timeout; zero values take defaults.
type Options struct {
	WeatherURL string
	CountryURL string
	JokeURL    string
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	weatherURL string
	countryURL string
	jokeURL    string
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		weatherURL: opts.WeatherURL,
		countryURL: opts.CountryURL,
		jokeURL:    opts.JokeURL,
	}
	if c.weatherURL == "" {
		c.weatherURL = defaultWeatherURL
	}
	if c.countryURL == "" {
		c.countryURL = defaultCountryURL
	}
	if c.jokeURL == "" {
		c.jokeURL = defaultJokeURL
	}
	return c
}

// CurrentWeather fetches current conditions for the given coordinate.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (*Weather, error) {
	endpoint := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", c.weatherURL, lat, lon)

	var payload struct {
		Latitude       float64 `json:"latitude"`
		Longitude      float64 `json:"longitude"`
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	return &Weather{
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
		TemperatureC: payload.CurrentWeather.Temperature,
		WindSpeedKmh: payload.CurrentWeather.WindSpeed,
		ObservedAt:   payload.CurrentWeather.Time,
	}, nil
}

// CountryInfo fetches a summary for the named country. The upstream API
// returns a list of matches; the first one wins.
func (c *Client) CountryInfo(ctx context.Context, name string) (*Country, error) {
	endpoint := fmt.Sprintf("%s/%s", c.countryURL, url.PathEscape(name))

	var payload []struct {
		Name struct {
			Common string `json:"common"`
		} `json:"name"`
		Capital    []string `json:"capital"`
		Region     string   `json:"region"`
		Population int64    `json:"population"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("country %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch country: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("country %q: %w", name, ErrNotFound)
	}

	country := &Country{
		Name:       payload[0].Name.Common,
		Region:     payload[0].Region,
		Population: payload[0].Population,
	}
	if len(payload[0].Capital) > 0 {
		country.Capital = payload[0].Capital[0]
	}
	return country, nil
}

// RandomJoke fetches one random joke.
func (c *Client) RandomJoke(ctx context.Context) (*Joke, error) {
	var payload struct {
		Setup     string `json:"setup"`
		Punchline string `json:"punchline"`
	}
	if err := c.getJSON(ctx, c.jokeURL, &payload); err != nil {
		return nil, fmt.Errorf("fetch joke: %w", err)
	}
	return &Joke{Setup: payload.Setup, Punchline: payload.Punchline}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
