package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/monwidget/internal/config"
)

const (
	// WeatherRequestInterval is the minimum time between fetch requests.
	WeatherRequestInterval = 600 * time.Second
	// WeatherPollInterval is how often the background poller checks for a request.
	WeatherPollInterval = 10 * time.Second
	// WeatherFetchTimeout bounds one HTTP round trip.
	WeatherFetchTimeout = 5 * time.Second
)

// DefaultOpenWeatherMapURL is the current-conditions endpoint.
const DefaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherSource fetches current conditions for a location.
type WeatherSource interface {
	// RequiresKey reports whether Fetch needs an API key.
	RequiresKey() bool
	Fetch(ctx context.Context, apiKey, location string) (WeatherData, error)
}

// OpenWeatherMap fetches conditions from the OpenWeatherMap API.
type OpenWeatherMap struct {
	BaseURL string
	Client  *http.Client
}

// NewOpenWeatherMap creates a source for the public endpoint.
func NewOpenWeatherMap() *OpenWeatherMap {
	return &OpenWeatherMap{
		BaseURL: DefaultOpenWeatherMapURL,
		Client:  &http.Client{Timeout: WeatherFetchTimeout},
	}
}

// RequiresKey implements WeatherSource.
func (o *OpenWeatherMap) RequiresKey() bool { return true }

type owmResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Name string `json:"name"`
}

// Fetch implements WeatherSource.
func (o *OpenWeatherMap) Fetch(ctx context.Context, apiKey, location string) (WeatherData, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", apiKey)
	q.Set("units", "metric")

	var resp owmResponse
	if err := getJSON(ctx, o.Client, o.BaseURL+"?"+q.Encode(), &resp); err != nil {
		return WeatherData{}, err
	}

	data := WeatherData{
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		TempMin:     resp.Main.TempMin,
		TempMax:     resp.Main.TempMax,
		Humidity:    int(resp.Main.Humidity),
		Location:    resp.Name,
		Icon:        "01d",
	}
	if len(resp.Weather) > 0 {
		data.Description = capitalize(resp.Weather[0].Description)
		if resp.Weather[0].Icon != "" {
			data.Icon = resp.Weather[0].Icon
		}
	}
	return data, nil
}

// getJSON performs a GET and decodes a 200 response body into v.
func getJSON(ctx context.Context, client *http.Client, rawURL string, v any) error {
	if client == nil {
		client = &http.Client{Timeout: WeatherFetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// capitalize upper-cases the first rune.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// WeatherMonitor decouples the slow HTTP fetch from the refresh loop:
// Update only raises a request, and a background poller performs it.
type WeatherMonitor struct {
	source WeatherSource
	logger Logger

	mu          sync.Mutex
	apiKey      string
	location    string
	lastRequest time.Time

	request *Signal
	data    *Cell[WeatherData]
	fetched *Cell[bool]
}

// NewWeatherMonitor creates a monitor. The first Update after construction
// requests a fetch immediately.
func NewWeatherMonitor(source WeatherSource, apiKey, location string, logger Logger) *WeatherMonitor {
	m := &WeatherMonitor{
		source:  source,
		logger:  orNop(logger),
		request: NewSignal(),
		data:    NewCell(NoWeatherData()),
		fetched: NewCell(false),
	}
	m.apiKey = config.TrimQuotes(apiKey)
	m.location = config.TrimQuotes(location)
	return m
}

// SetAPIKey replaces the API key. It applies to the next fetch.
func (m *WeatherMonitor) SetAPIKey(key string) {
	m.mu.Lock()
	m.apiKey = config.TrimQuotes(key)
	m.mu.Unlock()
}

// SetLocation replaces the location. It applies to the next fetch.
func (m *WeatherMonitor) SetLocation(location string) {
	m.mu.Lock()
	m.location = config.TrimQuotes(location)
	m.mu.Unlock()
}

// Update requests a fetch when credentials are complete and
// WeatherRequestInterval has passed between the previous request and now.
func (m *WeatherMonitor) Update(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.location == "" || (m.source.RequiresKey() && m.apiKey == "") {
		return
	}
	if !m.lastRequest.IsZero() && now.Sub(m.lastRequest) < WeatherRequestInterval {
		return
	}
	m.lastRequest = now
	m.logger.Debug("weather refresh requested", "location", m.location)
	m.request.Raise()
}

// Poll performs a pending request, if any. Failures are logged and the
// previous data is kept.
func (m *WeatherMonitor) Poll(ctx context.Context) {
	if !m.request.Take() {
		return
	}

	m.mu.Lock()
	key, location := m.apiKey, m.location
	m.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, WeatherFetchTimeout)
	defer cancel()

	data, err := m.source.Fetch(fetchCtx, key, location)
	if err != nil {
		m.logger.Warn("weather fetch failed", "location", location, "error", err)
		return
	}
	m.data.Store(data)
	m.fetched.Store(true)
}

// Poller returns the background poller that drives Poll.
func (m *WeatherMonitor) Poller() *Poller {
	return NewPoller("weather", WeatherPollInterval, false, m.Poll)
}

// Data returns the latest conditions and whether any fetch has succeeded.
// Before the first success it returns NoWeatherData.
func (m *WeatherMonitor) Data() (WeatherData, bool) {
	return m.data.Load(), m.fetched.Load()
}
