package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

const (
	// DefaultOpenMeteoGeocodeURL resolves place names to coordinates.
	DefaultOpenMeteoGeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	// DefaultOpenMeteoForecastURL serves current conditions.
	DefaultOpenMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// OpenMeteo fetches conditions from Open-Meteo, which needs no API key.
// Geocoding results are remembered per location string.
type OpenMeteo struct {
	GeocodeURL  string
	ForecastURL string
	Client      *http.Client

	mu     sync.Mutex
	coords map[string]geoPoint
}

type geoPoint struct {
	lat, lon float64
	name     string
}

// NewOpenMeteo creates a source for the public endpoints.
func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		GeocodeURL:  DefaultOpenMeteoGeocodeURL,
		ForecastURL: DefaultOpenMeteoForecastURL,
		Client:      &http.Client{Timeout: WeatherFetchTimeout},
	}
}

// RequiresKey implements WeatherSource.
func (o *OpenMeteo) RequiresKey() bool { return false }

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
		IsDay               int     `json:"is_day"`
	} `json:"current"`
}

// Fetch implements WeatherSource. The API key is ignored.
func (o *OpenMeteo) Fetch(ctx context.Context, _ string, location string) (WeatherData, error) {
	pt, err := o.geocode(ctx, location)
	if err != nil {
		return WeatherData{}, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(pt.lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(pt.lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,is_day")
	q.Set("temperature_unit", "celsius")

	var resp forecastResponse
	if err := getJSON(ctx, o.Client, o.ForecastURL+"?"+q.Encode(), &resp); err != nil {
		return WeatherData{}, err
	}

	c := resp.Current
	desc, icon := WMOCondition(c.WeatherCode, c.IsDay == 1)
	// Current conditions carry no daily range.
	return WeatherData{
		Temperature: c.Temperature,
		FeelsLike:   c.ApparentTemperature,
		TempMin:     c.Temperature,
		TempMax:     c.Temperature,
		Humidity:    int(c.RelativeHumidity),
		Description: desc,
		Icon:        icon,
		Location:    pt.name,
	}, nil
}

func (o *OpenMeteo) geocode(ctx context.Context, location string) (geoPoint, error) {
	o.mu.Lock()
	pt, ok := o.coords[location]
	o.mu.Unlock()
	if ok {
		return pt, nil
	}

	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodeResponse
	if err := getJSON(ctx, o.Client, o.GeocodeURL+"?"+q.Encode(), &resp); err != nil {
		return geoPoint{}, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(resp.Results) == 0 {
		return geoPoint{}, fmt.Errorf("geocode %q: %w", location, ErrNoData)
	}

	r := resp.Results[0]
	pt = geoPoint{lat: r.Latitude, lon: r.Longitude, name: r.Name}
	switch {
	case r.Admin1 != "":
		pt.name = r.Name + ", " + r.Admin1
	case r.Country != "":
		pt.name = r.Name + ", " + r.Country
	}

	o.mu.Lock()
	if o.coords == nil {
		o.coords = make(map[string]geoPoint)
	}
	o.coords[location] = pt
	o.mu.Unlock()
	return pt, nil
}

// WMOCondition maps a WMO weather interpretation code to a description and
// an OpenWeatherMap-style icon code, so both providers share icons.
func WMOCondition(code int, isDay bool) (description, icon string) {
	var base string
	switch code {
	case 0:
		description, base = "Clear sky", "01"
	case 1:
		description, base = "Mainly clear", "02"
	case 2:
		description, base = "Partly cloudy", "03"
	case 3:
		description, base = "Overcast", "04"
	case 45, 48:
		description, base = "Fog", "50"
	case 51:
		description, base = "Light drizzle", "09"
	case 53:
		description, base = "Moderate drizzle", "09"
	case 55:
		description, base = "Dense drizzle", "09"
	case 56, 57:
		description, base = "Freezing drizzle", "09"
	case 61:
		description, base = "Slight rain", "10"
	case 63:
		description, base = "Moderate rain", "10"
	case 65:
		description, base = "Heavy rain", "10"
	case 66, 67:
		description, base = "Freezing rain", "10"
	case 71:
		description, base = "Slight snowfall", "13"
	case 73:
		description, base = "Moderate snowfall", "13"
	case 75:
		description, base = "Heavy snowfall", "13"
	case 77:
		description, base = "Snow grains", "13"
	case 80:
		description, base = "Slight rain showers", "09"
	case 81:
		description, base = "Moderate rain showers", "09"
	case 82:
		description, base = "Violent rain showers", "09"
	case 85:
		description, base = "Slight snow showers", "13"
	case 86:
		description, base = "Heavy snow showers", "13"
	case 95:
		description, base = "Thunderstorm", "11"
	case 96, 99:
		description, base = "Thunderstorm with hail", "11"
	default:
		description, base = "Unknown", "01"
	}
	if isDay {
		return description, base + "d"
	}
	return description, base + "n"
}
